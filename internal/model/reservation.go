package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the admission outcome shared by every row of a group.
type Status string

const (
	StatusReserved Status = "reserved"
	StatusWaitlist Status = "waitlist"
)

// Reservation is one camper of a submitted group. Guardian and consent
// fields are copied onto every row of the group.
type Reservation struct {
	ID      int64     `gorm:"primaryKey"`
	GroupID uuid.UUID `gorm:"type:uuid;index;not null"`
	Status  Status    `gorm:"size:16;not null;index:idx_reservations_origin_status,priority:2"`

	Email            string  `gorm:"size:320;not null"`
	ParentNameMother string  `gorm:"size:256;not null"`
	ParentNameFather string  `gorm:"size:256;not null"`
	Phones           string  `gorm:"size:128;not null"`
	OtherContact     *string `gorm:"size:512"`

	CamperName    string `gorm:"size:128;not null"`
	CamperSurname string `gorm:"size:256;not null"`
	Course        string `gorm:"size:32;not null"`
	Origin        string `gorm:"size:64;not null;index:idx_reservations_origin_status,priority:1"`

	Allergies    AllergyList `gorm:"not null"`
	MedicalNotes string      `gorm:"not null"`
	SpecialNotes *string

	ConsentInternalMedia bool `gorm:"not null"`
	ConsentPublicMedia   bool `gorm:"not null"`
	ConsentHealth        bool `gorm:"not null"`
	ConsentPrivacyRead   bool `gorm:"not null"`
	ConsentRules         bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

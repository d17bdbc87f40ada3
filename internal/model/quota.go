package model

import "time"

// OriginQuota holds the admission capacity of one origin. Records are
// managed outside the admission service (see cmd/quotactl).
type OriginQuota struct {
	Origin    string    `gorm:"primaryKey;size:64" yaml:"origin"`
	MaxSlots  int       `gorm:"not null" yaml:"max_slots"`
	Enabled   bool      `gorm:"not null" yaml:"enabled"`
	CreatedAt time.Time `yaml:"-"`
	UpdatedAt time.Time `yaml:"-"`
}

// TableName keeps the table name used by the hosted store.
func (OriginQuota) TableName() string { return "origin_quota" }

// Package intake defines the submission record sent by the registration form
// and the server-side checks it must pass before admission.
package intake

import "strings"

// Submission is the record posted by the registration form.
type Submission struct {
	Email            string  `json:"email" validate:"required,email"`
	ParentNameMother string  `json:"parent_name_mother" validate:"required"`
	ParentNameFather string  `json:"parent_name_father" validate:"required"`
	Phones           string  `json:"phones" validate:"required"`
	OtherContact     *string `json:"other_contact"`
	Origin           string  `json:"origin" validate:"required,origin"`

	ConsentInternalMedia bool `json:"consent_internal_media"`
	ConsentPublicMedia   bool `json:"consent_public_media"`
	ConsentHealth        bool `json:"consent_health" validate:"required"`
	ConsentPrivacyRead   bool `json:"consent_privacy_read" validate:"required"`
	ConsentRules         bool `json:"consent_rules" validate:"required"`

	Kids []Camper `json:"kids" validate:"min=1,max=2,dive"`
}

// Camper is one child of the submitted group.
type Camper struct {
	Name         string   `json:"camper_name" validate:"required"`
	Surname      string   `json:"camper_surname" validate:"required"`
	Course       string   `json:"course" validate:"course"`
	Allergies    []string `json:"allergies" validate:"required"`
	AllergyOther string   `json:"allergy_other"`
	MedicalNotes string   `json:"medical_notes" validate:"required"`
	SpecialNotes *string  `json:"special_notes"`
}

// Normalize trims every free-text field in place. Optional notes that are
// blank after trimming become nil.
func Normalize(s *Submission) {
	s.Email = strings.TrimSpace(s.Email)
	s.ParentNameMother = strings.TrimSpace(s.ParentNameMother)
	s.ParentNameFather = strings.TrimSpace(s.ParentNameFather)
	s.Phones = strings.TrimSpace(s.Phones)
	s.OtherContact = trimOptional(s.OtherContact)
	s.Origin = strings.TrimSpace(s.Origin)

	for i := range s.Kids {
		k := &s.Kids[i]
		k.Name = strings.TrimSpace(k.Name)
		k.Surname = strings.TrimSpace(k.Surname)
		k.Course = strings.TrimSpace(k.Course)
		k.AllergyOther = strings.TrimSpace(k.AllergyOther)
		k.MedicalNotes = strings.TrimSpace(k.MedicalNotes)
		k.SpecialNotes = trimOptional(k.SpecialNotes)
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

package model

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AllergyList is stored as a text[] column on postgres and as the same array
// literal in a text column elsewhere.
type AllergyList []string

func (a AllergyList) Value() (driver.Value, error) {
	return pq.StringArray(a).Value()
}

func (a *AllergyList) Scan(src any) error {
	return (*pq.StringArray)(a).Scan(src)
}

func (AllergyList) GormDataType() string {
	return "text"
}

func (AllergyList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Package admission decides whether a submitted group is reserved or
// waitlisted and persists it.
package admission

import (
	"camp-registration-backend/internal/apperr"
	"camp-registration-backend/internal/model"
)

// CheckQuota rejects origins without a quota record or with registrations
// closed.
func CheckQuota(quota *model.OriginQuota) error {
	if quota == nil {
		return apperr.Invalid("origin_quota_missing", "La procedencia seleccionada no tiene cupo configurado.")
	}
	if !quota.Enabled {
		return apperr.Conflict("origin_disabled", "Las inscripciones para esta procedencia están cerradas.")
	}
	return nil
}

// Decide returns the status shared by the whole group. The group is reserved
// only if every camper fits in the free slots; a group is never split.
func Decide(quota *model.OriginQuota, reserved int64, needed int) (model.Status, error) {
	if err := CheckQuota(quota); err != nil {
		return "", err
	}
	return statusFor(quota, reserved, needed), nil
}

// statusFor assumes quota already passed CheckQuota.
func statusFor(quota *model.OriginQuota, reserved int64, needed int) model.Status {
	free := int64(quota.MaxSlots) - reserved
	if free >= int64(needed) {
		return model.StatusReserved
	}
	return model.StatusWaitlist
}

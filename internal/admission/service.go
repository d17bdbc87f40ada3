package admission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"camp-registration-backend/internal/apperr"
	"camp-registration-backend/internal/intake"
	"camp-registration-backend/internal/model"
	"camp-registration-backend/internal/notification"
	"camp-registration-backend/internal/store"
)

const (
	msgReserved = "Reserva registrada correctamente."
	msgWaitlist = "El cupo está completo. La inscripción se ha añadido a la lista de espera."

	msgGeneric      = "Error interno del servidor. Inténtalo más tarde."
	msgQuotaCheck   = "No se pudo comprobar la disponibilidad de plazas."
	msgPersistGroup = "No se pudo completar la inscripción. Inténtalo de nuevo más tarde."
)

// Result is the outcome of an accepted submission.
type Result struct {
	GroupID uuid.UUID
	Status  model.Status
	Campers int
	Message string
}

// Service admits submissions against the stored quotas.
type Service struct {
	store         store.Store
	validator     *intake.Validator
	notifier      notification.Notifier
	notifyTimeout time.Duration
	logger        *zap.Logger
}

// NewService wires the admission pipeline. A nil store is accepted: every
// valid submission is then refused as a configuration failure.
func NewService(s store.Store, v *intake.Validator, n notification.Notifier, notifyTimeout time.Duration, logger *zap.Logger) *Service {
	if n == nil {
		n = notification.Nop()
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}
	return &Service{
		store:         s,
		validator:     v,
		notifier:      n,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

// Submit validates sub, decides the status of the whole group and writes one
// row per camper. sub is normalized in place. Every returned error is an
// *apperr.Error; nothing is written when an error is returned.
func (s *Service) Submit(ctx context.Context, sub *intake.Submission) (*Result, error) {
	if err := s.validator.Prepare(sub); err != nil {
		return nil, err
	}
	if s.store == nil {
		err := apperr.Internal("server_not_configured", msgGeneric, errors.New("no database configured"))
		s.logger.Error("submission refused", zap.Error(err))
		return nil, err
	}

	groupID := uuid.New()
	var status model.Status

	err := s.store.Atomically(ctx, func(tx store.Store) error {
		quota, err := tx.FindQuota(ctx, sub.Origin)
		switch {
		case errors.Is(err, store.ErrQuotaNotFound):
			quota = nil
		case err != nil:
			return apperr.Internal("quota_lookup_failed", msgQuotaCheck, err)
		}
		if err := CheckQuota(quota); err != nil {
			return err
		}

		reserved, err := tx.CountReserved(ctx, sub.Origin)
		if err != nil {
			return apperr.Internal("quota_check_failed", msgQuotaCheck, err)
		}

		status = statusFor(quota, reserved, len(sub.Kids))

		if err := tx.InsertGroup(ctx, buildRows(groupID, status, sub)); err != nil {
			return apperr.Internal("persist_failed", msgPersistGroup, err)
		}
		return nil
	})
	if err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			// begin or commit failed
			ae = apperr.Internal("persist_failed", msgPersistGroup, err)
		}
		if ae.Kind == apperr.KindInternal {
			s.logger.Error("admission failed",
				zap.String("code", ae.Code),
				zap.String("origin", sub.Origin),
				zap.Error(ae.Err))
		}
		return nil, ae
	}

	s.logger.Info("group admitted",
		zap.String("group_id", groupID.String()),
		zap.String("origin", sub.Origin),
		zap.String("status", string(status)),
		zap.Int("campers", len(sub.Kids)))

	s.notify(ctx, groupID, status, sub)

	return &Result{
		GroupID: groupID,
		Status:  status,
		Campers: len(sub.Kids),
		Message: statusMessage(status),
	}, nil
}

// notify never fails the submission: the group is already committed.
func (s *Service) notify(ctx context.Context, groupID uuid.UUID, status model.Status, sub *intake.Submission) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	campers := make([]string, len(sub.Kids))
	for i, k := range sub.Kids {
		campers[i] = k.Name + " " + k.Surname
	}

	err := s.notifier.NotifyAdmission(ctx, notification.Confirmation{
		GroupID:   groupID,
		Status:    status,
		Email:     sub.Email,
		Guardians: []string{sub.ParentNameMother, sub.ParentNameFather},
		Origin:    sub.Origin,
		Campers:   campers,
	})
	if err != nil {
		s.logger.Warn("confirmation not queued",
			zap.String("group_id", groupID.String()),
			zap.Error(err))
	}
}

func statusMessage(status model.Status) string {
	if status == model.StatusReserved {
		return msgReserved
	}
	return msgWaitlist
}

func buildRows(groupID uuid.UUID, status model.Status, sub *intake.Submission) []model.Reservation {
	rows := make([]model.Reservation, 0, len(sub.Kids))
	for _, k := range sub.Kids {
		rows = append(rows, model.Reservation{
			GroupID: groupID,
			Status:  status,

			Email:            sub.Email,
			ParentNameMother: sub.ParentNameMother,
			ParentNameFather: sub.ParentNameFather,
			Phones:           sub.Phones,
			OtherContact:     sub.OtherContact,

			CamperName:    k.Name,
			CamperSurname: k.Surname,
			Course:        k.Course,
			Origin:        sub.Origin,

			Allergies:    model.AllergyList(k.Allergies),
			MedicalNotes: k.MedicalNotes,
			SpecialNotes: k.SpecialNotes,

			ConsentInternalMedia: sub.ConsentInternalMedia,
			ConsentPublicMedia:   sub.ConsentPublicMedia,
			ConsentHealth:        sub.ConsentHealth,
			ConsentPrivacyRead:   sub.ConsentPrivacyRead,
			ConsentRules:         sub.ConsentRules,
		})
	}
	return rows
}

package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
)

// StatusChanger completes an appointment once it has a prescription.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
}

type Service struct {
	repo         repository.PrescriptionRepository
	appointments repository.AppointmentRepository
	status       StatusChanger
}

func NewService(repo repository.PrescriptionRepository, appointments repository.AppointmentRepository, status StatusChanger) *Service {
	return &Service{repo: repo, appointments: appointments, status: status}
}

// Save stores a prescription for one of the calling doctor's appointments and
// marks that appointment completed. The prescription is kept even if the status
// change fails; the status change is idempotent and can be repeated.
func (s *Service) Save(ctx context.Context, principal *model.Principal, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if _, err := s.ownedAppointment(ctx, principal, req.AppointmentID); err != nil {
		return nil, err
	}

	p := &model.Prescription{
		ID:            uuid.New(),
		AppointmentID: req.AppointmentID,
		PatientName:   req.PatientName,
		Medication:    req.Medication,
		Dosage:        req.Dosage,
		DoctorNotes:   req.DoctorNotes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("failed to save prescription: %w", err))
	}

	if err := s.status.ChangeStatus(ctx, req.AppointmentID, model.AppointmentStatusCompleted); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("appointment_id", req.AppointmentID.String()).
			Str("prescription_id", p.ID.String()).
			Msg("prescription saved but appointment not completed")
		return nil, err
	}
	return p, nil
}

// List returns the prescriptions of one of the calling doctor's appointments.
func (s *Service) List(ctx context.Context, principal *model.Principal, appointmentID uuid.UUID) ([]*model.Prescription, error) {
	if _, err := s.ownedAppointment(ctx, principal, appointmentID); err != nil {
		return nil, err
	}

	prescriptions, err := s.repo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if len(prescriptions) == 0 {
		return nil, apperrors.NewNotFound("prescription", nil)
	}
	return prescriptions, nil
}

func (s *Service) ownedAppointment(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.Appointment, error) {
	if !principal.Is(model.RoleDoctor) {
		return nil, apperrors.Unauthorized(nil)
	}
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	if apt.DoctorID != principal.ID {
		return nil, apperrors.Unauthorized(nil)
	}
	return apt, nil
}

package doctor

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
	"github.com/jwalitptl/clinic-booking/pkg/security"
)

type Service struct {
	tx           repository.TxManager
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	hasher       security.PasswordHasher
}

// NewService builds the doctor service. patients is consulted so that one email
// never names both a doctor and a patient; tokens carry only the email.
func NewService(tx repository.TxManager, doctors repository.DoctorRepository, patients repository.PatientRepository,
	appointments repository.AppointmentRepository, hasher security.PasswordHasher) *Service {
	return &Service{tx: tx, doctors: doctors, patients: patients, appointments: appointments, hasher: hasher}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, passwordError(err)
	}

	doctor := &model.Doctor{
		Email:          req.Email,
		Name:           req.Name,
		Specialty:      req.Specialty,
		Phone:          req.Phone,
		PasswordHash:   hash,
		AvailableTimes: slotsOrEmpty(req.AvailableTimes),
	}
	doctor.ID = uuid.New()
	doctor.Touch(time.Now())

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkPatientEmail(ctx, doctor.Email); err != nil {
			return err
		}
		return s.doctors.Create(ctx, doctor)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("a doctor with this email already exists", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	log.Ctx(ctx).Info().Str("doctor_id", doctor.ID.String()).Msg("doctor created")
	return doctor, nil
}

// Update replaces a doctor's profile and slot template. An empty password keeps the current one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	var doctor *model.Doctor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.doctors.Get(ctx, id)
		if err != nil {
			return err
		}

		if current.Email != req.Email {
			if err := s.checkPatientEmail(ctx, req.Email); err != nil {
				return err
			}
		}
		current.Email = req.Email
		current.Name = req.Name
		current.Specialty = req.Specialty
		current.Phone = req.Phone
		current.AvailableTimes = slotsOrEmpty(req.AvailableTimes)
		if req.Password != "" {
			hash, err := s.hasher.Hash(req.Password)
			if err != nil {
				return passwordError(err)
			}
			current.PasswordHash = hash
		}
		current.Touch(time.Now())

		if err := s.doctors.Update(ctx, current); err != nil {
			return err
		}
		doctor = current
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return doctor, nil
}

// Delete removes a doctor together with all of its appointments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.doctors.Get(ctx, id); err != nil {
			return err
		}
		if err := s.appointments.DeleteByDoctor(ctx, id); err != nil {
			return fmt.Errorf("failed to delete appointments: %w", err)
		}
		return s.doctors.Delete(ctx, id)
	})
	if err != nil {
		return translate(err)
	}
	log.Ctx(ctx).Info().Str("doctor_id", id.String()).Msg("doctor deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return doctors, nil
}

func (s *Service) checkPatientEmail(ctx context.Context, email string) error {
	_, err := s.patients.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.NewConflict("this email is registered to a patient", nil)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	}
	return fmt.Errorf("failed to check patient email: %w", err)
}

func slotsOrEmpty(slots []string) []string {
	if slots == nil {
		return []string{}
	}
	return slots
}

func passwordError(err error) error {
	if errors.Is(err, security.ErrPasswordTooShort) {
		return apperrors.NewBadRequest(err.Error(), err)
	}
	return apperrors.NewInternal(err)
}

func translate(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("doctor", err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("a doctor with this email already exists", err)
	}
	return apperrors.NewInternal(err)
}

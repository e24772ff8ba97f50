package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/security"
)

const errAlreadyRegistered = "a patient with this email or phone already exists"

type Service struct {
	tx      repository.TxManager
	repo    repository.PatientRepository
	doctors repository.DoctorRepository
	hasher  security.PasswordHasher
}

func NewService(tx repository.TxManager, repo repository.PatientRepository, doctors repository.DoctorRepository,
	hasher security.PasswordHasher) *Service {
	return &Service{tx: tx, repo: repo, doctors: doctors, hasher: hasher}
}

// Signup registers a patient. Email and phone must both be unused, and the email
// must not belong to a doctor.
func (s *Service) Signup(ctx context.Context, req *model.SignupPatientRequest) (*model.Patient, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.NewBadRequest(err.Error(), err)
		}
		return nil, apperrors.NewInternal(err)
	}

	patient := &model.Patient{
		Email:        req.Email,
		Phone:        req.Phone,
		Name:         req.Name,
		Address:      req.Address,
		PasswordHash: hash,
	}
	patient.ID = uuid.New()
	patient.Touch(time.Now())

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByEmailOrPhone(ctx, req.Email, req.Phone); err == nil {
			return apperrors.NewConflict(errAlreadyRegistered, nil)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := s.doctors.GetByEmail(ctx, req.Email); err == nil {
			return apperrors.NewConflict("this email is registered to a doctor", nil)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return s.repo.Create(ctx, patient)
	})
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflict(errAlreadyRegistered, err)
		}
		return nil, apperrors.NewInternal(err)
	}

	log.Ctx(ctx).Info().Str("patient_id", patient.ID.String()).Msg("patient registered")
	return patient, nil
}

// Details returns the calling patient's record.
func (s *Service) Details(ctx context.Context, principal *model.Principal) (*model.Patient, error) {
	if !principal.Is(model.RolePatient) {
		return nil, apperrors.Unauthorized(nil)
	}
	patient, err := s.repo.Get(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return patient, nil
}

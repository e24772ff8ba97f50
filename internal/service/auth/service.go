package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
	"github.com/jwalitptl/clinic-booking/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	admins   repository.AdminRepository
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	metrics  *metrics.Metrics
}

func NewService(admins repository.AdminRepository, doctors repository.DoctorRepository,
	patients repository.PatientRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher,
	m *metrics.Metrics) *Service {
	return &Service{
		admins:   admins,
		doctors:  doctors,
		patients: patients,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		metrics:  m,
	}
}

// account is what a role store yields for a login identifier.
type account struct {
	id           uuid.UUID
	passwordHash string
}

func (s *Service) lookup(ctx context.Context, role model.Role, identifier string) (*account, error) {
	switch role {
	case model.RoleAdmin:
		a, err := s.admins.GetByUsername(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return &account{id: a.ID, passwordHash: a.PasswordHash}, nil
	case model.RoleDoctor:
		d, err := s.doctors.GetByEmail(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return &account{id: d.ID, passwordHash: d.PasswordHash}, nil
	case model.RolePatient:
		p, err := s.patients.GetByEmail(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return &account{id: p.ID, passwordHash: p.PasswordHash}, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

// Login checks credentials against the store of the given role and issues a token.
// Every failure is reported as Unauthorized with the same message.
func (s *Service) Login(ctx context.Context, role model.Role, creds model.Credentials) (*model.TokenResponse, error) {
	acc, err := s.lookup(ctx, role, creds.Identifier)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Ctx(ctx).Error().Err(err).Str("role", string(role)).Msg("login lookup failed")
		}
		s.metrics.AuthFailure("login", string(role))
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	if err := s.hasher.Compare(acc.passwordHash, creds.Password); err != nil {
		s.metrics.AuthFailure("login", string(role))
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	token, expiresAt, err := s.jwtSvc.Issue(creds.Identifier)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return &model.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Authorize verifies token and resolves its identifier in the store of role.
func (s *Service) Authorize(ctx context.Context, token string, role model.Role) (*model.Principal, error) {
	identifier, err := s.jwtSvc.Verify(token)
	if err != nil {
		s.metrics.AuthFailure("verify", string(role))
		return nil, apperrors.Unauthorized(err)
	}
	return s.resolve(ctx, identifier, role)
}

// AuthorizeAny accepts the first role in roles whose store knows the token's identifier.
// Doctor and patient signups reject each other's emails, so at most one of those
// stores matches a given identifier.
func (s *Service) AuthorizeAny(ctx context.Context, token string, roles ...model.Role) (*model.Principal, error) {
	identifier, err := s.jwtSvc.Verify(token)
	if err != nil {
		s.metrics.AuthFailure("verify", "any")
		return nil, apperrors.Unauthorized(err)
	}
	for _, role := range roles {
		if p, err := s.resolve(ctx, identifier, role); err == nil {
			return p, nil
		}
	}
	return nil, apperrors.Unauthorized(nil)
}

func (s *Service) resolve(ctx context.Context, identifier string, role model.Role) (*model.Principal, error) {
	acc, err := s.lookup(ctx, role, identifier)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Ctx(ctx).Warn().Err(err).Str("role", string(role)).Msg("authorization lookup failed")
		}
		s.metrics.AuthFailure("authorize", string(role))
		return nil, apperrors.Unauthorized(err)
	}
	return &model.Principal{Role: role, Identifier: identifier, ID: acc.id}, nil
}

// BootstrapAdmin creates the configured admin account when it does not exist yet.
func (s *Service) BootstrapAdmin(ctx context.Context, tx repository.TxManager, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	return tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.admins.GetByUsername(ctx, username); err == nil {
			return nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up admin: %w", err)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}
		admin := &model.Admin{Username: username, PasswordHash: hash}
		admin.ID = uuid.New()
		admin.Touch(time.Now())
		if err := s.admins.Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		log.Ctx(ctx).Info().Str("username", username).Msg("bootstrap admin created")
		return nil
	})
}

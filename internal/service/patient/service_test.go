package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository/memory"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/security"
)

func signup(email, phone string) *model.SignupPatientRequest {
	return &model.SignupPatientRequest{
		Email:    email,
		Phone:    phone,
		Name:     "Pat Jones",
		Address:  "12 Elm Street",
		Password: "secret123",
	}
}

func TestSignupRejectsReusedEmailOrPhone(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store.Patients(), store.Doctors(), security.NewBcryptHasher(4))
	ctx := context.Background()

	patient, err := svc.Signup(ctx, signup("pat@example.test", "5550000001"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, patient.ID)

	_, err = svc.Signup(ctx, signup("pat@example.test", "5550000002"))
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.Signup(ctx, signup("other@example.test", "5550000001"))
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	short := signup("new@example.test", "5550000003")
	short.Password = "123"
	_, err = svc.Signup(ctx, short)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDetails(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store.Patients(), store.Doctors(), security.NewBcryptHasher(4))
	ctx := context.Background()

	patient, err := svc.Signup(ctx, signup("pat@example.test", "5550000001"))
	require.NoError(t, err)

	got, err := svc.Details(ctx, &model.Principal{Role: model.RolePatient, ID: patient.ID})
	require.NoError(t, err)
	assert.Equal(t, "12 Elm Street", got.Address)

	_, err = svc.Details(ctx, &model.Principal{Role: model.RoleDoctor, ID: patient.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestSignupRejectsDoctorEmail(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store.Patients(), store.Doctors(), security.NewBcryptHasher(4))
	ctx := context.Background()

	doctor := &model.Doctor{Email: "lee@clinic.test", Name: "Dr. Lee", Specialty: "Cardiology"}
	doctor.ID = uuid.New()
	require.NoError(t, store.Doctors().Create(ctx, doctor))

	_, err := svc.Signup(ctx, signup("lee@clinic.test", "5550000001"))
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = store.Patients().GetByEmail(ctx, "lee@clinic.test")
	assert.Error(t, err)
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

func seed(t *testing.T, s *Store) (*model.Doctor, *model.Patient) {
	t.Helper()
	ctx := context.Background()

	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		Email:          "lee@clinic.test",
		Name:           "Dr. Lee",
		Specialty:      "Cardiology",
		AvailableTimes: []string{"09:00", "10:00"},
	}
	patient := &model.Patient{
		Base:  model.Base{ID: uuid.New()},
		Email: "a@x.com",
		Phone: "5550001111",
		Name:  "Alice",
	}
	require.NoError(t, s.Doctors().Create(ctx, doctor))
	require.NoError(t, s.Patients().Create(ctx, patient))
	return doctor, patient
}

func TestAppointmentSlotUniqueness(t *testing.T) {
	s := NewStore()
	doctor, patient := seed(t, s)
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	first := &model.Appointment{Base: model.Base{ID: uuid.New()}, DoctorID: doctor.ID, PatientID: patient.ID, AppointmentTime: at}
	second := &model.Appointment{Base: model.Base{ID: uuid.New()}, DoctorID: doctor.ID, PatientID: patient.ID, AppointmentTime: at}

	require.NoError(t, s.Appointments().Create(ctx, first))
	assert.ErrorIs(t, s.Appointments().Create(ctx, second), repository.ErrDuplicate)

	// Updating an appointment onto its own slot is not a conflict.
	assert.NoError(t, s.Appointments().Update(ctx, first))
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	doctor, patient := seed(t, s)
	ctx := context.Background()
	id := uuid.New()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Appointments().Create(ctx, &model.Appointment{
			Base:            model.Base{ID: id},
			DoctorID:        doctor.ID,
			PatientID:       patient.ID,
			AppointmentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		}))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = s.Appointments().Get(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentDetailsAndFilters(t *testing.T) {
	s := NewStore()
	doctor, patient := seed(t, s)
	ctx := context.Background()

	for i, status := range []model.AppointmentStatus{model.AppointmentStatusCompleted, model.AppointmentStatusScheduled} {
		require.NoError(t, s.Appointments().Create(ctx, &model.Appointment{
			Base:            model.Base{ID: uuid.New()},
			DoctorID:        doctor.ID,
			PatientID:       patient.ID,
			AppointmentTime: time.Date(2025, 1, 1+i, 9, 0, 0, 0, time.UTC),
			Status:          status,
		}))
	}

	all, err := s.Appointments().ListByPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].AppointmentTime.Before(all[1].AppointmentTime))
	assert.Equal(t, "Dr. Lee", all[0].DoctorName)
	assert.Equal(t, "Alice", all[0].PatientName)

	done, err := s.Appointments().ListByPatientDoctorNameAndStatus(ctx, patient.ID, "lee", model.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	none, err := s.Appointments().ListByPatientAndDoctorName(ctx, patient.ID, "smith")
	require.NoError(t, err)
	assert.Empty(t, none)

	day, err := s.Appointments().ListByDoctorBetween(ctx, doctor.ID,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, day, 1)
}

func TestDoctorLookups(t *testing.T) {
	s := NewStore()
	doctor, _ := seed(t, s)
	ctx := context.Background()

	got, err := s.Doctors().Get(ctx, doctor.ID)
	require.NoError(t, err)
	got.AvailableTimes[0] = "23:00"

	again, err := s.Doctors().Get(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", again.AvailableTimes[0], "returned doctors must not alias store state")

	bySpecialty, err := s.Doctors().ListBySpecialty(ctx, "cardiology")
	require.NoError(t, err)
	assert.Len(t, bySpecialty, 1)

	dup := *doctor
	dup.ID = uuid.New()
	assert.ErrorIs(t, s.Doctors().Create(ctx, &dup), repository.ErrDuplicate)

	require.NoError(t, s.Doctors().Delete(ctx, doctor.ID))
	_, err = s.Doctors().GetByEmail(ctx, doctor.Email)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRollbackKeepsWritesOutsideTheUnit(t *testing.T) {
	s := NewStore()
	doctor, patient := seed(t, s)
	ctx := context.Background()
	appointmentID := uuid.New()

	err := s.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.Appointments().Create(txCtx, &model.Appointment{
			Base:            model.Base{ID: appointmentID},
			DoctorID:        doctor.ID,
			PatientID:       patient.ID,
			AppointmentTime: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		}))

		done := make(chan error, 1)
		go func() {
			done <- s.Prescriptions().Create(ctx, &model.Prescription{
				ID:            uuid.New(),
				AppointmentID: appointmentID,
				Medication:    "Ibuprofen",
			})
		}()
		require.NoError(t, <-done)
		return errors.New("slot taken")
	})
	require.Error(t, err)

	_, err = s.Appointments().Get(ctx, appointmentID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	prescriptions, err := s.Prescriptions().ListByAppointment(ctx, appointmentID)
	require.NoError(t, err)
	assert.Len(t, prescriptions, 1)
}

func TestRollbackRestoresUpdatesAndDeletes(t *testing.T) {
	s := NewStore()
	doctor, patient := seed(t, s)
	ctx := context.Background()
	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Status:          model.AppointmentStatusScheduled,
	}
	require.NoError(t, s.Appointments().Create(ctx, apt))

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Appointments().UpdateStatus(ctx, apt.ID, model.AppointmentStatusCompleted))
		renamed := *doctor
		renamed.Name = "Dr. Renamed"
		require.NoError(t, s.Doctors().Update(ctx, &renamed))
		require.NoError(t, s.Doctors().Delete(ctx, doctor.ID))
		return errors.New("abort")
	})
	require.Error(t, err)

	got, err := s.Appointments().Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, got.Status)

	d, err := s.Doctors().Get(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Lee", d.Name)
	assert.Equal(t, []string{"09:00", "10:00"}, []string(d.AvailableTimes))
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

var (
	// ErrNotFound is returned when a keyed lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrSerialization is returned when the store aborted a unit of work that
	// raced a concurrent one. Retrying the whole unit may succeed.
	ErrSerialization = errors.New("serialization failure")
)

type (
	// TxManager runs fn as one atomic unit. Repository calls made with the
	// ctx passed to fn take part in the transaction.
	TxManager interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	AdminRepository interface {
		Create(ctx context.Context, admin *model.Admin) error
		GetByUsername(ctx context.Context, username string) (*model.Admin, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
		SearchByName(ctx context.Context, name string) ([]*model.Doctor, error)
		ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error)
		SearchByNameAndSpecialty(ctx context.Context, name, specialty string) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		GetByEmailOrPhone(ctx context.Context, email, phone string) (*model.Patient, error)
	}

	AppointmentRepository interface {
		// Create fails with ErrDuplicate when the doctor already has an appointment at that time.
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error
		// ListByDoctorBetween returns appointments with start <= time < end, ordered by time.
		ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*model.AppointmentDetail, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
		ListByPatientAndStatus(ctx context.Context, patientID uuid.UUID, status model.AppointmentStatus) ([]*model.AppointmentDetail, error)
		ListByPatientAndDoctorName(ctx context.Context, patientID uuid.UUID, doctorName string) ([]*model.AppointmentDetail, error)
		ListByPatientDoctorNameAndStatus(ctx context.Context, patientID uuid.UUID, doctorName string, status model.AppointmentStatus) ([]*model.AppointmentDetail, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Prescription, error)
	}
)

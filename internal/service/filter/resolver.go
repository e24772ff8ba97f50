// Package filter picks a repository query from the set of filters a caller supplied.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
)

type DoctorFilter struct {
	Name      string
	Specialty string
	// Time is "AM" or "PM".
	Time string
}

type AppointmentFilter struct {
	// Condition is "past" or "future".
	Condition  string
	DoctorName string
}

const (
	hasName uint8 = 1 << iota
	hasSpecialty
	hasTime
)

const (
	hasCondition uint8 = 1 << iota
	hasDoctorName
)

type doctorQuery func(ctx context.Context, r repository.DoctorRepository, f DoctorFilter) ([]*model.Doctor, error)

type appointmentQuery func(ctx context.Context, r repository.AppointmentRepository, patientID uuid.UUID, status model.AppointmentStatus, doctorName string) ([]*model.AppointmentDetail, error)

var (
	listAll doctorQuery = func(ctx context.Context, r repository.DoctorRepository, _ DoctorFilter) ([]*model.Doctor, error) {
		return r.List(ctx)
	}
	byName doctorQuery = func(ctx context.Context, r repository.DoctorRepository, f DoctorFilter) ([]*model.Doctor, error) {
		return r.SearchByName(ctx, f.Name)
	}
	bySpecialty doctorQuery = func(ctx context.Context, r repository.DoctorRepository, f DoctorFilter) ([]*model.Doctor, error) {
		return r.ListBySpecialty(ctx, f.Specialty)
	}
	byNameAndSpecialty doctorQuery = func(ctx context.Context, r repository.DoctorRepository, f DoctorFilter) ([]*model.Doctor, error) {
		return r.SearchByNameAndSpecialty(ctx, f.Name, f.Specialty)
	}
)

// doctorTable maps every combination of present filters to its query. The time
// filter never reaches the store; it is applied to the query result.
var doctorTable = map[uint8]doctorQuery{
	0:                                listAll,
	hasName:                          byName,
	hasSpecialty:                     bySpecialty,
	hasName | hasSpecialty:           byNameAndSpecialty,
	hasTime:                          listAll,
	hasName | hasTime:                byName,
	hasSpecialty | hasTime:           bySpecialty,
	hasName | hasSpecialty | hasTime: byNameAndSpecialty,
}

var appointmentTable = map[uint8]appointmentQuery{
	0: func(ctx context.Context, r repository.AppointmentRepository, id uuid.UUID, _ model.AppointmentStatus, _ string) ([]*model.AppointmentDetail, error) {
		return r.ListByPatient(ctx, id)
	},
	hasCondition: func(ctx context.Context, r repository.AppointmentRepository, id uuid.UUID, status model.AppointmentStatus, _ string) ([]*model.AppointmentDetail, error) {
		return r.ListByPatientAndStatus(ctx, id, status)
	},
	hasDoctorName: func(ctx context.Context, r repository.AppointmentRepository, id uuid.UUID, _ model.AppointmentStatus, name string) ([]*model.AppointmentDetail, error) {
		return r.ListByPatientAndDoctorName(ctx, id, name)
	},
	hasCondition | hasDoctorName: func(ctx context.Context, r repository.AppointmentRepository, id uuid.UUID, status model.AppointmentStatus, name string) ([]*model.AppointmentDetail, error) {
		return r.ListByPatientDoctorNameAndStatus(ctx, id, name, status)
	},
}

type Resolver struct {
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
}

func NewResolver(doctors repository.DoctorRepository, appointments repository.AppointmentRepository) *Resolver {
	return &Resolver{doctors: doctors, appointments: appointments}
}

// Doctors lists doctors matching f. Blank fields are treated as absent.
func (r *Resolver) Doctors(ctx context.Context, f DoctorFilter) ([]*model.Doctor, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Specialty = strings.TrimSpace(f.Specialty)
	f.Time = strings.TrimSpace(f.Time)

	var key uint8
	if f.Name != "" {
		key |= hasName
	}
	if f.Specialty != "" {
		key |= hasSpecialty
	}

	var half model.DayHalf
	if f.Time != "" {
		h, ok := model.ParseDayHalf(f.Time)
		if !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("time must be AM or PM, got %q", f.Time), nil)
		}
		half = h
		key |= hasTime
	}

	doctors, err := doctorTable[key](ctx, r.doctors, f)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if key&hasTime == 0 {
		return doctors, nil
	}

	kept := make([]*model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if d.HasSlotIn(half) {
			kept = append(kept, d)
		}
	}
	return kept, nil
}

// PatientAppointments lists a patient's appointments. Condition "past" selects
// completed appointments and "future" scheduled ones.
func (r *Resolver) PatientAppointments(ctx context.Context, patientID uuid.UUID, f AppointmentFilter) ([]*model.AppointmentDetail, error) {
	condition := strings.ToLower(strings.TrimSpace(f.Condition))
	doctorName := strings.TrimSpace(f.DoctorName)

	var (
		key    uint8
		status model.AppointmentStatus
	)
	switch condition {
	case "":
	case "past":
		status = model.AppointmentStatusCompleted
		key |= hasCondition
	case "future":
		status = model.AppointmentStatusScheduled
		key |= hasCondition
	default:
		return nil, apperrors.NewBadRequest(fmt.Sprintf("condition must be past or future, got %q", f.Condition), nil)
	}
	if doctorName != "" {
		key |= hasDoctorName
	}

	details, err := appointmentTable[key](ctx, r.appointments, patientID, status, doctorName)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return details, nil
}

// Package availability reconciles a doctor's daily slot template against booked appointments.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
)

type Engine struct {
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	loc          *time.Location
}

func NewEngine(doctors repository.DoctorRepository, appointments repository.AppointmentRepository, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{doctors: doctors, appointments: appointments, loc: loc}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Availability returns the free slots of a doctor on date, in template order.
func (e *Engine) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	doctor, err := e.doctors.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return e.Slots(ctx, doctor, date, uuid.Nil)
}

// Slots computes availability for an already loaded doctor. The appointment
// with id exclude, if any, is treated as not booked.
func (e *Engine) Slots(ctx context.Context, doctor *model.Doctor, date time.Time, exclude uuid.UUID) ([]string, error) {
	free := []string{}
	if len(doctor.AvailableTimes) == 0 {
		return free, nil
	}

	start := StartOfDay(date, e.loc)
	booked, err := e.appointments.ListByDoctorBetween(ctx, doctor.ID, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("failed to list booked appointments: %w", err))
	}

	taken := make(map[string]struct{}, len(booked))
	for _, a := range booked {
		if a.ID == exclude {
			continue
		}
		taken[a.AppointmentTime.In(e.loc).Format(model.TimeOfDayLayout)] = struct{}{}
	}

	for _, slot := range doctor.AvailableTimes {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

// StartOfDay is midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

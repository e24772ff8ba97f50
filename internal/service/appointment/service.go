package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/internal/service/availability"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/lock"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

type Service struct {
	tx           repository.TxManager
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	engine       *availability.Engine
	locker       lock.Locker
	metrics      *metrics.Metrics
	now          func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for the "in the future" check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(tx repository.TxManager, doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository, engine *availability.Engine,
	locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		tx:           tx,
		doctors:      doctors,
		appointments: appointments,
		engine:       engine,
		locker:       locker,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlotKey names the lock serializing bookings of one doctor slot.
func SlotKey(doctorID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("booking:slot:%s:%d", doctorID, at.Unix())
}

// Book reserves a free slot of a doctor for the calling patient.
func (s *Service) Book(ctx context.Context, principal *model.Principal, doctorID uuid.UUID, at time.Time) (detail *model.AppointmentDetail, err error) {
	defer func() { s.record("book", err) }()

	if !principal.Is(model.RolePatient) {
		return nil, apperrors.Unauthorized(nil)
	}
	if err := checkMinute(at); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, doctorID, at)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doctor, err := s.loadDoctor(ctx, doctorID)
		if err != nil {
			return err
		}
		if err := s.checkSlot(ctx, doctor, at, uuid.Nil); err != nil {
			return err
		}

		apt := &model.Appointment{
			DoctorID:        doctorID,
			PatientID:       principal.ID,
			AppointmentTime: at,
			Status:          model.AppointmentStatusScheduled,
		}
		apt.ID = uuid.New()
		apt.Touch(s.now())
		if err := s.appointments.Create(ctx, apt); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		detail, err = s.appointments.GetDetail(ctx, apt.ID)
		return err
	})
	if err != nil {
		return nil, translate(err, "appointment")
	}

	log.Ctx(ctx).Info().
		Str("appointment_id", detail.ID.String()).
		Str("doctor_id", doctorID.String()).
		Time("at", at).
		Msg("appointment booked")
	return detail, nil
}

// Update moves an appointment of the calling patient to another doctor or time.
// The status is left unchanged.
func (s *Service) Update(ctx context.Context, principal *model.Principal, id, doctorID uuid.UUID, at time.Time) (detail *model.AppointmentDetail, err error) {
	defer func() { s.record("update", err) }()

	if !principal.Is(model.RolePatient) {
		return nil, apperrors.Unauthorized(nil)
	}
	if err := checkMinute(at); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, doctorID, at)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		apt, err := s.appointments.Get(ctx, id)
		if err != nil {
			return err
		}
		if apt.PatientID != principal.ID {
			return apperrors.Unauthorized(nil)
		}
		if apt.Status == model.AppointmentStatusCompleted {
			return apperrors.NewBadRequest("completed appointments cannot be rescheduled", nil)
		}

		doctor, err := s.loadDoctor(ctx, doctorID)
		if err != nil {
			return err
		}
		if err := s.checkSlot(ctx, doctor, at, apt.ID); err != nil {
			return err
		}

		apt.DoctorID = doctorID
		apt.AppointmentTime = at
		apt.Touch(s.now())
		if err := s.appointments.Update(ctx, apt); err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		detail, err = s.appointments.GetDetail(ctx, apt.ID)
		return err
	})
	if err != nil {
		return nil, translate(err, "appointment")
	}
	return detail, nil
}

// Cancel deletes an appointment. Patients may cancel their own; admins any.
func (s *Service) Cancel(ctx context.Context, principal *model.Principal, id uuid.UUID) (err error) {
	defer func() { s.record("cancel", err) }()

	if !principal.Is(model.RolePatient) && !principal.Is(model.RoleAdmin) {
		return apperrors.Unauthorized(nil)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		apt, err := s.appointments.Get(ctx, id)
		if err != nil {
			return err
		}
		if principal.Is(model.RolePatient) && apt.PatientID != principal.ID {
			return apperrors.Unauthorized(nil)
		}
		return s.appointments.Delete(ctx, id)
	})
	if err != nil {
		return translate(err, "appointment")
	}

	log.Ctx(ctx).Info().
		Str("appointment_id", id.String()).
		Str("by", string(principal.Role)).
		Msg("appointment cancelled")
	return nil
}

// ChangeStatus moves an appointment to status. Repeating the current status succeeds
// without a write; only scheduled to completed is a valid change.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (err error) {
	defer func() { s.record("change_status", err) }()

	if !status.Valid() {
		return apperrors.NewBadRequest(fmt.Sprintf("unknown status %q", status), nil)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		apt, err := s.appointments.Get(ctx, id)
		if err != nil {
			return err
		}
		if apt.Status == status {
			return nil
		}
		if !apt.Status.CanTransitionTo(status) {
			return apperrors.NewBadRequest(fmt.Sprintf("cannot change status from %s to %s", apt.Status, status), nil)
		}
		return s.appointments.UpdateStatus(ctx, id, status)
	})
	return translate(err, "appointment")
}

// Get returns an appointment visible to principal: its patient, its doctor, or an admin.
func (s *Service) Get(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.AppointmentDetail, error) {
	if principal == nil {
		return nil, apperrors.Unauthorized(nil)
	}
	detail, err := s.appointments.GetDetail(ctx, id)
	if err != nil {
		return nil, translate(err, "appointment")
	}

	switch principal.Role {
	case model.RoleAdmin:
	case model.RolePatient:
		if detail.PatientID != principal.ID {
			return nil, apperrors.Unauthorized(nil)
		}
	case model.RoleDoctor:
		if detail.DoctorID != principal.ID {
			return nil, apperrors.Unauthorized(nil)
		}
	default:
		return nil, apperrors.Unauthorized(nil)
	}
	return detail, nil
}

// ListForDoctor returns the calling doctor's appointments on date, optionally
// narrowed to patients whose name contains patientName.
func (s *Service) ListForDoctor(ctx context.Context, principal *model.Principal, date time.Time, patientName string) ([]*model.AppointmentDetail, error) {
	if !principal.Is(model.RoleDoctor) {
		return nil, apperrors.Unauthorized(nil)
	}

	start := availability.StartOfDay(date, s.engine.Location())
	details, err := s.appointments.ListByDoctorBetween(ctx, principal.ID, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	name := strings.ToLower(strings.TrimSpace(patientName))
	if name == "" {
		return details, nil
	}
	filtered := make([]*model.AppointmentDetail, 0, len(details))
	for _, d := range details {
		if strings.Contains(strings.ToLower(d.PatientName), name) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

func (s *Service) loadDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, err
	}
	return doctor, nil
}

// checkSlot requires at to be one of the doctor's free slots and to lie in the future.
func (s *Service) checkSlot(ctx context.Context, doctor *model.Doctor, at time.Time, exclude uuid.UUID) error {
	free, err := s.engine.Slots(ctx, doctor, at, exclude)
	if err != nil {
		return err
	}
	slot := at.In(s.engine.Location()).Format(model.TimeOfDayLayout)
	offered := false
	for _, f := range free {
		if f == slot {
			offered = true
			break
		}
	}
	if !offered {
		return apperrors.SlotConflict(nil)
	}
	if !at.After(s.now()) {
		return apperrors.NewBadRequest("appointment time must be in the future", nil)
	}
	return nil
}

func (s *Service) acquire(ctx context.Context, doctorID uuid.UUID, at time.Time) (lock.Release, error) {
	release, err := s.locker.Acquire(ctx, SlotKey(doctorID, at))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, apperrors.SlotConflict(err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return release, nil
}

func (s *Service) record(op string, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, repository.ErrSerialization):
		outcome = "serialization_failure"
	case err != nil:
		outcome = strings.ToLower(apperrors.As(err).Slug())
	}
	s.metrics.Mutation(op, outcome)
}

func checkMinute(at time.Time) error {
	if at.IsZero() || at.Second() != 0 || at.Nanosecond() != 0 {
		return apperrors.NewBadRequest("appointment time must be on a minute boundary", nil)
	}
	return nil
}

// translate maps repository sentinels onto application errors. Errors that
// already carry a code pass through.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.SlotConflict(err)
	}
	return apperrors.NewInternal(err)
}

// Package memory is an in-process implementation of the repository interfaces.
// It backs local runs and tests; all state is lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type Store struct {
	// txMu serializes units of work; mu guards the maps for single operations.
	txMu sync.Mutex
	mu   sync.RWMutex
	data tables
}

type tables struct {
	admins        map[string]model.Admin
	doctors       map[uuid.UUID]model.Doctor
	patients      map[uuid.UUID]model.Patient
	appointments  map[uuid.UUID]model.Appointment
	prescriptions []model.Prescription
}

func NewStore() *Store {
	return &Store{data: tables{
		admins:       map[string]model.Admin{},
		doctors:      map[uuid.UUID]model.Doctor{},
		patients:     map[uuid.UUID]model.Patient{},
		appointments: map[uuid.UUID]model.Appointment{},
	}}
}

func (s *Store) Admins() repository.AdminRepository             { return &adminRepository{s} }
func (s *Store) Doctors() repository.DoctorRepository           { return &doctorRepository{s} }
func (s *Store) Patients() repository.PatientRepository         { return &patientRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepository{s} }
func (s *Store) Prescriptions() repository.PrescriptionRepository {
	return &prescriptionRepository{s}
}

type undoKey struct{}

// undoLog holds the inverse of every write made by one unit of work.
type undoLog struct {
	steps []func(t *tables)
}

// WithinTx runs fn while holding the store-wide unit-of-work lock. Writes made by fn
// are reverted when it returns an error; writes made outside the unit are kept.
// Nested calls join the outer unit.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if repository.InTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	txCtx := context.WithValue(repository.MarkTx(ctx), undoKey{}, log)
	defer repository.Finish(txCtx)
	defer func() {
		if p := recover(); p != nil {
			s.rollback(log)
			panic(p)
		}
		if err != nil {
			s.rollback(log)
		}
	}()

	return fn(txCtx)
}

// undo records step for rollback when ctx belongs to a unit of work. Callers hold mu.
func (s *Store) undo(ctx context.Context, step func(t *tables)) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.steps = append(log.steps, step)
	}
}

func (s *Store) rollback(log *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(log.steps) - 1; i >= 0; i-- {
		log.steps[i](&s.data)
	}
}

func copyDoctor(d model.Doctor) model.Doctor {
	d.AvailableTimes = append([]string(nil), d.AvailableTimes...)
	return d
}

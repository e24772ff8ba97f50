package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type appointmentRepository struct {
	s *Store
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.appointments[appointment.ID]; ok {
		return repository.ErrDuplicate
	}
	if r.slotTaken(appointment) {
		return repository.ErrDuplicate
	}
	r.s.data.appointments[appointment.ID] = *appointment
	id := appointment.ID
	r.s.undo(ctx, func(t *tables) { delete(t.appointments, id) })
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(a), nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.data.appointments[appointment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.slotTaken(appointment) {
		return repository.ErrDuplicate
	}
	r.s.data.appointments[appointment.ID] = *appointment
	r.s.undo(ctx, restoreAppointment(prev))
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.data.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.s.undo(ctx, restoreAppointment(a))
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	r.s.data.appointments[id] = a
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.data.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.appointments, id)
	r.s.undo(ctx, restoreAppointment(prev))
	return nil
}

func (r *appointmentRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := removeDoctorAppointments(r.s.data.appointments, doctorID)
	r.s.undo(ctx, func(t *tables) {
		for _, a := range removed {
			t.appointments[a.ID] = a
		}
	})
	return nil
}

func removeDoctorAppointments(appointments map[uuid.UUID]model.Appointment, doctorID uuid.UUID) []model.Appointment {
	var removed []model.Appointment
	for id, a := range appointments {
		if a.DoctorID == doctorID {
			removed = append(removed, a)
			delete(appointments, id)
		}
	}
	return removed
}

func restoreAppointment(prev model.Appointment) func(t *tables) {
	return func(t *tables) { t.appointments[prev.ID] = prev }
}

func (r *appointmentRepository) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*model.AppointmentDetail, error) {
	return r.list(func(d *model.AppointmentDetail) bool {
		return d.DoctorID == doctorID && !d.AppointmentTime.Before(start) && d.AppointmentTime.Before(end)
	}), nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	return r.list(func(d *model.AppointmentDetail) bool {
		return d.PatientID == patientID
	}), nil
}

func (r *appointmentRepository) ListByPatientAndStatus(ctx context.Context, patientID uuid.UUID, status model.AppointmentStatus) ([]*model.AppointmentDetail, error) {
	return r.list(func(d *model.AppointmentDetail) bool {
		return d.PatientID == patientID && d.Status == status
	}), nil
}

func (r *appointmentRepository) ListByPatientAndDoctorName(ctx context.Context, patientID uuid.UUID, doctorName string) ([]*model.AppointmentDetail, error) {
	return r.list(func(d *model.AppointmentDetail) bool {
		return d.PatientID == patientID && containsFold(d.DoctorName, doctorName)
	}), nil
}

func (r *appointmentRepository) ListByPatientDoctorNameAndStatus(ctx context.Context, patientID uuid.UUID, doctorName string, status model.AppointmentStatus) ([]*model.AppointmentDetail, error) {
	return r.list(func(d *model.AppointmentDetail) bool {
		return d.PatientID == patientID && d.Status == status && containsFold(d.DoctorName, doctorName)
	}), nil
}

// slotTaken reports whether another appointment holds the same doctor and time. Callers hold mu.
func (r *appointmentRepository) slotTaken(appointment *model.Appointment) bool {
	for id, a := range r.s.data.appointments {
		if id != appointment.ID && a.DoctorID == appointment.DoctorID && a.AppointmentTime.Equal(appointment.AppointmentTime) {
			return true
		}
	}
	return false
}

// detail joins doctor and patient fields. Callers hold mu.
func (r *appointmentRepository) detail(a model.Appointment) *model.AppointmentDetail {
	d := &model.AppointmentDetail{Appointment: a}
	if doctor, ok := r.s.data.doctors[a.DoctorID]; ok {
		d.DoctorName = doctor.Name
	}
	if patient, ok := r.s.data.patients[a.PatientID]; ok {
		d.PatientName = patient.Name
		d.PatientEmail = patient.Email
		d.PatientPhone = patient.Phone
		d.PatientAddress = patient.Address
	}
	return d
}

func (r *appointmentRepository) list(keep func(*model.AppointmentDetail) bool) []*model.AppointmentDetail {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	details := []*model.AppointmentDetail{}
	for _, a := range r.s.data.appointments {
		if d := r.detail(a); keep(d) {
			details = append(details, d)
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].AppointmentTime.Before(details[j].AppointmentTime)
	})
	return details
}

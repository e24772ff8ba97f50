package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type doctorRepository struct {
	s *Store
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.data.doctors {
		if d.Email == doctor.Email {
			return repository.ErrDuplicate
		}
	}
	r.s.data.doctors[doctor.ID] = copyDoctor(*doctor)
	id := doctor.ID
	r.s.undo(ctx, func(t *tables) { delete(t.doctors, id) })
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.data.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d = copyDoctor(d)
	return &d, nil
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.data.doctors {
		if d.Email == email {
			d = copyDoctor(d)
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.data.doctors[doctor.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, d := range r.s.data.doctors {
		if id != doctor.ID && d.Email == doctor.Email {
			return repository.ErrDuplicate
		}
	}
	r.s.data.doctors[doctor.ID] = copyDoctor(*doctor)
	r.s.undo(ctx, func(t *tables) { t.doctors[prev.ID] = prev })
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.data.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.doctors, id)
	removed := removeDoctorAppointments(r.s.data.appointments, id)
	r.s.undo(ctx, func(t *tables) {
		t.doctors[id] = prev
		for _, a := range removed {
			t.appointments[a.ID] = a
		}
	})
	return nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	return r.filter(func(*model.Doctor) bool { return true }), nil
}

func (r *doctorRepository) SearchByName(ctx context.Context, name string) ([]*model.Doctor, error) {
	return r.filter(func(d *model.Doctor) bool { return containsFold(d.Name, name) }), nil
}

func (r *doctorRepository) ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	return r.filter(func(d *model.Doctor) bool { return strings.EqualFold(d.Specialty, specialty) }), nil
}

func (r *doctorRepository) SearchByNameAndSpecialty(ctx context.Context, name, specialty string) ([]*model.Doctor, error) {
	return r.filter(func(d *model.Doctor) bool {
		return containsFold(d.Name, name) && strings.EqualFold(d.Specialty, specialty)
	}), nil
}

func (r *doctorRepository) filter(keep func(*model.Doctor) bool) []*model.Doctor {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doctors := []*model.Doctor{}
	for _, d := range r.s.data.doctors {
		d := copyDoctor(d)
		if keep(&d) {
			doctors = append(doctors, &d)
		}
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].Name < doctors[j].Name })
	return doctors
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

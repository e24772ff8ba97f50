package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type patientRepository struct {
	s *Store
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.data.patients {
		if p.Email == patient.Email || p.Phone == patient.Phone {
			return repository.ErrDuplicate
		}
	}
	r.s.data.patients[patient.ID] = *patient
	id := patient.ID
	r.s.undo(ctx, func(t *tables) { delete(t.patients, id) })
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.find(func(p model.Patient) bool { return p.Email == email })
}

func (r *patientRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*model.Patient, error) {
	return r.find(func(p model.Patient) bool { return p.Email == email || p.Phone == phone })
}

func (r *patientRepository) find(match func(model.Patient) bool) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.data.patients {
		if match(p) {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

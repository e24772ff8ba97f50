package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

type prescriptionRepository struct {
	s *Store
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.data.prescriptions = append(r.s.data.prescriptions, *prescription)
	id := prescription.ID
	r.s.undo(ctx, func(t *tables) {
		for i, p := range t.prescriptions {
			if p.ID == id {
				t.prescriptions = append(t.prescriptions[:i], t.prescriptions[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *prescriptionRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prescriptions := []*model.Prescription{}
	for _, p := range r.s.data.prescriptions {
		if p.AppointmentID == appointmentID {
			p := p
			prescriptions = append(prescriptions, &p)
		}
	}
	return prescriptions, nil
}

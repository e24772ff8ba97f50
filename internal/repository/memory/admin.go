package memory

import (
	"context"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type adminRepository struct {
	s *Store
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.admins[admin.Username]; ok {
		return repository.ErrDuplicate
	}
	r.s.data.admins[admin.Username] = *admin
	r.s.undo(ctx, func(t *tables) { delete(t.admins, admin.Username) })
	return nil
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	admin, ok := r.s.data.admins[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &admin, nil
}

package postgres

import (
	"context"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	query := `
		INSERT INTO admins (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "create admin")
	}
	return nil
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM admins
		WHERE username = $1
	`
	var admin model.Admin
	if err := r.conn(ctx).GetContext(ctx, &admin, query, username); err != nil {
		return nil, mapError(err, "get admin")
	}
	return &admin, nil
}

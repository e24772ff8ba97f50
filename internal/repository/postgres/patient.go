package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

const patientColumns = `id, email, phone, name, address, password_hash, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		patient.ID,
		patient.Email,
		patient.Phone,
		patient.Name,
		patient.Address,
		patient.PasswordHash,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "create patient")
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.getOne(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.getOne(ctx, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, email)
}

func (r *patientRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*model.Patient, error) {
	return r.getOne(ctx, `
		SELECT `+patientColumns+` FROM patients
		WHERE email = $1 OR phone = $2
		LIMIT 1
	`, email, phone)
}

func (r *patientRepository) getOne(ctx context.Context, query string, args ...interface{}) (*model.Patient, error) {
	var patient model.Patient
	if err := r.conn(ctx).GetContext(ctx, &patient, query, args...); err != nil {
		return nil, mapError(err, "get patient")
	}
	return &patient, nil
}

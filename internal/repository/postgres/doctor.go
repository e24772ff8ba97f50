package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

const doctorColumns = `id, email, name, specialty, phone, password_hash, available_times, created_at, updated_at`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.ID,
		doctor.Email,
		doctor.Name,
		doctor.Specialty,
		doctor.Phone,
		doctor.PasswordHash,
		doctor.AvailableTimes,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "create doctor")
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE email = $1`, email)
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET email = $1, name = $2, specialty = $3, phone = $4,
		    password_hash = $5, available_times = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.Email,
		doctor.Name,
		doctor.Specialty,
		doctor.Phone,
		doctor.PasswordHash,
		doctor.AvailableTimes,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return mapError(err, "update doctor")
	}
	return expectAffected(result, "update doctor")
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete doctor")
	}
	return expectAffected(result, "delete doctor")
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	return r.list(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name ASC`)
}

func (r *doctorRepository) SearchByName(ctx context.Context, name string) ([]*model.Doctor, error) {
	return r.list(ctx, `
		SELECT `+doctorColumns+` FROM doctors
		WHERE name ILIKE $1
		ORDER BY name ASC
	`, containsPattern(name))
}

func (r *doctorRepository) ListBySpecialty(ctx context.Context, specialty string) ([]*model.Doctor, error) {
	return r.list(ctx, `
		SELECT `+doctorColumns+` FROM doctors
		WHERE LOWER(specialty) = LOWER($1)
		ORDER BY name ASC
	`, specialty)
}

func (r *doctorRepository) SearchByNameAndSpecialty(ctx context.Context, name, specialty string) ([]*model.Doctor, error) {
	return r.list(ctx, `
		SELECT `+doctorColumns+` FROM doctors
		WHERE name ILIKE $1 AND LOWER(specialty) = LOWER($2)
		ORDER BY name ASC
	`, containsPattern(name), specialty)
}

func (r *doctorRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.conn(ctx).GetContext(ctx, &doctor, query, arg); err != nil {
		return nil, mapError(err, "get doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	if err := r.conn(ctx).SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, mapError(err, "list doctors")
	}
	return doctors, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

const (
	appointmentColumns = `id, doctor_id, patient_id, appointment_time, status, created_at, updated_at`

	appointmentDetailSelect = `
		SELECT a.id, a.doctor_id, a.patient_id, a.appointment_time, a.status,
		       a.created_at, a.updated_at,
		       d.name AS doctor_name,
		       p.name AS patient_name, p.email AS patient_email,
		       p.phone AS patient_phone, p.address AS patient_address
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
	`
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "create appointment")
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err := r.conn(ctx).GetContext(ctx, &appointment, query, id); err != nil {
		return nil, mapError(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	var detail model.AppointmentDetail
	if err := r.conn(ctx).GetContext(ctx, &detail, appointmentDetailSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, mapError(err, "get appointment")
	}
	return &detail, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, appointment_time = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return mapError(err, "update appointment")
	}
	return expectAffected(result, "update appointment")
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	result, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return mapError(err, "update appointment status")
	}
	return expectAffected(result, "update appointment status")
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete appointment")
	}
	return expectAffected(result, "delete appointment")
}

func (r *appointmentRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	if _, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, doctorID); err != nil {
		return mapError(err, "delete doctor appointments")
	}
	return nil
}

func (r *appointmentRepository) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*model.AppointmentDetail, error) {
	return r.list(ctx, appointmentDetailSelect+`
		WHERE a.doctor_id = $1
		AND a.appointment_time >= $2
		AND a.appointment_time < $3
		ORDER BY a.appointment_time ASC
	`, doctorID, start, end)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	return r.list(ctx, appointmentDetailSelect+`
		WHERE a.patient_id = $1
		ORDER BY a.appointment_time ASC
	`, patientID)
}

func (r *appointmentRepository) ListByPatientAndStatus(ctx context.Context, patientID uuid.UUID, status model.AppointmentStatus) ([]*model.AppointmentDetail, error) {
	return r.list(ctx, appointmentDetailSelect+`
		WHERE a.patient_id = $1 AND a.status = $2
		ORDER BY a.appointment_time ASC
	`, patientID, status)
}

func (r *appointmentRepository) ListByPatientAndDoctorName(ctx context.Context, patientID uuid.UUID, doctorName string) ([]*model.AppointmentDetail, error) {
	return r.list(ctx, appointmentDetailSelect+`
		WHERE a.patient_id = $1 AND d.name ILIKE $2
		ORDER BY a.appointment_time ASC
	`, patientID, containsPattern(doctorName))
}

func (r *appointmentRepository) ListByPatientDoctorNameAndStatus(ctx context.Context, patientID uuid.UUID, doctorName string, status model.AppointmentStatus) ([]*model.AppointmentDetail, error) {
	return r.list(ctx, appointmentDetailSelect+`
		WHERE a.patient_id = $1 AND d.name ILIKE $2 AND a.status = $3
		ORDER BY a.appointment_time ASC
	`, patientID, containsPattern(doctorName), status)
}

func (r *appointmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.AppointmentDetail, error) {
	details := []*model.AppointmentDetail{}
	if err := r.conn(ctx).SelectContext(ctx, &details, query, args...); err != nil {
		return nil, mapError(err, "list appointments")
	}
	return details, nil
}

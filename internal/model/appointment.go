package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentDuration is the fixed length of every appointment.
const AppointmentDuration = time.Hour

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusCompleted
}

// CanTransitionTo reports whether a status change is allowed. Staying in place is always allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	return s == AppointmentStatusScheduled && next == AppointmentStatusCompleted
}

type Appointment struct {
	Base
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	AppointmentTime time.Time         `db:"appointment_time" json:"appointment_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
}

func (a *Appointment) EndTime() time.Time {
	return a.AppointmentTime.Add(AppointmentDuration)
}

// AppointmentDetail joins an appointment with the doctor and patient fields shown in listings.
type AppointmentDetail struct {
	Appointment
	DoctorName     string `db:"doctor_name" json:"doctor_name"`
	PatientName    string `db:"patient_name" json:"patient_name"`
	PatientEmail   string `db:"patient_email" json:"patient_email"`
	PatientPhone   string `db:"patient_phone" json:"patient_phone"`
	PatientAddress string `db:"patient_address" json:"patient_address"`
}

type AppointmentView struct {
	ID              uuid.UUID         `json:"id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	DoctorName      string            `json:"doctor_name"`
	PatientID       uuid.UUID         `json:"patient_id"`
	PatientName     string            `json:"patient_name"`
	PatientEmail    string            `json:"patient_email"`
	PatientPhone    string            `json:"patient_phone"`
	PatientAddress  string            `json:"patient_address"`
	AppointmentTime time.Time         `json:"appointment_time"`
	AppointmentDate string            `json:"appointment_date"`
	TimeOfDay       string            `json:"time_of_day"`
	EndTime         time.Time         `json:"end_time"`
	Status          AppointmentStatus `json:"status"`
}

// View renders the detail with date and time-of-day computed in loc.
func (d *AppointmentDetail) View(loc *time.Location) AppointmentView {
	at := d.AppointmentTime.In(loc)
	return AppointmentView{
		ID:              d.ID,
		DoctorID:        d.DoctorID,
		DoctorName:      d.DoctorName,
		PatientID:       d.PatientID,
		PatientName:     d.PatientName,
		PatientEmail:    d.PatientEmail,
		PatientPhone:    d.PatientPhone,
		PatientAddress:  d.PatientAddress,
		AppointmentTime: at,
		AppointmentDate: at.Format(DateLayout),
		TimeOfDay:       at.Format(TimeOfDayLayout),
		EndTime:         at.Add(AppointmentDuration),
		Status:          d.Status,
	}
}

func Views(details []*AppointmentDetail, loc *time.Location) []AppointmentView {
	views := make([]AppointmentView, 0, len(details))
	for _, d := range details {
		views = append(views, d.View(loc))
	}
	return views
}

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentTime string    `json:"appointment_time" binding:"required"`
}

type UpdateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentTime string    `json:"appointment_time" binding:"required"`
}

var appointmentTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseAppointmentTime accepts RFC 3339 or a zone-less local timestamp interpreted in loc.
func ParseAppointmentTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range appointmentTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid appointment time %q", value)
}

// ParseDate parses a YYYY-MM-DD date as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

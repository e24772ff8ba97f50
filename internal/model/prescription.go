package model

import (
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	ID            uuid.UUID `bson:"_id" json:"id"`
	AppointmentID uuid.UUID `bson:"appointment_id" json:"appointment_id"`
	PatientName   string    `bson:"patient_name" json:"patient_name"`
	Medication    string    `bson:"medication" json:"medication"`
	Dosage        string    `bson:"dosage" json:"dosage"`
	DoctorNotes   string    `bson:"doctor_notes,omitempty" json:"doctor_notes,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
	PatientName   string    `json:"patient_name" binding:"required,min=3,max=100"`
	Medication    string    `json:"medication" binding:"required,min=3,max=100"`
	Dosage        string    `json:"dosage" binding:"required,max=100"`
	DoctorNotes   string    `json:"doctor_notes" binding:"max=200"`
}

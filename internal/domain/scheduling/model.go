package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "No-Show"
)

// Visit types.
const (
	VisitFirst     = "First Visit"
	VisitFollowUp  = "Follow-up"
	VisitEmergency = "Emergency"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	HospitalID      uuid.UUID `db:"hospital_id" json:"hospital_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	VisitType       string    `db:"visit_type" json:"visit_type"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

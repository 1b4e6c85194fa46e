package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validVisitTypes = map[string]bool{
	VisitFirst:     true,
	VisitFollowUp:  true,
	VisitEmergency: true,
}

// validTransitions holds the allowed status moves. Scheduled is the only
// non-terminal state.
var validTransitions = map[string]map[string]bool{
	StatusScheduled: {
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
}

type Service struct {
	appointments AppointmentRepository
}

func NewService(appointments AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if a.VisitType == "" {
		a.VisitType = VisitFirst
	}
	if !validVisitTypes[a.VisitType] {
		return fmt.Errorf("invalid visit_type: %s", a.VisitType)
	}
	a.Status = StatusScheduled
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateStatus moves an appointment to a new status, enforcing that only
// scheduled appointments change state.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validTransitions[a.Status][newStatus] {
		return nil, fmt.Errorf("invalid status transition: %s -> %s", a.Status, newStatus)
	}
	a.Status = newStatus
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Reschedule changes the date of a scheduled appointment.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusScheduled {
		return nil, fmt.Errorf("cannot reschedule a %s appointment", a.Status)
	}
	if newDate.IsZero() {
		return nil, fmt.Errorf("appointment_date is required")
	}
	a.AppointmentDate = newDate
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDay(ctx context.Context, hospitalID uuid.UUID, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDay(ctx, hospitalID, day, limit, offset)
}

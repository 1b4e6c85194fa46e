package medication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validMealTimings = map[string]bool{
	MealBefore: true,
	MealAfter:  true,
	MealWith:   true,
}

type Service struct {
	manufacturers ManufacturerRepository
	medicines     MedicineRepository
	prescriptions PrescriptionRepository
	now           func() time.Time
}

func NewService(manufacturers ManufacturerRepository, medicines MedicineRepository,
	prescriptions PrescriptionRepository) *Service {
	return &Service{
		manufacturers: manufacturers,
		medicines:     medicines,
		prescriptions: prescriptions,
		now:           time.Now,
	}
}

// -- Manufacturers --

// GetOrCreateManufacturer looks up a manufacturer by license number, creating
// it when absent. Returns whether a new row was created.
func (s *Service) GetOrCreateManufacturer(ctx context.Context, m *Manufacturer) (*Manufacturer, bool, error) {
	if m.LicenseNo == "" {
		return nil, false, fmt.Errorf("license_no is required")
	}
	existing, err := s.manufacturers.GetByLicenseNo(ctx, m.LicenseNo)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if m.Name == "" {
		return nil, false, fmt.Errorf("name is required")
	}
	if err := s.manufacturers.Create(ctx, m); err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (s *Service) ListManufacturers(ctx context.Context, limit, offset int) ([]*Manufacturer, int, error) {
	return s.manufacturers.List(ctx, limit, offset)
}

// -- Medicines --

func (s *Service) CreateMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.GenericName == "" {
		return fmt.Errorf("generic_name is required")
	}
	if m.ManufacturerID == uuid.Nil {
		return fmt.Errorf("manufacturer_id is required")
	}
	if m.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	if _, err := s.manufacturers.GetByID(ctx, m.ManufacturerID); err != nil {
		return fmt.Errorf("manufacturer: %w", err)
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if _, err := s.medicines.GetByID(ctx, m.ID); err != nil {
		return err
	}
	if m.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	return s.medicines.Update(ctx, m)
}

func (s *Service) ListMedicines(ctx context.Context, query string, limit, offset int) ([]*Medicine, int, error) {
	if query != "" {
		return s.medicines.Search(ctx, query, limit, offset)
	}
	return s.medicines.List(ctx, limit, offset)
}

// -- Prescriptions --

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.AppointmentID == uuid.Nil {
		return fmt.Errorf("appointment_id is required")
	}
	if p.RefillCount < 0 {
		return fmt.Errorf("refill_count cannot be negative")
	}
	if p.ValidUntil.IsZero() {
		p.ValidUntil = s.today().AddDate(0, 0, DefaultValidityDays)
	}
	for _, item := range p.Items {
		if err := s.validateItem(item); err != nil {
			return err
		}
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return err
	}
	for _, item := range p.Items {
		item.PrescriptionID = p.ID
		if err := s.prescriptions.AddItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validateItem(item *PrescriptionItem) error {
	if item.MedicineID == uuid.Nil {
		return fmt.Errorf("item medicine_id is required")
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("item quantity must be positive")
	}
	if item.MealTiming == "" {
		item.MealTiming = MealAfter
	}
	if !validMealTimings[item.MealTiming] {
		return fmt.Errorf("invalid meal timing: %s", item.MealTiming)
	}
	return nil
}

// GetPrescription returns a prescription with its items loaded.
func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.prescriptions.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

func (s *Service) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Prescription, error) {
	return s.prescriptions.ListByAppointment(ctx, appointmentID)
}

func (s *Service) AddPrescriptionItem(ctx context.Context, item *PrescriptionItem) error {
	if item.PrescriptionID == uuid.Nil {
		return fmt.Errorf("prescription_id is required")
	}
	if _, err := s.prescriptions.GetByID(ctx, item.PrescriptionID); err != nil {
		return err
	}
	if err := s.validateItem(item); err != nil {
		return err
	}
	return s.prescriptions.AddItem(ctx, item)
}

// ValidatePrescription reports whether the prescription can still be
// dispensed. A prescription is valid through the end of its valid_until day.
func (s *Service) ValidatePrescription(ctx context.Context, id uuid.UUID) (bool, string, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return false, "", err
	}
	if s.CheckExpiry(p) {
		return false, fmt.Sprintf("prescription has expired on %s", p.ValidUntil.Format("2006-01-02")), nil
	}
	return true, "prescription is valid", nil
}

// CheckExpiry reports whether an already-loaded prescription is expired.
// Both sides are reduced to calendar dates first: the clock reads in server
// local time while a scanned DATE arrives at midnight UTC, and comparing the
// raw instants would shift the expiry boundary by a day across zones.
func (s *Service) CheckExpiry(p *Prescription) bool {
	return calendarDay(s.now()).After(calendarDay(p.ValidUntil))
}

func (s *Service) today() time.Time {
	return calendarDay(s.now())
}

// calendarDay maps t to midnight UTC of t's own calendar date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

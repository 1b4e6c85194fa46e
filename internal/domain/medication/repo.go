package medication

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ManufacturerRepository interface {
	Create(ctx context.Context, m *Manufacturer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Manufacturer, error)
	GetByLicenseNo(ctx context.Context, licenseNo string) (*Manufacturer, error)
	List(ctx context.Context, limit, offset int) ([]*Manufacturer, int, error)
}

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	List(ctx context.Context, limit, offset int) ([]*Medicine, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Medicine, int, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Prescription, error)
	AddItem(ctx context.Context, item *PrescriptionItem) error
	ListItems(ctx context.Context, prescriptionID uuid.UUID) ([]*PrescriptionItem, error)
}

package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ServiceTypeRepository interface {
	Create(ctx context.Context, st *ServiceType) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceType, error)
	GetByName(ctx context.Context, name string) (*ServiceType, error)
	List(ctx context.Context) ([]*ServiceType, error)
}

type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error)
}

type PharmacyBillRepository interface {
	Create(ctx context.Context, pb *PharmacyBill) error
	GetByID(ctx context.Context, id uuid.UUID) (*PharmacyBill, error)
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*PharmacyBill, int, error)
}

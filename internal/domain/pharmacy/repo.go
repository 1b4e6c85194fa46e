package pharmacy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotReduced is returned by StockRepository.ReduceStock when the
// conditional update matched no row, either because the stock row is absent
// or because the quantity on hand is smaller than requested.
var ErrNotReduced = errors.New("stock not reduced")

type PharmacyRepository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Pharmacy, int, error)
}

type StockRepository interface {
	Upsert(ctx context.Context, item *StockItem) error
	Get(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*StockItem, error)
	// Quantity returns the total stock on hand, zero when no row exists.
	Quantity(ctx context.Context, pharmacyID, medicineID uuid.UUID) (int, error)
	// ReduceStock atomically decrements stock_quantity when at least qty is
	// on hand and returns the remaining quantity; ErrNotReduced otherwise.
	ReduceStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, qty int) (int, error)
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockItem, int, error)
	ExpiringBefore(ctx context.Context, pharmacyID uuid.UUID, cutoff time.Time) ([]*StockItem, error)
}

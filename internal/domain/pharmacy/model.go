package pharmacy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pharmacy maps to the pharmacy table.
type Pharmacy struct {
	ID         uuid.UUID `db:"id" json:"id"`
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name       string    `db:"name" json:"name"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StockItem maps to the pharmacy_medicine table. The
// (pharmacy, medicine, batch) triple is unique and stock_quantity never goes
// below zero.
type StockItem struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PharmacyID    uuid.UUID       `db:"pharmacy_id" json:"pharmacy_id"`
	MedicineID    uuid.UUID       `db:"medicine_id" json:"medicine_id"`
	BatchNumber   string          `db:"batch_number" json:"batch_number"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	ExpiryDate    *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	LastRestocked *time.Time      `db:"last_restocked" json:"last_restocked,omitempty"`
}

// InsufficientStockError reports a reduction request that exceeds the
// available quantity. The stock row is left unchanged.
type InsufficientStockError struct {
	Medicine  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Requested: %d, Available: %d",
		e.Medicine, e.Requested, e.Available)
}

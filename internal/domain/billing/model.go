package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill statuses.
const (
	StatusPending   = "Pending"
	StatusPaid      = "Paid"
	StatusPartial   = "Partial"
	StatusCancelled = "Cancelled"
)

// LabTransactionPrefix keys lab bills to their test so completing a test
// twice cannot double-bill.
const LabTransactionPrefix = "LAB-"

// DueDays is the payment window applied to generated bills.
const DueDays = 30

// ServiceType maps to the service_type table. Name is the natural key.
type ServiceType struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Bill maps to the bill table.
type Bill struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	ServiceTypeID uuid.UUID       `db:"service_type_id" json:"service_type_id"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	Status        string          `db:"status" json:"status"`
	BillDate      time.Time       `db:"bill_date" json:"bill_date"`
	DueDate       time.Time       `db:"due_date" json:"due_date"`
	TransactionID *string         `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// PharmacyBill maps to the pharmacy_bill table, recording a dispensed
// prescription.
type PharmacyBill struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	PrescriptionID uuid.UUID       `db:"prescription_id" json:"prescription_id"`
	PharmacyID     uuid.UUID       `db:"pharmacy_id" json:"pharmacy_id"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status         string          `db:"status" json:"status"`
	BillDate       time.Time       `db:"bill_date" json:"bill_date"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

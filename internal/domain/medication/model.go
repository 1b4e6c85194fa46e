package medication

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Meal instructions for prescription items.
const (
	MealBefore = "Before"
	MealAfter  = "After"
	MealWith   = "With"
)

// DefaultValidityDays is the prescription validity window applied when the
// prescriber does not set valid_until explicitly.
const DefaultValidityDays = 30

// Manufacturer maps to the manufacturer table. LicenseNo is the natural key.
type Manufacturer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LicenseNo string    `db:"license_no" json:"license_no"`
	Country   *string   `db:"country" json:"country,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Medicine maps to the medicine table.
type Medicine struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	GenericName    string          `db:"generic_name" json:"generic_name"`
	ManufacturerID uuid.UUID       `db:"manufacturer_id" json:"manufacturer_id"`
	DosageForm     *string         `db:"dosage_form" json:"dosage_form,omitempty"`
	Strength       *string         `db:"strength" json:"strength,omitempty"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Prescription maps to the prescription table. A prescription is expired
// strictly after ValidUntil: on the day itself it is still valid.
type Prescription struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	AppointmentID uuid.UUID           `db:"appointment_id" json:"appointment_id"`
	ValidUntil    time.Time           `db:"valid_until" json:"valid_until"`
	RefillCount   int                 `db:"refill_count" json:"refill_count"`
	Notes         *string             `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	Items         []*PrescriptionItem `db:"-" json:"items,omitempty"`
}

// PrescriptionItem maps to the prescription_item table.
type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	MedicineID     uuid.UUID `db:"medicine_id" json:"medicine_id"`
	Dosage         string    `db:"dosage" json:"dosage"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`
	Quantity       int       `db:"quantity" json:"quantity"`
	MealTiming     string    `db:"meal_timing" json:"meal_timing"`
}

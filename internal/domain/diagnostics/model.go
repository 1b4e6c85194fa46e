package diagnostics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lab test statuses.
const (
	StatusOrdered    = "Ordered"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// LabTest maps to the lab_test table.
type LabTest struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	OrderedBy     uuid.UUID       `db:"ordered_by" json:"ordered_by"`
	LabID         *uuid.UUID      `db:"lab_id" json:"lab_id,omitempty"`
	TestName      string          `db:"test_name" json:"test_name"`
	TestCost      decimal.Decimal `db:"test_cost" json:"test_cost"`
	Status        string          `db:"status" json:"status"`
	ResultSummary *string         `db:"result_summary" json:"result_summary,omitempty"`
	OrderedAt     time.Time       `db:"ordered_at" json:"ordered_at"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

package diagnostics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/billing"
)

// TxRunner executes fn inside a database transaction. Satisfied by
// db.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Biller generates the bill for a completed test. Satisfied by
// billing.Service; its idempotency key prevents double billing.
type Biller interface {
	CreateLabTestBill(ctx context.Context, testID, patientID uuid.UUID, testCost decimal.Decimal) (*billing.Bill, error)
}

// validTransitions encodes the forward-only test lifecycle. In Progress may
// be skipped; a status never moves backward.
var validTransitions = map[string]map[string]bool{
	StatusOrdered: {
		StatusInProgress: true,
		StatusCompleted:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
	},
	StatusCompleted: {
		StatusCompleted: true,
	},
}

type Service struct {
	tests  LabTestRepository
	biller Biller
	tx     TxRunner
}

func NewService(tests LabTestRepository, biller Biller, tx TxRunner) *Service {
	return &Service{tests: tests, biller: biller, tx: tx}
}

func (s *Service) OrderTest(ctx context.Context, t *LabTest) error {
	if t.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if t.OrderedBy == uuid.Nil {
		return fmt.Errorf("ordered_by is required")
	}
	if t.TestName == "" {
		return fmt.Errorf("test_name is required")
	}
	if t.TestCost.IsNegative() {
		return fmt.Errorf("test_cost cannot be negative")
	}
	t.Status = StatusOrdered
	return s.tests.Create(ctx, t)
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.tests.GetByID(ctx, id)
}

// UpdateStatus moves a test through its lifecycle. Entering Completed from a
// non-Completed state bills the patient; the status update and the bill share
// one transaction, and repeating the completion never produces a second bill.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string, resultSummary *string) (*LabTest, error) {
	var updated *LabTest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err := s.tests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !validTransitions[t.Status][newStatus] {
			return fmt.Errorf("invalid status transition: %s -> %s", t.Status, newStatus)
		}

		completing := newStatus == StatusCompleted && t.Status != StatusCompleted
		t.Status = newStatus
		if resultSummary != nil {
			t.ResultSummary = resultSummary
		}
		if completing {
			now := time.Now()
			t.CompletedAt = &now
		}
		if err := s.tests.Update(ctx, t); err != nil {
			return err
		}
		if completing {
			if _, err := s.biller.CreateLabTestBill(ctx, t.ID, t.PatientID, t.TestCost); err != nil {
				return err
			}
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabTest, int, error) {
	return s.tests.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*LabTest, int, error) {
	if status != StatusOrdered && status != StatusInProgress && status != StatusCompleted {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.tests.ListByStatus(ctx, status, limit, offset)
}

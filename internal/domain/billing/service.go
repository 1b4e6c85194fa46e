package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxRunner executes fn inside a database transaction. Satisfied by
// db.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPaid:      true,
	StatusPartial:   true,
	StatusCancelled: true,
}

type Service struct {
	serviceTypes ServiceTypeRepository
	bills        BillRepository
	pharmBills   PharmacyBillRepository
	tx           TxRunner
	now          func() time.Time
}

func NewService(serviceTypes ServiceTypeRepository, bills BillRepository,
	pharmBills PharmacyBillRepository, tx TxRunner) *Service {
	return &Service{
		serviceTypes: serviceTypes,
		bills:        bills,
		pharmBills:   pharmBills,
		tx:           tx,
		now:          time.Now,
	}
}

// -- Service Types --

// GetOrCreateServiceType looks up a service type by its unique name, creating
// it with a default description when absent. Returns whether a new row was
// created.
func (s *Service) GetOrCreateServiceType(ctx context.Context, name string) (*ServiceType, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("service type name is required")
	}
	existing, err := s.serviceTypes.GetByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	desc := name + " services"
	st := &ServiceType{Name: name, Description: &desc}
	if err := s.serviceTypes.Create(ctx, st); err != nil {
		return nil, false, err
	}
	return st, true, nil
}

func (s *Service) ListServiceTypes(ctx context.Context) ([]*ServiceType, error) {
	return s.serviceTypes.List(ctx)
}

// -- Bills --

// CreateLabTestBill generates the bill for a completed lab test. It is
// idempotent on the test id: when a bill keyed "LAB-<testID>" already exists
// the existing bill is returned unchanged. The lookup and insert share one
// transaction, joining the caller's transaction when one is in flight.
func (s *Service) CreateLabTestBill(ctx context.Context, testID, patientID uuid.UUID, testCost decimal.Decimal) (*Bill, error) {
	var bill *Bill
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		txnID := LabTransactionPrefix + testID.String()

		existing, err := s.bills.GetByTransactionID(ctx, txnID)
		if err == nil {
			bill = existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		labType, _, err := s.GetOrCreateServiceType(ctx, "Laboratory")
		if err != nil {
			return err
		}

		today := s.today()
		bill = &Bill{
			PatientID:     patientID,
			ServiceTypeID: labType.ID,
			TotalAmount:   testCost,
			PaidAmount:    decimal.Zero,
			Status:        StatusPending,
			BillDate:      today,
			DueDate:       today.AddDate(0, 0, DueDays),
			TransactionID: &txnID,
		}
		return s.bills.Create(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.GetByID(ctx, id)
}

func (s *Service) ListBillsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	return s.bills.ListByPatient(ctx, patientID, limit, offset)
}

// RecordPayment applies a payment to a bill and derives the resulting status.
func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID, amount decimal.Decimal) (*Bill, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, fmt.Errorf("cannot pay a cancelled bill")
	}
	if b.Status == StatusPaid {
		return nil, fmt.Errorf("bill is already paid")
	}

	b.PaidAmount = b.PaidAmount.Add(amount)
	if b.PaidAmount.GreaterThan(b.TotalAmount) {
		return nil, fmt.Errorf("payment exceeds outstanding amount")
	}
	if b.PaidAmount.Equal(b.TotalAmount) {
		b.Status = StatusPaid
	} else {
		b.Status = StatusPartial
	}
	if err := s.bills.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CancelBill marks an unpaid bill as cancelled.
func (s *Service) CancelBill(ctx context.Context, billID uuid.UUID) (*Bill, error) {
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusPaid {
		return nil, fmt.Errorf("cannot cancel a paid bill")
	}
	b.Status = StatusCancelled
	if err := s.bills.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// -- Pharmacy Bills --

// RecordPharmacyBill persists the bill produced by dispensing a prescription.
func (s *Service) RecordPharmacyBill(ctx context.Context, prescriptionID, pharmacyID uuid.UUID, total decimal.Decimal) error {
	if total.IsNegative() {
		return fmt.Errorf("total cannot be negative")
	}
	return s.pharmBills.Create(ctx, &PharmacyBill{
		PrescriptionID: prescriptionID,
		PharmacyID:     pharmacyID,
		TotalAmount:    total,
		Status:         StatusPending,
		BillDate:       s.today(),
	})
}

func (s *Service) ListPharmacyBills(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*PharmacyBill, int, error) {
	return s.pharmBills.ListByPharmacy(ctx, pharmacyID, limit, offset)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.now().Location())
}

package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/medication"
)

// TxRunner executes fn inside a database transaction. Satisfied by
// db.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PrescriptionSource provides the prescription lookups dispensing needs.
// Satisfied by medication.Service.
type PrescriptionSource interface {
	GetPrescription(ctx context.Context, id uuid.UUID) (*medication.Prescription, error)
	CheckExpiry(p *medication.Prescription) bool
}

// MedicineSource resolves medicine metadata. Satisfied by medication.Service.
type MedicineSource interface {
	GetMedicine(ctx context.Context, id uuid.UUID) (*medication.Medicine, error)
}

// BillRecorder persists the bill produced by a dispense. Satisfied by
// billing.Service.
type BillRecorder interface {
	RecordPharmacyBill(ctx context.Context, prescriptionID, pharmacyID uuid.UUID, total decimal.Decimal) error
}

type Service struct {
	pharmacies    PharmacyRepository
	stock         StockRepository
	medicines     MedicineSource
	prescriptions PrescriptionSource
	bills         BillRecorder
	tx            TxRunner
}

func NewService(pharmacies PharmacyRepository, stock StockRepository,
	medicines MedicineSource, prescriptions PrescriptionSource,
	bills BillRecorder, tx TxRunner) *Service {
	return &Service{
		pharmacies:    pharmacies,
		stock:         stock,
		medicines:     medicines,
		prescriptions: prescriptions,
		bills:         bills,
		tx:            tx,
	}
}

// -- Pharmacies --

func (s *Service) CreatePharmacy(ctx context.Context, p *Pharmacy) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	return s.pharmacies.Create(ctx, p)
}

func (s *Service) GetPharmacy(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return s.pharmacies.GetByID(ctx, id)
}

func (s *Service) ListPharmacies(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Pharmacy, int, error) {
	return s.pharmacies.ListByHospital(ctx, hospitalID, limit, offset)
}

// -- Stock --

// CheckStock reports whether qty units are on hand. A missing stock row is
// not an error: it means zero units are available.
func (s *Service) CheckStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, qty int) (bool, int, error) {
	if qty <= 0 {
		return false, 0, fmt.Errorf("quantity must be positive")
	}
	current, err := s.stock.Quantity(ctx, pharmacyID, medicineID)
	if err != nil {
		return false, 0, err
	}
	return current >= qty, current, nil
}

// ReduceStock decrements stock atomically and returns the remaining quantity.
// When fewer than qty units are on hand the stock is left unchanged and a
// *InsufficientStockError is returned.
func (s *Service) ReduceStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}
	remaining, err := s.stock.ReduceStock(ctx, pharmacyID, medicineID, qty)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, ErrNotReduced) {
		return 0, err
	}
	available, qerr := s.stock.Quantity(ctx, pharmacyID, medicineID)
	if qerr != nil {
		return 0, qerr
	}
	name := medicineID.String()
	if med, merr := s.medicines.GetMedicine(ctx, medicineID); merr == nil {
		name = med.Name
	}
	return 0, &InsufficientStockError{Medicine: name, Requested: qty, Available: available}
}

// Restock adds quantity to a batch, creating the row when absent.
func (s *Service) Restock(ctx context.Context, item *StockItem) error {
	if item.PharmacyID == uuid.Nil {
		return fmt.Errorf("pharmacy_id is required")
	}
	if item.MedicineID == uuid.Nil {
		return fmt.Errorf("medicine_id is required")
	}
	if item.StockQuantity <= 0 {
		return fmt.Errorf("stock_quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	return s.stock.Upsert(ctx, item)
}

func (s *Service) ListStock(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockItem, int, error) {
	return s.stock.ListByPharmacy(ctx, pharmacyID, limit, offset)
}

// ExpiringSoon lists non-empty batches expiring within the given window.
func (s *Service) ExpiringSoon(ctx context.Context, pharmacyID uuid.UUID, within time.Duration) ([]*StockItem, error) {
	return s.stock.ExpiringBefore(ctx, pharmacyID, time.Now().Add(within))
}

// -- Dispensing --

// Dispense fills every item of a prescription from one pharmacy and records a
// bill for the total. It runs in a single transaction: an expired
// prescription or an insufficient stock row rolls back every reduction.
func (s *Service) Dispense(ctx context.Context, prescriptionID, pharmacyID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.prescriptions.GetPrescription(ctx, prescriptionID)
		if err != nil {
			return err
		}
		if s.prescriptions.CheckExpiry(p) {
			return fmt.Errorf("prescription has expired on %s", p.ValidUntil.Format("2006-01-02"))
		}
		if len(p.Items) == 0 {
			return fmt.Errorf("prescription has no items")
		}
		for _, item := range p.Items {
			stockRow, err := s.stock.Get(ctx, pharmacyID, item.MedicineID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					name := item.MedicineID.String()
					if med, merr := s.medicines.GetMedicine(ctx, item.MedicineID); merr == nil {
						name = med.Name
					}
					return &InsufficientStockError{Medicine: name, Requested: item.Quantity, Available: 0}
				}
				return err
			}
			if _, err := s.ReduceStock(ctx, pharmacyID, item.MedicineID, item.Quantity); err != nil {
				return err
			}
			total = total.Add(stockRow.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		return s.bills.RecordPharmacyBill(ctx, prescriptionID, pharmacyID, total)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

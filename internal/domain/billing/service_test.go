package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -- Mock Repositories --

type mockServiceTypeRepo struct {
	items map[uuid.UUID]*ServiceType
}

func newMockServiceTypeRepo() *mockServiceTypeRepo {
	return &mockServiceTypeRepo{items: make(map[uuid.UUID]*ServiceType)}
}

func (m *mockServiceTypeRepo) Create(_ context.Context, st *ServiceType) error {
	st.ID = uuid.New()
	st.CreatedAt = time.Now()
	m.items[st.ID] = st
	return nil
}

func (m *mockServiceTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*ServiceType, error) {
	st, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

func (m *mockServiceTypeRepo) GetByName(_ context.Context, name string) (*ServiceType, error) {
	for _, st := range m.items {
		if st.Name == name {
			return st, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockServiceTypeRepo) List(_ context.Context) ([]*ServiceType, error) {
	var result []*ServiceType
	for _, st := range m.items {
		result = append(result, st)
	}
	return result, nil
}

type mockBillRepo struct {
	items map[uuid.UUID]*Bill
}

func newMockBillRepo() *mockBillRepo {
	return &mockBillRepo{items: make(map[uuid.UUID]*Bill)}
}

func (m *mockBillRepo) Create(_ context.Context, b *Bill) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBillRepo) GetByID(_ context.Context, id uuid.UUID) (*Bill, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBillRepo) GetByTransactionID(_ context.Context, transactionID string) (*Bill, error) {
	for _, b := range m.items {
		if b.TransactionID != nil && *b.TransactionID == transactionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockBillRepo) Update(_ context.Context, b *Bill) error {
	if _, ok := m.items[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBillRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	var result []*Bill
	for _, b := range m.items {
		if b.PatientID == patientID {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

type mockPharmacyBillRepo struct {
	items map[uuid.UUID]*PharmacyBill
}

func newMockPharmacyBillRepo() *mockPharmacyBillRepo {
	return &mockPharmacyBillRepo{items: make(map[uuid.UUID]*PharmacyBill)}
}

func (m *mockPharmacyBillRepo) Create(_ context.Context, pb *PharmacyBill) error {
	pb.ID = uuid.New()
	m.items[pb.ID] = pb
	return nil
}

func (m *mockPharmacyBillRepo) GetByID(_ context.Context, id uuid.UUID) (*PharmacyBill, error) {
	pb, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return pb, nil
}

func (m *mockPharmacyBillRepo) ListByPharmacy(_ context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*PharmacyBill, int, error) {
	var result []*PharmacyBill
	for _, pb := range m.items {
		if pb.PharmacyID == pharmacyID {
			result = append(result, pb)
		}
	}
	return result, len(result), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockBillRepo, *mockServiceTypeRepo) {
	bills := newMockBillRepo()
	serviceTypes := newMockServiceTypeRepo()
	svc := NewService(serviceTypes, bills, newMockPharmacyBillRepo(), passthroughTx{})
	return svc, bills, serviceTypes
}

// -- Tests --

func TestGetOrCreateServiceType(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.GetOrCreateServiceType(ctx, "Laboratory")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if !created {
		t.Error("first call: expected created=true")
	}
	if first.Description == nil || *first.Description != "Laboratory services" {
		t.Errorf("unexpected default description: %v", first.Description)
	}

	second, created, err := svc.GetOrCreateServiceType(ctx, "Laboratory")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created {
		t.Error("second call: expected created=false")
	}
	if second.ID != first.ID {
		t.Errorf("expected same row, got %s and %s", first.ID, second.ID)
	}
}

func TestCreateLabTestBill(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	fixed := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	testID, patientID := uuid.New(), uuid.New()
	cost := decimal.NewFromFloat(500.00)

	b, err := svc.CreateLabTestBill(ctx, testID, patientID, cost)
	if err != nil {
		t.Fatalf("CreateLabTestBill: %v", err)
	}
	if !b.TotalAmount.Equal(cost) {
		t.Errorf("total = %s, want 500", b.TotalAmount)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %q, want Pending", b.Status)
	}
	wantTxn := "LAB-" + testID.String()
	if b.TransactionID == nil || *b.TransactionID != wantTxn {
		t.Errorf("transaction_id = %v, want %s", b.TransactionID, wantTxn)
	}
	wantDue := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	if !b.DueDate.Equal(wantDue) {
		t.Errorf("due_date = %v, want %v", b.DueDate, wantDue)
	}
	if !b.BillDate.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bill_date = %v, want 2026-05-01", b.BillDate)
	}
}

func TestCreateLabTestBill_Idempotent(t *testing.T) {
	svc, bills, _ := newTestService()
	ctx := context.Background()
	testID, patientID := uuid.New(), uuid.New()
	cost := decimal.NewFromInt(750)

	first, err := svc.CreateLabTestBill(ctx, testID, patientID, cost)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.CreateLabTestBill(ctx, testID, patientID, cost)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same bill, got %s and %s", first.ID, second.ID)
	}
	if len(bills.items) != 1 {
		t.Errorf("bills = %d, want exactly 1", len(bills.items))
	}
}

func TestRecordPayment(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateLabTestBill(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}

	partial, err := svc.RecordPayment(ctx, b.ID, decimal.NewFromInt(400))
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if partial.Status != StatusPartial {
		t.Errorf("status = %q, want Partial", partial.Status)
	}

	paid, err := svc.RecordPayment(ctx, b.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if paid.Status != StatusPaid {
		t.Errorf("status = %q, want Paid", paid.Status)
	}

	if _, err := svc.RecordPayment(ctx, b.ID, decimal.NewFromInt(1)); err == nil {
		t.Error("expected error paying a settled bill")
	}
}

func TestRecordPayment_Overpayment(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateLabTestBill(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, b.ID, decimal.NewFromInt(150)); err == nil {
		t.Error("expected overpayment error")
	}
	if _, err := svc.RecordPayment(ctx, b.ID, decimal.Zero); err == nil {
		t.Error("expected error for zero payment")
	}
}

func TestCancelBill(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.CreateLabTestBill(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	cancelled, err := svc.CancelBill(ctx, b.ID)
	if err != nil {
		t.Fatalf("CancelBill: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q, want Cancelled", cancelled.Status)
	}
	if _, err := svc.RecordPayment(ctx, b.ID, decimal.NewFromInt(10)); err == nil {
		t.Error("expected error paying a cancelled bill")
	}

	paidBill, err := svc.CreateLabTestBill(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, paidBill.ID, decimal.NewFromInt(50)); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := svc.CancelBill(ctx, paidBill.ID); err == nil {
		t.Error("expected error cancelling a paid bill")
	}
}

func TestRecordPharmacyBill(t *testing.T) {
	pharmBills := newMockPharmacyBillRepo()
	svc := NewService(newMockServiceTypeRepo(), newMockBillRepo(), pharmBills, passthroughTx{})
	ctx := context.Background()

	if err := svc.RecordPharmacyBill(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(-1)); err == nil {
		t.Error("expected error for negative total")
	}
	pharmacyID := uuid.New()
	if err := svc.RecordPharmacyBill(ctx, uuid.New(), pharmacyID, decimal.NewFromInt(120)); err != nil {
		t.Fatalf("RecordPharmacyBill: %v", err)
	}
	items, _, err := svc.ListPharmacyBills(ctx, pharmacyID, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Status != StatusPending {
		t.Errorf("unexpected pharmacy bills: %+v", items)
	}
}

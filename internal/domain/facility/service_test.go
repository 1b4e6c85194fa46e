package facility

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockDistrictRepo struct {
	items map[uuid.UUID]*District
}

func newMockDistrictRepo() *mockDistrictRepo {
	return &mockDistrictRepo{items: make(map[uuid.UUID]*District)}
}

func (m *mockDistrictRepo) Create(_ context.Context, d *District) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.items[d.ID] = d
	return nil
}

func (m *mockDistrictRepo) GetByID(_ context.Context, id uuid.UUID) (*District, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDistrictRepo) GetByName(_ context.Context, name string) (*District, error) {
	for _, d := range m.items {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockDistrictRepo) List(_ context.Context, limit, offset int) ([]*District, int, error) {
	var result []*District
	for _, d := range m.items {
		result = append(result, d)
	}
	return result, len(result), nil
}

type mockHospitalRepo struct {
	items map[uuid.UUID]*Hospital
}

func newMockHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{items: make(map[uuid.UUID]*Hospital)}
}

func (m *mockHospitalRepo) Create(_ context.Context, h *Hospital) error {
	h.ID = uuid.New()
	m.items[h.ID] = h
	return nil
}

func (m *mockHospitalRepo) GetByID(_ context.Context, id uuid.UUID) (*Hospital, error) {
	h, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (m *mockHospitalRepo) GetByRegistrationNo(_ context.Context, regNo string) (*Hospital, error) {
	for _, h := range m.items {
		if h.RegistrationNo == regNo {
			return h, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockHospitalRepo) Update(_ context.Context, h *Hospital) error {
	if _, ok := m.items[h.ID]; !ok {
		return ErrNotFound
	}
	m.items[h.ID] = h
	return nil
}

func (m *mockHospitalRepo) List(_ context.Context, limit, offset int) ([]*Hospital, int, error) {
	var result []*Hospital
	for _, h := range m.items {
		result = append(result, h)
	}
	return result, len(result), nil
}

func (m *mockHospitalRepo) ListByDistrict(_ context.Context, districtID uuid.UUID, limit, offset int) ([]*Hospital, int, error) {
	var result []*Hospital
	for _, h := range m.items {
		if h.DistrictID == districtID {
			result = append(result, h)
		}
	}
	return result, len(result), nil
}

type mockDepartmentRepo struct {
	items map[uuid.UUID]*Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{items: make(map[uuid.UUID]*Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, d *Department) error {
	d.ID = uuid.New()
	m.items[d.ID] = d
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Department, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDepartmentRepo) GetByHospitalAndName(_ context.Context, hospitalID uuid.UUID, name string) (*Department, error) {
	for _, d := range m.items {
		if d.HospitalID == hospitalID && d.Name == name {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockDepartmentRepo) Update(_ context.Context, d *Department) error {
	m.items[d.ID] = d
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockDepartmentRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Department, int, error) {
	var result []*Department
	for _, d := range m.items {
		if d.HospitalID == hospitalID {
			result = append(result, d)
		}
	}
	return result, len(result), nil
}

type mockLabRepo struct {
	items map[uuid.UUID]*Lab
}

func newMockLabRepo() *mockLabRepo {
	return &mockLabRepo{items: make(map[uuid.UUID]*Lab)}
}

func (m *mockLabRepo) Create(_ context.Context, l *Lab) error {
	l.ID = uuid.New()
	m.items[l.ID] = l
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id uuid.UUID) (*Lab, error) {
	l, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (m *mockLabRepo) Update(_ context.Context, l *Lab) error {
	m.items[l.ID] = l
	return nil
}

func (m *mockLabRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockLabRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Lab, int, error) {
	var result []*Lab
	for _, l := range m.items {
		if l.HospitalID == hospitalID {
			result = append(result, l)
		}
	}
	return result, len(result), nil
}

type mockStatsRepo struct{}

func (m *mockStatsRepo) Dashboard(_ context.Context, hospitalID uuid.UUID) (*DashboardStats, error) {
	return &DashboardStats{Departments: 2, Doctors: 3, Labs: 1, TodaysAppointments: 4}, nil
}

func newTestService() (*Service, *mockDistrictRepo, *mockHospitalRepo, *mockDepartmentRepo) {
	districts := newMockDistrictRepo()
	hospitals := newMockHospitalRepo()
	departments := newMockDepartmentRepo()
	return NewService(districts, hospitals, departments, newMockLabRepo(), &mockStatsRepo{}),
		districts, hospitals, departments
}

// -- Tests --

func TestCreateDistrict_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.CreateDistrict(context.Background(), &District{Division: "Dhaka"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateDistrict(context.Background(), &District{Name: "Dhaka"}); err == nil {
		t.Error("expected error for missing division")
	}
	if err := svc.CreateDistrict(context.Background(), &District{Name: "Dhaka", Division: "Dhaka"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetOrCreateDistrict_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.GetOrCreateDistrict(ctx, "Sylhet", "Sylhet")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if !created {
		t.Error("first call: expected created=true")
	}

	second, created, err := svc.GetOrCreateDistrict(ctx, "Sylhet", "Sylhet")
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

func TestCreateHospital_RequiresDetail(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	base := Hospital{
		Name:           "Square Hospital",
		RegistrationNo: "PVT-001",
		DistrictID:     uuid.New(),
	}

	h := base
	h.Kind = KindPrivate
	if err := svc.CreateHospital(ctx, &h); err == nil {
		t.Error("expected error for private hospital without detail")
	}

	h = base
	h.Kind = KindPublic
	if err := svc.CreateHospital(ctx, &h); err == nil {
		t.Error("expected error for public hospital without detail")
	}

	h = base
	h.Kind = KindPrivate
	h.Private = &PrivateDetail{OwnerName: "Square Group"}
	if err := svc.CreateHospital(ctx, &h); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	h = base
	h.Kind = "CHARITY"
	if err := svc.CreateHospital(ctx, &h); err == nil {
		t.Error("expected error for invalid kind")
	}
}

func TestCreateDepartment_UniquePerHospital(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	hospitalID := uuid.New()

	d := &Department{HospitalID: hospitalID, Name: "Cardiology"}
	if err := svc.CreateDepartment(ctx, d); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := &Department{HospitalID: hospitalID, Name: "Cardiology"}
	if err := svc.CreateDepartment(ctx, dup); err == nil {
		t.Error("expected duplicate department error")
	}

	// Same name in a different hospital is fine
	other := &Department{HospitalID: uuid.New(), Name: "Cardiology"}
	if err := svc.CreateDepartment(ctx, other); err != nil {
		t.Errorf("unexpected error for other hospital: %v", err)
	}
}

func TestDashboard_RequiresHospital(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.Dashboard(context.Background(), uuid.Nil); err == nil {
		t.Error("expected error for nil hospital id")
	}
	stats, err := svc.Dashboard(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Doctors != 3 {
		t.Errorf("doctors = %d, want 3", stats.Doctors)
	}
}

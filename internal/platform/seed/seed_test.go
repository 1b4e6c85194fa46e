package seed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/facility"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/domain/medication"
)

// Map-backed repositories covering just the get-or-create paths the seeder
// touches.

type mockDistrictRepo struct {
	items map[uuid.UUID]*facility.District
}

func (m *mockDistrictRepo) Create(_ context.Context, d *facility.District) error {
	d.ID = uuid.New()
	m.items[d.ID] = d
	return nil
}

func (m *mockDistrictRepo) GetByID(_ context.Context, id uuid.UUID) (*facility.District, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, facility.ErrNotFound
	}
	return d, nil
}

func (m *mockDistrictRepo) GetByName(_ context.Context, name string) (*facility.District, error) {
	for _, d := range m.items {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, facility.ErrNotFound
}

func (m *mockDistrictRepo) List(_ context.Context, limit, offset int) ([]*facility.District, int, error) {
	return nil, len(m.items), nil
}

type mockHospitalRepo struct {
	items map[uuid.UUID]*facility.Hospital
}

func (m *mockHospitalRepo) Create(_ context.Context, h *facility.Hospital) error {
	h.ID = uuid.New()
	m.items[h.ID] = h
	return nil
}

func (m *mockHospitalRepo) GetByID(_ context.Context, id uuid.UUID) (*facility.Hospital, error) {
	h, ok := m.items[id]
	if !ok {
		return nil, facility.ErrNotFound
	}
	return h, nil
}

func (m *mockHospitalRepo) GetByRegistrationNo(_ context.Context, regNo string) (*facility.Hospital, error) {
	for _, h := range m.items {
		if h.RegistrationNo == regNo {
			return h, nil
		}
	}
	return nil, facility.ErrNotFound
}

func (m *mockHospitalRepo) Update(_ context.Context, h *facility.Hospital) error {
	m.items[h.ID] = h
	return nil
}

func (m *mockHospitalRepo) List(_ context.Context, limit, offset int) ([]*facility.Hospital, int, error) {
	return nil, len(m.items), nil
}

func (m *mockHospitalRepo) ListByDistrict(_ context.Context, districtID uuid.UUID, limit, offset int) ([]*facility.Hospital, int, error) {
	return nil, 0, nil
}

type mockServiceTypeRepo struct {
	items map[uuid.UUID]*billing.ServiceType
}

func (m *mockServiceTypeRepo) Create(_ context.Context, st *billing.ServiceType) error {
	st.ID = uuid.New()
	m.items[st.ID] = st
	return nil
}

func (m *mockServiceTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*billing.ServiceType, error) {
	st, ok := m.items[id]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return st, nil
}

func (m *mockServiceTypeRepo) GetByName(_ context.Context, name string) (*billing.ServiceType, error) {
	for _, st := range m.items {
		if st.Name == name {
			return st, nil
		}
	}
	return nil, billing.ErrNotFound
}

func (m *mockServiceTypeRepo) List(_ context.Context) ([]*billing.ServiceType, error) {
	var result []*billing.ServiceType
	for _, st := range m.items {
		result = append(result, st)
	}
	return result, nil
}

type mockQualificationRepo struct {
	items map[uuid.UUID]*identity.Qualification
}

func (m *mockQualificationRepo) Create(_ context.Context, q *identity.Qualification) error {
	q.ID = uuid.New()
	m.items[q.ID] = q
	return nil
}

func (m *mockQualificationRepo) GetByCode(_ context.Context, code string) (*identity.Qualification, error) {
	for _, q := range m.items {
		if q.Code == code {
			return q, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (m *mockQualificationRepo) List(_ context.Context) ([]*identity.Qualification, error) {
	var result []*identity.Qualification
	for _, q := range m.items {
		result = append(result, q)
	}
	return result, nil
}

type mockManufacturerRepo struct {
	items map[uuid.UUID]*medication.Manufacturer
}

func (m *mockManufacturerRepo) Create(_ context.Context, mf *medication.Manufacturer) error {
	mf.ID = uuid.New()
	m.items[mf.ID] = mf
	return nil
}

func (m *mockManufacturerRepo) GetByID(_ context.Context, id uuid.UUID) (*medication.Manufacturer, error) {
	mf, ok := m.items[id]
	if !ok {
		return nil, medication.ErrNotFound
	}
	return mf, nil
}

func (m *mockManufacturerRepo) GetByLicenseNo(_ context.Context, licenseNo string) (*medication.Manufacturer, error) {
	for _, mf := range m.items {
		if mf.LicenseNo == licenseNo {
			return mf, nil
		}
	}
	return nil, medication.ErrNotFound
}

func (m *mockManufacturerRepo) List(_ context.Context, limit, offset int) ([]*medication.Manufacturer, int, error) {
	return nil, len(m.items), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixtures struct {
	seeder        *Seeder
	districts     *mockDistrictRepo
	hospitals     *mockHospitalRepo
	serviceTypes  *mockServiceTypeRepo
	quals         *mockQualificationRepo
	manufacturers *mockManufacturerRepo
}

func newFixtures() *fixtures {
	districts := &mockDistrictRepo{items: make(map[uuid.UUID]*facility.District)}
	hospitals := &mockHospitalRepo{items: make(map[uuid.UUID]*facility.Hospital)}
	serviceTypes := &mockServiceTypeRepo{items: make(map[uuid.UUID]*billing.ServiceType)}
	quals := &mockQualificationRepo{items: make(map[uuid.UUID]*identity.Qualification)}
	manufacturers := &mockManufacturerRepo{items: make(map[uuid.UUID]*medication.Manufacturer)}

	facilitySvc := facility.NewService(districts, hospitals, nil, nil, nil)
	billingSvc := billing.NewService(serviceTypes, nil, nil, passthroughTx{})
	identitySvc := identity.NewService(nil, quals, nil, nil, nil)
	medicationSvc := medication.NewService(manufacturers, nil, nil)

	seeder := New(facilitySvc, billingSvc, identitySvc, medicationSvc, zerolog.Nop())
	return &fixtures{
		seeder:        seeder,
		districts:     districts,
		hospitals:     hospitals,
		serviceTypes:  serviceTypes,
		quals:         quals,
		manufacturers: manufacturers,
	}
}

func TestRun_PopulatesReferenceData(t *testing.T) {
	f := newFixtures()
	if err := f.seeder.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(f.districts.items); got != 5 {
		t.Errorf("districts = %d, want 5", got)
	}
	if got := len(f.serviceTypes.items); got != 5 {
		t.Errorf("service types = %d, want 5", got)
	}
	if got := len(f.hospitals.items); got != 10 {
		t.Errorf("hospitals = %d, want 10", got)
	}
	if got := len(f.quals.items); got != 5 {
		t.Errorf("qualifications = %d, want 5", got)
	}
	if got := len(f.manufacturers.items); got != 3 {
		t.Errorf("manufacturers = %d, want 3", got)
	}

	publicCount, privateCount := 0, 0
	for _, h := range f.hospitals.items {
		switch h.Kind {
		case facility.KindPublic:
			publicCount++
			if h.Public == nil {
				t.Errorf("public hospital %s missing detail", h.Name)
			}
		case facility.KindPrivate:
			privateCount++
			if h.Private == nil {
				t.Errorf("private hospital %s missing detail", h.Name)
			}
		}
	}
	if publicCount != 5 || privateCount != 5 {
		t.Errorf("kind split = %d public / %d private, want 5/5", publicCount, privateCount)
	}
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixtures()
	ctx := context.Background()

	if err := f.seeder.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.seeder.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if got := len(f.districts.items); got != 5 {
		t.Errorf("districts after rerun = %d, want 5", got)
	}
	if got := len(f.hospitals.items); got != 10 {
		t.Errorf("hospitals after rerun = %d, want 10", got)
	}
	if got := len(f.serviceTypes.items); got != 5 {
		t.Errorf("service types after rerun = %d, want 5", got)
	}
	if got := len(f.quals.items); got != 5 {
		t.Errorf("qualifications after rerun = %d, want 5", got)
	}
	if got := len(f.manufacturers.items); got != 3 {
		t.Errorf("manufacturers after rerun = %d, want 3", got)
	}
}

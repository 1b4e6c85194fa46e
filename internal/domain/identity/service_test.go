package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repositories --

type mockUserRepo struct {
	items map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{items: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.items[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.items {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

type mockQualificationRepo struct {
	items map[uuid.UUID]*Qualification
}

func newMockQualificationRepo() *mockQualificationRepo {
	return &mockQualificationRepo{items: make(map[uuid.UUID]*Qualification)}
}

func (m *mockQualificationRepo) Create(_ context.Context, q *Qualification) error {
	q.ID = uuid.New()
	m.items[q.ID] = q
	return nil
}

func (m *mockQualificationRepo) GetByCode(_ context.Context, code string) (*Qualification, error) {
	for _, q := range m.items {
		if q.Code == code {
			return q, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockQualificationRepo) List(_ context.Context) ([]*Qualification, error) {
	var result []*Qualification
	for _, q := range m.items {
		result = append(result, q)
	}
	return result, nil
}

type mockDoctorRepo struct {
	items map[uuid.UUID]*Doctor
	links []*DoctorQualification
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{items: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.items[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	for _, d := range m.items {
		if d.UserID != nil && *d.UserID == userID {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.items[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockDoctorRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.items {
		if d.HospitalID == hospitalID {
			result = append(result, d)
		}
	}
	return result, len(result), nil
}

func (m *mockDoctorRepo) AddQualification(_ context.Context, dq *DoctorQualification) error {
	for _, l := range m.links {
		if l.DoctorID == dq.DoctorID && l.QualificationID == dq.QualificationID {
			return nil
		}
	}
	m.links = append(m.links, dq)
	return nil
}

func (m *mockDoctorRepo) ListQualifications(_ context.Context, doctorID uuid.UUID) ([]*Qualification, error) {
	var result []*Qualification
	for _, l := range m.links {
		if l.DoctorID == doctorID {
			result = append(result, &Qualification{ID: l.QualificationID})
		}
	}
	return result, nil
}

type mockPatientRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.items[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	for _, p := range m.items {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.items {
		result = append(result, p)
	}
	return result, len(result), nil
}

func newTestService() (*Service, *mockUserRepo, *mockDoctorRepo) {
	users := newMockUserRepo()
	doctors := newMockDoctorRepo()
	issuer := auth.NewTokenIssuer([]byte("test-secret-key-with-enough-bytes"), "hms-test", time.Hour)
	return NewService(users, newMockQualificationRepo(), doctors, newMockPatientRepo(), issuer),
		users, doctors
}

// -- Tests --

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "password123", FullName: "A", Role: auth.RolePatient}},
		{"short password", RegisterRequest{Email: "a@b.com", Password: "short", FullName: "A", Role: auth.RolePatient}},
		{"missing name", RegisterRequest{Email: "a@b.com", Password: "password123", Role: auth.RolePatient}},
		{"invalid role", RegisterRequest{Email: "a@b.com", Password: "password123", FullName: "A", Role: "NURSE"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, &tc.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegister_NormalizesEmailAndHashesPassword(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &RegisterRequest{
		Email:    "  Alice@Example.COM ",
		Password: "password123",
		FullName: "Alice",
		Role:     auth.RolePatient,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", u.Email)
	}
	if u.PasswordHash == "password123" || u.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
	if _, err := users.GetByEmail(ctx, "alice@example.com"); err != nil {
		t.Errorf("user not persisted: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := RegisterRequest{Email: "bob@example.com", Password: "password123", FullName: "Bob", Role: auth.RoleDoctor}
	if _, err := svc.Register(ctx, &req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, &req); err == nil {
		t.Error("expected duplicate email error")
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{
		Email: "carol@example.com", Password: "password123", FullName: "Carol", Role: auth.RoleAdmin,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, &Credentials{Email: "carol@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Role != auth.RoleAdmin {
		t.Errorf("role = %q, want ADMIN", resp.User.Role)
	}

	if _, err := svc.Login(ctx, &Credentials{Email: "carol@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, &Credentials{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestGetOrCreateQualification_Idempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.GetOrCreateQualification(ctx, "mbbs", "Bachelor of Medicine")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if !created {
		t.Error("first call: expected created=true")
	}
	if first.Code != "MBBS" {
		t.Errorf("code = %q, want uppercased MBBS", first.Code)
	}

	second, created, err := svc.GetOrCreateQualification(ctx, "MBBS", "Bachelor of Medicine")
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

func TestAddDoctorQualification_Idempotent(t *testing.T) {
	svc, _, doctors := newTestService()
	ctx := context.Background()

	d := &Doctor{FullName: "Dr. Rahman", Specialization: "Cardiology", HospitalID: uuid.New()}
	if err := svc.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}

	qID := uuid.New()
	year := 2010
	if err := svc.AddDoctorQualification(ctx, d.ID, qID, &year); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.AddDoctorQualification(ctx, d.ID, qID, &year); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(doctors.links) != 1 {
		t.Errorf("links = %d, want 1", len(doctors.links))
	}

	if err := svc.AddDoctorQualification(ctx, uuid.New(), qID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown doctor: got %v, want ErrNotFound", err)
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.CreateDoctor(ctx, &Doctor{Specialization: "ENT", HospitalID: uuid.New()}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateDoctor(ctx, &Doctor{FullName: "Dr. X", HospitalID: uuid.New()}); err == nil {
		t.Error("expected error for missing specialization")
	}
	if err := svc.CreateDoctor(ctx, &Doctor{FullName: "Dr. X", Specialization: "ENT"}); err == nil {
		t.Error("expected error for missing hospital")
	}
}

package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	districts   DistrictRepository
	hospitals   HospitalRepository
	departments DepartmentRepository
	labs        LabRepository
	stats       StatsRepository
}

func NewService(d DistrictRepository, h HospitalRepository, dep DepartmentRepository, l LabRepository, st StatsRepository) *Service {
	return &Service{districts: d, hospitals: h, departments: dep, labs: l, stats: st}
}

// -- District --

func (s *Service) CreateDistrict(ctx context.Context, d *District) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Division == "" {
		return fmt.Errorf("division is required")
	}
	return s.districts.Create(ctx, d)
}

func (s *Service) GetDistrict(ctx context.Context, id uuid.UUID) (*District, error) {
	return s.districts.GetByID(ctx, id)
}

func (s *Service) ListDistricts(ctx context.Context, limit, offset int) ([]*District, int, error) {
	return s.districts.List(ctx, limit, offset)
}

// GetOrCreateDistrict looks a district up by name and creates it when absent.
// Returns the row and whether it was newly created.
func (s *Service) GetOrCreateDistrict(ctx context.Context, name, division string) (*District, bool, error) {
	d, err := s.districts.GetByName(ctx, name)
	if err == nil {
		return d, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	d = &District{Name: name, Division: division}
	if err := s.districts.Create(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// -- Hospital --

var validHospitalKinds = map[string]bool{
	KindPublic: true, KindPrivate: true,
}

func (s *Service) CreateHospital(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return fmt.Errorf("name is required")
	}
	if h.RegistrationNo == "" {
		return fmt.Errorf("registration_no is required")
	}
	if h.DistrictID == uuid.Nil {
		return fmt.Errorf("district_id is required")
	}
	if !validHospitalKinds[h.Kind] {
		return fmt.Errorf("invalid hospital kind: %s", h.Kind)
	}
	if h.Kind == KindPublic && h.Public == nil {
		return fmt.Errorf("public hospital detail is required")
	}
	if h.Kind == KindPrivate && h.Private == nil {
		return fmt.Errorf("private hospital detail is required")
	}
	return s.hospitals.Create(ctx, h)
}

// GetOrCreateHospital looks up a hospital by registration number, creating it
// when absent. Returns whether a new row was created.
func (s *Service) GetOrCreateHospital(ctx context.Context, h *Hospital) (*Hospital, bool, error) {
	if h.RegistrationNo == "" {
		return nil, false, fmt.Errorf("registration_no is required")
	}
	existing, err := s.hospitals.GetByRegistrationNo(ctx, h.RegistrationNo)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if err := s.CreateHospital(ctx, h); err != nil {
		return nil, false, err
	}
	return h, true, nil
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

func (s *Service) UpdateHospital(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.hospitals.Update(ctx, h)
}

func (s *Service) ListHospitals(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, limit, offset)
}

func (s *Service) ListHospitalsByDistrict(ctx context.Context, districtID uuid.UUID, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.ListByDistrict(ctx, districtID, limit, offset)
}

// -- Department --

func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	if d.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := s.departments.GetByHospitalAndName(ctx, d.HospitalID, d.Name); err == nil {
		return fmt.Errorf("department %q already exists in this hospital", d.Name)
	} else if err != ErrNotFound {
		return err
	}
	return s.departments.Create(ctx, d)
}

func (s *Service) GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	return s.departments.GetByID(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, d *Department) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.departments.Update(ctx, d)
}

func (s *Service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	return s.departments.Delete(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Department, int, error) {
	return s.departments.ListByHospital(ctx, hospitalID, limit, offset)
}

// -- Lab --

func (s *Service) CreateLab(ctx context.Context, l *Lab) error {
	if l.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) GetLab(ctx context.Context, id uuid.UUID) (*Lab, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) UpdateLab(ctx context.Context, l *Lab) error {
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.labs.Update(ctx, l)
}

func (s *Service) DeleteLab(ctx context.Context, id uuid.UUID) error {
	return s.labs.Delete(ctx, id)
}

func (s *Service) ListLabs(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Lab, int, error) {
	return s.labs.ListByHospital(ctx, hospitalID, limit, offset)
}

// -- Dashboard --

func (s *Service) Dashboard(ctx context.Context, hospitalID uuid.UUID) (*DashboardStats, error) {
	if hospitalID == uuid.Nil {
		return nil, fmt.Errorf("hospital_id is required")
	}
	return s.stats.Dashboard(ctx, hospitalID)
}

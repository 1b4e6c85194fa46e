package facility

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type DistrictRepository interface {
	Create(ctx context.Context, d *District) error
	GetByID(ctx context.Context, id uuid.UUID) (*District, error)
	GetByName(ctx context.Context, name string) (*District, error)
	List(ctx context.Context, limit, offset int) ([]*District, int, error)
}

type HospitalRepository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	GetByRegistrationNo(ctx context.Context, regNo string) (*Hospital, error)
	Update(ctx context.Context, h *Hospital) error
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
	ListByDistrict(ctx context.Context, districtID uuid.UUID, limit, offset int) ([]*Hospital, int, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	GetByHospitalAndName(ctx context.Context, hospitalID uuid.UUID, name string) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Department, int, error)
}

type LabRepository interface {
	Create(ctx context.Context, l *Lab) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lab, error)
	Update(ctx context.Context, l *Lab) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Lab, int, error)
}

// StatsRepository aggregates dashboard counts across tables.
type StatsRepository interface {
	Dashboard(ctx context.Context, hospitalID uuid.UUID) (*DashboardStats, error)
}

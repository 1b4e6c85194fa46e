package facility

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// District maps to the district table.
type District struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Division  string    `db:"division" json:"division"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Hospital kinds. A hospital row is extended by exactly one detail row.
const (
	KindPublic  = "PUBLIC"
	KindPrivate = "PRIVATE"
)

// Hospital maps to the hospital table.
type Hospital struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Address           string     `db:"address" json:"address"`
	Phone             string     `db:"phone" json:"phone"`
	Email             *string    `db:"email" json:"email,omitempty"`
	Capacity          int        `db:"capacity" json:"capacity"`
	RegistrationNo    string     `db:"registration_no" json:"registration_no"`
	EmergencyServices bool       `db:"emergency_services" json:"emergency_services"`
	EstablishedDate   *time.Time `db:"established_date" json:"established_date,omitempty"`
	Website           *string    `db:"website" json:"website,omitempty"`
	DistrictID        uuid.UUID  `db:"district_id" json:"district_id"`
	Kind              string     `db:"kind" json:"kind"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	Public  *PublicDetail  `json:"public,omitempty"`
	Private *PrivateDetail `json:"private,omitempty"`
}

// PublicDetail maps to the public_hospital table.
type PublicDetail struct {
	HospitalID         uuid.UUID       `db:"hospital_id" json:"-"`
	GovtFunding        decimal.Decimal `db:"govt_funding" json:"govt_funding"`
	AccreditationLevel string          `db:"accreditation_level" json:"accreditation_level"`
	Subsidies          decimal.Decimal `db:"subsidies" json:"subsidies"`
}

// PrivateDetail maps to the private_hospital table.
type PrivateDetail struct {
	HospitalID   uuid.UUID       `db:"hospital_id" json:"-"`
	OwnerName    string          `db:"owner_name" json:"owner_name"`
	ProfitMargin decimal.Decimal `db:"profit_margin" json:"profit_margin"`
}

// Department maps to the department table. Name is unique per hospital.
type Department struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HospitalID  uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Lab maps to the lab table.
type Lab struct {
	ID            uuid.UUID `db:"id" json:"id"`
	HospitalID    uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name          string    `db:"name" json:"name"`
	Location      *string   `db:"location" json:"location,omitempty"`
	ContactNumber *string   `db:"contact_number" json:"contact_number,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DashboardStats is the admin dashboard summary for one hospital.
type DashboardStats struct {
	Departments        int        `json:"departments"`
	Doctors            int        `json:"doctors"`
	Labs               int        `json:"labs"`
	TodaysAppointments int        `json:"todays_appointments"`
	WeeklyAppointments []DayCount `json:"weekly_appointments"`
}

// DayCount is one day's appointment total in the dashboard chart.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

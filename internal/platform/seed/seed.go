// Package seed populates the reference data a fresh deployment needs:
// districts, service types, hospitals, qualifications and manufacturers.
// Every record is inserted through a get-or-create keyed on its natural key,
// so running the seeder repeatedly changes nothing.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/facility"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/domain/medication"
)

type Seeder struct {
	facilities *facility.Service
	billing    *billing.Service
	identity   *identity.Service
	medication *medication.Service
	log        zerolog.Logger
}

func New(facilities *facility.Service, billingSvc *billing.Service,
	identitySvc *identity.Service, medicationSvc *medication.Service,
	log zerolog.Logger) *Seeder {
	return &Seeder{
		facilities: facilities,
		billing:    billingSvc,
		identity:   identitySvc,
		medication: medicationSvc,
		log:        log,
	}
}

// Run seeds all reference data. Safe to call on every startup.
func (s *Seeder) Run(ctx context.Context) error {
	districts, err := s.seedDistricts(ctx)
	if err != nil {
		return fmt.Errorf("seed districts: %w", err)
	}
	if err := s.seedServiceTypes(ctx); err != nil {
		return fmt.Errorf("seed service types: %w", err)
	}
	if err := s.seedHospitals(ctx, districts); err != nil {
		return fmt.Errorf("seed hospitals: %w", err)
	}
	if err := s.seedQualifications(ctx); err != nil {
		return fmt.Errorf("seed qualifications: %w", err)
	}
	if err := s.seedManufacturers(ctx); err != nil {
		return fmt.Errorf("seed manufacturers: %w", err)
	}
	s.log.Info().Msg("seeding complete")
	return nil
}

func (s *Seeder) seedDistricts(ctx context.Context) (map[string]*facility.District, error) {
	rows := []struct{ name, division string }{
		{"Dhaka", "Dhaka"},
		{"Chattogram", "Chattogram"},
		{"Sylhet", "Sylhet"},
		{"Rajshahi", "Rajshahi"},
		{"Khulna", "Khulna"},
	}
	out := make(map[string]*facility.District, len(rows))
	created := 0
	for _, row := range rows {
		d, isNew, err := s.facilities.GetOrCreateDistrict(ctx, row.name, row.division)
		if err != nil {
			return nil, err
		}
		if isNew {
			created++
		}
		out[row.name] = d
	}
	s.log.Info().Int("created", created).Int("total", len(rows)).Msg("districts seeded")
	return out, nil
}

func (s *Seeder) seedServiceTypes(ctx context.Context) error {
	names := []string{"Consultation", "Laboratory", "Pharmacy", "Emergency", "Surgery"}
	created := 0
	for _, name := range names {
		_, isNew, err := s.billing.GetOrCreateServiceType(ctx, name)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	s.log.Info().Int("created", created).Int("total", len(names)).Msg("service types seeded")
	return nil
}

func (s *Seeder) seedHospitals(ctx context.Context, districts map[string]*facility.District) error {
	public := []struct {
		name, regNo, district, accreditation string
		funding                              float64
	}{
		{"Dhaka Medical College Hospital", "GOV-DH-001", "Dhaka", "A", 50000000},
		{"Chattogram Medical College Hospital", "GOV-CT-001", "Chattogram", "A", 35000000},
		{"Sylhet MAG Osmani Medical College Hospital", "GOV-SY-001", "Sylhet", "B", 28000000},
		{"Rajshahi Medical College Hospital", "GOV-RJ-001", "Rajshahi", "B", 26000000},
		{"Khulna Medical College Hospital", "GOV-KH-001", "Khulna", "B", 24000000},
	}
	private := []struct {
		name, regNo, district, owner string
		margin                       float64
	}{
		{"Square Hospital", "PVT-DH-001", "Dhaka", "Square Group", 18.5},
		{"United Hospital", "PVT-DH-002", "Dhaka", "United Group", 16.0},
		{"Evercare Hospital Dhaka", "PVT-DH-003", "Dhaka", "Evercare Group", 21.0},
		{"Imperial Hospital", "PVT-CT-001", "Chattogram", "Imperial Trust", 14.0},
		{"Mount Adora Hospital", "PVT-SY-001", "Sylhet", "Mount Adora Group", 12.5},
	}

	created := 0
	for _, row := range public {
		h := &facility.Hospital{
			Name:           row.name,
			RegistrationNo: row.regNo,
			DistrictID:     districts[row.district].ID,
			Kind:           facility.KindPublic,
			Public: &facility.PublicDetail{
				GovtFunding:        decimal.NewFromFloat(row.funding),
				AccreditationLevel: row.accreditation,
			},
		}
		_, isNew, err := s.facilities.GetOrCreateHospital(ctx, h)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	for _, row := range private {
		h := &facility.Hospital{
			Name:           row.name,
			RegistrationNo: row.regNo,
			DistrictID:     districts[row.district].ID,
			Kind:           facility.KindPrivate,
			Private: &facility.PrivateDetail{
				OwnerName:    row.owner,
				ProfitMargin: decimal.NewFromFloat(row.margin),
			},
		}
		_, isNew, err := s.facilities.GetOrCreateHospital(ctx, h)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	s.log.Info().Int("created", created).Int("total", len(public)+len(private)).Msg("hospitals seeded")
	return nil
}

func (s *Seeder) seedQualifications(ctx context.Context) error {
	rows := []struct{ code, degree string }{
		{"MBBS", "Bachelor of Medicine and Bachelor of Surgery"},
		{"MD", "Doctor of Medicine"},
		{"MS", "Master of Surgery"},
		{"FCPS", "Fellow of the College of Physicians and Surgeons"},
		{"FRCS", "Fellow of the Royal College of Surgeons"},
	}
	created := 0
	for _, row := range rows {
		_, isNew, err := s.identity.GetOrCreateQualification(ctx, row.code, row.degree)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	s.log.Info().Int("created", created).Int("total", len(rows)).Msg("qualifications seeded")
	return nil
}

func (s *Seeder) seedManufacturers(ctx context.Context) error {
	country := "Bangladesh"
	rows := []struct{ name, licenseNo string }{
		{"Square Pharmaceuticals", "DGDA-MFG-001"},
		{"Beximco Pharmaceuticals", "DGDA-MFG-002"},
		{"Incepta Pharmaceuticals", "DGDA-MFG-003"},
	}
	created := 0
	for _, row := range rows {
		m := &medication.Manufacturer{Name: row.name, LicenseNo: row.licenseNo, Country: &country}
		_, isNew, err := s.medication.GetOrCreateManufacturer(ctx, m)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	s.log.Info().Int("created", created).Int("total", len(rows)).Msg("manufacturers seeded")
	return nil
}

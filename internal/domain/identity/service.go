package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/auth"
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

var validRoles = map[string]bool{
	auth.RoleAdmin:   true,
	auth.RoleDoctor:  true,
	auth.RolePatient: true,
}

type Service struct {
	users          UserRepository
	qualifications QualificationRepository
	doctors        DoctorRepository
	patients       PatientRepository
	tokens         *auth.TokenIssuer
}

func NewService(users UserRepository, qualifications QualificationRepository,
	doctors DoctorRepository, patients PatientRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{
		users:          users,
		qualifications: qualifications,
		doctors:        doctors,
		patients:       patients,
		tokens:         tokens,
	}
}

// -- Authentication --

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if req.FullName == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if !validRoles[req.Role] {
		return nil, fmt.Errorf("invalid role: %s", req.Role)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		HospitalID:   req.HospitalID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, creds *Credentials) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	var hospitalID string
	if u.HospitalID != nil {
		hospitalID = u.HospitalID.String()
	}
	token, err := s.tokens.Issue(u.ID.String(), u.Role, hospitalID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, User: u}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// -- Qualifications --

// GetOrCreateQualification looks up a qualification by code, creating it when
// absent. Returns whether a new row was created.
func (s *Service) GetOrCreateQualification(ctx context.Context, code, degreeName string) (*Qualification, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, false, fmt.Errorf("qualification code is required")
	}
	existing, err := s.qualifications.GetByCode(ctx, code)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	q := &Qualification{Code: code, DegreeName: degreeName}
	if err := s.qualifications.Create(ctx, q); err != nil {
		return nil, false, err
	}
	return q, true, nil
}

func (s *Service) ListQualifications(ctx context.Context) ([]*Qualification, error) {
	return s.qualifications.List(ctx)
}

// -- Doctors --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if d.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if d.ConsultationFee.IsNegative() {
		return fmt.Errorf("consultation_fee cannot be negative")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByUserID(ctx, userID)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return err
	}
	if d.ConsultationFee.IsNegative() {
		return fmt.Errorf("consultation_fee cannot be negative")
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctorsByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.ListByHospital(ctx, hospitalID, limit, offset)
}

// AddDoctorQualification links a qualification to a doctor. The link is
// idempotent; re-adding an existing pair is not an error.
func (s *Service) AddDoctorQualification(ctx context.Context, doctorID, qualificationID uuid.UUID, obtainedYear *int) error {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return err
	}
	return s.doctors.AddQualification(ctx, &DoctorQualification{
		DoctorID:        doctorID,
		QualificationID: qualificationID,
		ObtainedYear:    obtainedYear,
	})
}

func (s *Service) ListDoctorQualifications(ctx context.Context, doctorID uuid.UUID) ([]*Qualification, error) {
	return s.doctors.ListQualifications(ctx, doctorID)
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.patients.GetByUserID(ctx, userID)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if _, err := s.patients.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

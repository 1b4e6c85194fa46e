package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User maps to the app_user table. Role is one of auth.RoleAdmin,
// auth.RoleDoctor, auth.RolePatient.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         string     `db:"role" json:"role"`
	HospitalID   *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Qualification maps to the qualification table (MBBS, MD, ...).
type Qualification struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	DegreeName string    `db:"degree_name" json:"degree_name"`
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	FullName        string          `db:"full_name" json:"full_name"`
	Specialization  string          `db:"specialization" json:"specialization"`
	Phone           *string         `db:"phone" json:"phone,omitempty"`
	HospitalID      uuid.UUID       `db:"hospital_id" json:"hospital_id"`
	DepartmentID    *uuid.UUID      `db:"department_id" json:"department_id,omitempty"`
	ConsultationFee decimal.Decimal `db:"consultation_fee" json:"consultation_fee"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// DoctorQualification links a doctor to a qualification; the pair is unique.
type DoctorQualification struct {
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	QualificationID uuid.UUID `db:"qualification_id" json:"qualification_id"`
	ObtainedYear    *int      `db:"obtained_year" json:"obtained_year,omitempty"`
}

// Patient maps to the patient table.
type Patient struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	UserID                *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FullName              string     `db:"full_name" json:"full_name"`
	DateOfBirth           *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                *string    `db:"gender" json:"gender,omitempty"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	Address               *string    `db:"address" json:"address,omitempty"`
	BloodGroup            *string    `db:"blood_group" json:"blood_group,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	HospitalID *uuid.UUID `json:"hospital_id,omitempty"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

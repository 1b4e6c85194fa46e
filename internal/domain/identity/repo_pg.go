package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, email, password_hash, full_name, role, hospital_id, created_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.HospitalID, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO app_user (id, email, password_hash, full_name, role, hospital_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.HospitalID)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE email = $1`, email))
}

// =========== Qualification Repository ===========

type qualificationRepoPG struct{ pool *pgxpool.Pool }

func NewQualificationRepoPG(pool *pgxpool.Pool) QualificationRepository {
	return &qualificationRepoPG{pool: pool}
}

func (r *qualificationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const qualificationCols = `id, code, degree_name`

func (r *qualificationRepoPG) scanQualification(row pgx.Row) (*Qualification, error) {
	var q Qualification
	err := row.Scan(&q.ID, &q.Code, &q.DegreeName)
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *qualificationRepoPG) Create(ctx context.Context, q *Qualification) error {
	q.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO qualification (id, code, degree_name) VALUES ($1, $2, $3)`,
		q.ID, q.Code, q.DegreeName)
	return err
}

func (r *qualificationRepoPG) GetByCode(ctx context.Context, code string) (*Qualification, error) {
	return r.scanQualification(r.conn(ctx).QueryRow(ctx,
		`SELECT `+qualificationCols+` FROM qualification WHERE code = $1`, code))
}

func (r *qualificationRepoPG) List(ctx context.Context) ([]*Qualification, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+qualificationCols+` FROM qualification ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Qualification
	for rows.Next() {
		q, err := r.scanQualification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, user_id, full_name, specialization, phone, hospital_id,
	department_id, consultation_fee, created_at`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.FullName, &d.Specialization, &d.Phone, &d.HospitalID,
		&d.DepartmentID, &d.ConsultationFee, &d.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, user_id, full_name, specialization, phone, hospital_id,
			department_id, consultation_fee)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.UserID, d.FullName, d.Specialization, d.Phone, d.HospitalID,
		d.DepartmentID, d.ConsultationFee)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE user_id = $1`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET full_name=$2, specialization=$3, phone=$4,
			department_id=$5, consultation_fee=$6
		WHERE id = $1`,
		d.ID, d.FullName, d.Specialization, d.Phone,
		d.DepartmentID, d.ConsultationFee)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *doctorRepoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor WHERE hospital_id = $1`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE hospital_id = $1 ORDER BY full_name LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

func (r *doctorRepoPG) AddQualification(ctx context.Context, dq *DoctorQualification) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_qualification (doctor_id, qualification_id, obtained_year)
		VALUES ($1, $2, $3)
		ON CONFLICT (doctor_id, qualification_id) DO NOTHING`,
		dq.DoctorID, dq.QualificationID, dq.ObtainedYear)
	return err
}

func (r *doctorRepoPG) ListQualifications(ctx context.Context, doctorID uuid.UUID) ([]*Qualification, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT q.id, q.code, q.degree_name
		FROM qualification q
		JOIN doctor_qualification dq ON dq.qualification_id = q.id
		WHERE dq.doctor_id = $1
		ORDER BY q.code`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Qualification
	for rows.Next() {
		var q Qualification
		if err := rows.Scan(&q.ID, &q.Code, &q.DegreeName); err != nil {
			return nil, err
		}
		items = append(items, &q)
	}
	return items, rows.Err()
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, user_id, full_name, date_of_birth, gender, phone, address,
	blood_group, emergency_contact_name, emergency_contact_phone, created_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.DateOfBirth, &p.Gender, &p.Phone, &p.Address,
		&p.BloodGroup, &p.EmergencyContactName, &p.EmergencyContactPhone, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, user_id, full_name, date_of_birth, gender, phone, address,
			blood_group, emergency_contact_name, emergency_contact_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.UserID, p.FullName, p.DateOfBirth, p.Gender, p.Phone, p.Address,
		p.BloodGroup, p.EmergencyContactName, p.EmergencyContactPhone)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE user_id = $1`, userID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET full_name=$2, date_of_birth=$3, gender=$4, phone=$5, address=$6,
			blood_group=$7, emergency_contact_name=$8, emergency_contact_phone=$9
		WHERE id = $1`,
		p.ID, p.FullName, p.DateOfBirth, p.Gender, p.Phone, p.Address,
		p.BloodGroup, p.EmergencyContactName, p.EmergencyContactPhone)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

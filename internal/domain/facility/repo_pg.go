package facility

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// =========== District Repository ===========

type districtRepoPG struct{ pool *pgxpool.Pool }

func NewDistrictRepoPG(pool *pgxpool.Pool) DistrictRepository { return &districtRepoPG{pool: pool} }

func (r *districtRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const districtCols = `id, name, division, created_at`

func (r *districtRepoPG) scanDistrict(row pgx.Row) (*District, error) {
	var d District
	err := row.Scan(&d.ID, &d.Name, &d.Division, &d.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *districtRepoPG) Create(ctx context.Context, d *District) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO district (id, name, division) VALUES ($1, $2, $3)`,
		d.ID, d.Name, d.Division)
	return err
}

func (r *districtRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*District, error) {
	return r.scanDistrict(r.conn(ctx).QueryRow(ctx, `SELECT `+districtCols+` FROM district WHERE id = $1`, id))
}

func (r *districtRepoPG) GetByName(ctx context.Context, name string) (*District, error) {
	return r.scanDistrict(r.conn(ctx).QueryRow(ctx, `SELECT `+districtCols+` FROM district WHERE name = $1`, name))
}

func (r *districtRepoPG) List(ctx context.Context, limit, offset int) ([]*District, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM district`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+districtCols+` FROM district ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*District
	for rows.Next() {
		d, err := r.scanDistrict(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

// =========== Hospital Repository ===========

type hospitalRepoPG struct{ pool *pgxpool.Pool }

func NewHospitalRepoPG(pool *pgxpool.Pool) HospitalRepository { return &hospitalRepoPG{pool: pool} }

func (r *hospitalRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const hospitalCols = `id, name, address, phone, email, capacity, registration_no,
	emergency_services, established_date, website, district_id, kind, created_at, updated_at`

func (r *hospitalRepoPG) scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &h.Email, &h.Capacity, &h.RegistrationNo,
		&h.EmergencyServices, &h.EstablishedDate, &h.Website, &h.DistrictID, &h.Kind, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func (r *hospitalRepoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital (id, name, address, phone, email, capacity, registration_no,
			emergency_services, established_date, website, district_id, kind)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		h.ID, h.Name, h.Address, h.Phone, h.Email, h.Capacity, h.RegistrationNo,
		h.EmergencyServices, h.EstablishedDate, h.Website, h.DistrictID, h.Kind)
	if err != nil {
		return err
	}
	switch {
	case h.Public != nil:
		h.Public.HospitalID = h.ID
		_, err = r.conn(ctx).Exec(ctx, `
			INSERT INTO public_hospital (hospital_id, govt_funding, accreditation_level, subsidies)
			VALUES ($1, $2, $3, $4)`,
			h.ID, h.Public.GovtFunding, h.Public.AccreditationLevel, h.Public.Subsidies)
	case h.Private != nil:
		h.Private.HospitalID = h.ID
		_, err = r.conn(ctx).Exec(ctx, `
			INSERT INTO private_hospital (hospital_id, owner_name, profit_margin)
			VALUES ($1, $2, $3)`,
			h.ID, h.Private.OwnerName, h.Private.ProfitMargin)
	}
	return err
}

func (r *hospitalRepoPG) loadDetail(ctx context.Context, h *Hospital) error {
	switch h.Kind {
	case KindPublic:
		var p PublicDetail
		err := r.conn(ctx).QueryRow(ctx, `
			SELECT hospital_id, govt_funding, accreditation_level, subsidies
			FROM public_hospital WHERE hospital_id = $1`, h.ID).
			Scan(&p.HospitalID, &p.GovtFunding, &p.AccreditationLevel, &p.Subsidies)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil {
			h.Public = &p
		}
	case KindPrivate:
		var p PrivateDetail
		err := r.conn(ctx).QueryRow(ctx, `
			SELECT hospital_id, owner_name, profit_margin
			FROM private_hospital WHERE hospital_id = $1`, h.ID).
			Scan(&p.HospitalID, &p.OwnerName, &p.ProfitMargin)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil {
			h.Private = &p
		}
	}
	return nil
}

func (r *hospitalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := r.scanHospital(r.conn(ctx).QueryRow(ctx, `SELECT `+hospitalCols+` FROM hospital WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetail(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (r *hospitalRepoPG) GetByRegistrationNo(ctx context.Context, regNo string) (*Hospital, error) {
	h, err := r.scanHospital(r.conn(ctx).QueryRow(ctx, `SELECT `+hospitalCols+` FROM hospital WHERE registration_no = $1`, regNo))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetail(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (r *hospitalRepoPG) Update(ctx context.Context, h *Hospital) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospital SET name=$2, address=$3, phone=$4, email=$5, capacity=$6,
			emergency_services=$7, website=$8, updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Address, h.Phone, h.Email, h.Capacity,
		h.EmergencyServices, h.Website)
	return err
}

func (r *hospitalRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hospital`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+hospitalCols+` FROM hospital`+where+` ORDER BY name LIMIT $%d OFFSET $%d`, n-1, n), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := r.scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, nil
}

func (r *hospitalRepoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return r.list(ctx, "", nil, limit, offset)
}

func (r *hospitalRepoPG) ListByDistrict(ctx context.Context, districtID uuid.UUID, limit, offset int) ([]*Hospital, int, error) {
	return r.list(ctx, " WHERE district_id = $1", []interface{}{districtID}, limit, offset)
}

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const departmentCols = `id, hospital_id, name, description, created_at`

func (r *departmentRepoPG) scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.HospitalID, &d.Name, &d.Description, &d.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO department (id, hospital_id, name, description) VALUES ($1, $2, $3, $4)`,
		d.ID, d.HospitalID, d.Name, d.Description)
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	return r.scanDepartment(r.conn(ctx).QueryRow(ctx, `SELECT `+departmentCols+` FROM department WHERE id = $1`, id))
}

func (r *departmentRepoPG) GetByHospitalAndName(ctx context.Context, hospitalID uuid.UUID, name string) (*Department, error) {
	return r.scanDepartment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+departmentCols+` FROM department WHERE hospital_id = $1 AND name = $2`, hospitalID, name))
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE department SET name=$2, description=$3 WHERE id = $1`,
		d.ID, d.Name, d.Description)
	return err
}

func (r *departmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM department WHERE id = $1`, id)
	return err
}

func (r *departmentRepoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Department, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM department WHERE hospital_id = $1`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+departmentCols+` FROM department WHERE hospital_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		d, err := r.scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

// =========== Lab Repository ===========

type labRepoPG struct{ pool *pgxpool.Pool }

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository { return &labRepoPG{pool: pool} }

func (r *labRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labCols = `id, hospital_id, name, location, contact_number, created_at`

func (r *labRepoPG) scanLab(row pgx.Row) (*Lab, error) {
	var l Lab
	err := row.Scan(&l.ID, &l.HospitalID, &l.Name, &l.Location, &l.ContactNumber, &l.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *labRepoPG) Create(ctx context.Context, l *Lab) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab (id, hospital_id, name, location, contact_number) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.HospitalID, l.Name, l.Location, l.ContactNumber)
	return err
}

func (r *labRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Lab, error) {
	return r.scanLab(r.conn(ctx).QueryRow(ctx, `SELECT `+labCols+` FROM lab WHERE id = $1`, id))
}

func (r *labRepoPG) Update(ctx context.Context, l *Lab) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab SET name=$2, location=$3, contact_number=$4 WHERE id = $1`,
		l.ID, l.Name, l.Location, l.ContactNumber)
	return err
}

func (r *labRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab WHERE id = $1`, id)
	return err
}

func (r *labRepoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Lab, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab WHERE hospital_id = $1`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab WHERE hospital_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Lab
	for rows.Next() {
		l, err := r.scanLab(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

// =========== Stats Repository ===========

type statsRepoPG struct{ pool *pgxpool.Pool }

func NewStatsRepoPG(pool *pgxpool.Pool) StatsRepository { return &statsRepoPG{pool: pool} }

func (r *statsRepoPG) Dashboard(ctx context.Context, hospitalID uuid.UUID) (*DashboardStats, error) {
	var s DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM department WHERE hospital_id = $1),
			(SELECT COUNT(*) FROM doctor WHERE hospital_id = $1),
			(SELECT COUNT(*) FROM lab WHERE hospital_id = $1),
			(SELECT COUNT(*) FROM appointment a
				JOIN doctor d ON d.id = a.doctor_id
				WHERE d.hospital_id = $1 AND a.appointment_date = CURRENT_DATE)`,
		hospitalID).
		Scan(&s.Departments, &s.Doctors, &s.Labs, &s.TodaysAppointments)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT a.appointment_date, COUNT(*)
		FROM appointment a
		JOIN doctor d ON d.id = a.doctor_id
		WHERE d.hospital_id = $1
		  AND a.appointment_date BETWEEN CURRENT_DATE - 6 AND CURRENT_DATE
		GROUP BY a.appointment_date
		ORDER BY a.appointment_date`, hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dc DayCount
		var day time.Time
		if err := rows.Scan(&day, &dc.Count); err != nil {
			return nil, err
		}
		dc.Day = day
		s.WeeklyAppointments = append(s.WeeklyAppointments, dc)
	}
	return &s, rows.Err()
}

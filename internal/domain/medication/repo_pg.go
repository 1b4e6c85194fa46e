package medication

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

// =========== Manufacturer Repository ===========

type manufacturerRepoPG struct{ pool *pgxpool.Pool }

func NewManufacturerRepoPG(pool *pgxpool.Pool) ManufacturerRepository {
	return &manufacturerRepoPG{pool: pool}
}

func (r *manufacturerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const manufacturerCols = `id, name, license_no, country, phone, created_at`

func (r *manufacturerRepoPG) scanManufacturer(row pgx.Row) (*Manufacturer, error) {
	var m Manufacturer
	err := row.Scan(&m.ID, &m.Name, &m.LicenseNo, &m.Country, &m.Phone, &m.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *manufacturerRepoPG) Create(ctx context.Context, m *Manufacturer) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO manufacturer (id, name, license_no, country, phone)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Name, m.LicenseNo, m.Country, m.Phone)
	return err
}

func (r *manufacturerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Manufacturer, error) {
	return r.scanManufacturer(r.conn(ctx).QueryRow(ctx,
		`SELECT `+manufacturerCols+` FROM manufacturer WHERE id = $1`, id))
}

func (r *manufacturerRepoPG) GetByLicenseNo(ctx context.Context, licenseNo string) (*Manufacturer, error) {
	return r.scanManufacturer(r.conn(ctx).QueryRow(ctx,
		`SELECT `+manufacturerCols+` FROM manufacturer WHERE license_no = $1`, licenseNo))
}

func (r *manufacturerRepoPG) List(ctx context.Context, limit, offset int) ([]*Manufacturer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM manufacturer`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+manufacturerCols+` FROM manufacturer ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Manufacturer
	for rows.Next() {
		m, err := r.scanManufacturer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== Medicine Repository ===========

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository {
	return &medicineRepoPG{pool: pool}
}

func (r *medicineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medicineCols = `id, name, generic_name, manufacturer_id, dosage_form, strength,
	unit_price, created_at`

func (r *medicineRepoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.GenericName, &m.ManufacturerID, &m.DosageForm, &m.Strength,
		&m.UnitPrice, &m.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine (id, name, generic_name, manufacturer_id, dosage_form, strength, unit_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Name, m.GenericName, m.ManufacturerID, m.DosageForm, m.Strength, m.UnitPrice)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicine WHERE id = $1`, id))
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine SET name=$2, generic_name=$3, dosage_form=$4, strength=$5, unit_price=$6
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.DosageForm, m.Strength, m.UnitPrice)
	return err
}

func (r *medicineRepoPG) List(ctx context.Context, limit, offset int) ([]*Medicine, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicine`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medicineCols+` FROM medicine ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *medicineRepoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Medicine, int, error) {
	pattern := "%" + query + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medicine WHERE name ILIKE $1 OR generic_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medicineCols+` FROM medicine
		WHERE name ILIKE $1 OR generic_name ILIKE $1
		ORDER BY name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *medicineRepoPG) collect(rows pgx.Rows, total int) ([]*Medicine, int, error) {
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== Prescription Repository ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const prescriptionCols = `id, appointment_id, valid_until, refill_count, notes, created_at`

func (r *prescriptionRepoPG) scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.AppointmentID, &p.ValidUntil, &p.RefillCount, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (id, appointment_id, valid_until, refill_count, notes)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.AppointmentID, p.ValidUntil, p.RefillCount, p.Notes)
	return err
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE appointment_id = $1 ORDER BY created_at DESC`,
		appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) AddItem(ctx context.Context, item *PrescriptionItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription_item (id, prescription_id, medicine_id, dosage, duration_days, quantity, meal_timing)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.PrescriptionID, item.MedicineID, item.Dosage, item.DurationDays, item.Quantity, item.MealTiming)
	return err
}

func (r *prescriptionRepoPG) ListItems(ctx context.Context, prescriptionID uuid.UUID) ([]*PrescriptionItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prescription_id, medicine_id, dosage, duration_days, quantity, meal_timing
		FROM prescription_item WHERE prescription_id = $1`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PrescriptionItem
	for rows.Next() {
		var it PrescriptionItem
		if err := rows.Scan(&it.ID, &it.PrescriptionID, &it.MedicineID, &it.Dosage,
			&it.DurationDays, &it.Quantity, &it.MealTiming); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

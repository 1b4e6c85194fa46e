package pharmacy

import (
	"context"
	"errors"
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

// =========== Pharmacy Repository ===========

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyRepoPG(pool *pgxpool.Pool) PharmacyRepository {
	return &pharmacyRepoPG{pool: pool}
}

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pharmacyCols = `id, hospital_id, name, phone, created_at`

func (r *pharmacyRepoPG) scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(&p.ID, &p.HospitalID, &p.Name, &p.Phone, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *pharmacyRepoPG) Create(ctx context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy (id, hospital_id, name, phone) VALUES ($1,$2,$3,$4)`,
		p.ID, p.HospitalID, p.Name, p.Phone)
	return err
}

func (r *pharmacyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return r.scanPharmacy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1`, id))
}

func (r *pharmacyRepoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Pharmacy, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM pharmacy WHERE hospital_id = $1`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy WHERE hospital_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Pharmacy
	for rows.Next() {
		p, err := r.scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Stock Repository ===========

type stockRepoPG struct{ pool *pgxpool.Pool }

func NewStockRepoPG(pool *pgxpool.Pool) StockRepository {
	return &stockRepoPG{pool: pool}
}

func (r *stockRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const stockCols = `id, pharmacy_id, medicine_id, batch_number, stock_quantity,
	unit_price, expiry_date, last_restocked`

func (r *stockRepoPG) scanStock(row pgx.Row) (*StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.PharmacyID, &s.MedicineID, &s.BatchNumber, &s.StockQuantity,
		&s.UnitPrice, &s.ExpiryDate, &s.LastRestocked)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Upsert inserts a stock row or, when the (pharmacy, medicine, batch) triple
// exists, adds the quantity and refreshes price, expiry and last_restocked.
func (r *stockRepoPG) Upsert(ctx context.Context, item *StockItem) error {
	item.ID = uuid.New()
	now := time.Now()
	item.LastRestocked = &now
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pharmacy_medicine (id, pharmacy_id, medicine_id, batch_number,
			stock_quantity, unit_price, expiry_date, last_restocked)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (pharmacy_id, medicine_id, batch_number) DO UPDATE SET
			stock_quantity = pharmacy_medicine.stock_quantity + EXCLUDED.stock_quantity,
			unit_price = EXCLUDED.unit_price,
			expiry_date = EXCLUDED.expiry_date,
			last_restocked = EXCLUDED.last_restocked
		RETURNING id, stock_quantity`,
		item.ID, item.PharmacyID, item.MedicineID, item.BatchNumber,
		item.StockQuantity, item.UnitPrice, item.ExpiryDate, item.LastRestocked).
		Scan(&item.ID, &item.StockQuantity)
}

// Get returns the batch that will be drained next: earliest expiry first,
// matching the order ReduceStock consumes batches in.
func (r *stockRepoPG) Get(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*StockItem, error) {
	return r.scanStock(r.conn(ctx).QueryRow(ctx, `
		SELECT `+stockCols+` FROM pharmacy_medicine
		WHERE pharmacy_id = $1 AND medicine_id = $2
		ORDER BY expiry_date ASC NULLS LAST, id
		LIMIT 1`,
		pharmacyID, medicineID))
}

func (r *stockRepoPG) Quantity(ctx context.Context, pharmacyID, medicineID uuid.UUID) (int, error) {
	var qty int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(stock_quantity), 0) FROM pharmacy_medicine
		WHERE pharmacy_id = $1 AND medicine_id = $2`, pharmacyID, medicineID).Scan(&qty)
	return qty, err
}

// ReduceStock drains the medicine's batches earliest-expiry-first in a
// single statement. The rows are locked up front and nothing is decremented
// unless the combined quantity covers the request, so a concurrent reduction
// can never drive a batch below zero or leave a fill half applied. Returns
// the combined quantity remaining across all batches.
func (r *stockRepoPG) ReduceStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, qty int) (int, error) {
	var total, applied int
	err := r.conn(ctx).QueryRow(ctx, `
		WITH locked AS (
			SELECT id, stock_quantity, expiry_date
			FROM pharmacy_medicine
			WHERE pharmacy_id = $1 AND medicine_id = $2 AND stock_quantity > 0
			ORDER BY expiry_date ASC NULLS LAST, id
			FOR UPDATE
		), combined AS (
			SELECT COALESCE(SUM(stock_quantity), 0) AS qty FROM locked
		), tally AS (
			SELECT id, stock_quantity,
				SUM(stock_quantity) OVER (ORDER BY expiry_date ASC NULLS LAST, id)
					- stock_quantity AS prior
			FROM locked
		), applied AS (
			UPDATE pharmacy_medicine pm
			SET stock_quantity = pm.stock_quantity - LEAST(t.stock_quantity, $3 - t.prior)
			FROM tally t, combined
			WHERE pm.id = t.id AND t.prior < $3 AND combined.qty >= $3
			RETURNING pm.id
		)
		SELECT combined.qty, (SELECT COUNT(*) FROM applied) FROM combined`,
		pharmacyID, medicineID, qty).Scan(&total, &applied)
	if err != nil {
		return 0, err
	}
	if applied == 0 {
		return 0, ErrNotReduced
	}
	return total - qty, nil
}

func (r *stockRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM pharmacy_medicine WHERE pharmacy_id = $1`, pharmacyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stockCols+` FROM pharmacy_medicine WHERE pharmacy_id = $1 ORDER BY medicine_id LIMIT $2 OFFSET $3`,
		pharmacyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StockItem
	for rows.Next() {
		s, err := r.scanStock(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *stockRepoPG) ExpiringBefore(ctx context.Context, pharmacyID uuid.UUID, cutoff time.Time) ([]*StockItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+stockCols+` FROM pharmacy_medicine
		WHERE pharmacy_id = $1 AND expiry_date IS NOT NULL AND expiry_date <= $2 AND stock_quantity > 0
		ORDER BY expiry_date`, pharmacyID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StockItem
	for rows.Next() {
		s, err := r.scanStock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

package billing

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

// =========== ServiceType Repository ===========

type serviceTypeRepoPG struct{ pool *pgxpool.Pool }

func NewServiceTypeRepoPG(pool *pgxpool.Pool) ServiceTypeRepository {
	return &serviceTypeRepoPG{pool: pool}
}

func (r *serviceTypeRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const serviceTypeCols = `id, name, description, created_at`

func (r *serviceTypeRepoPG) scanServiceType(row pgx.Row) (*ServiceType, error) {
	var st ServiceType
	err := row.Scan(&st.ID, &st.Name, &st.Description, &st.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (r *serviceTypeRepoPG) Create(ctx context.Context, st *ServiceType) error {
	st.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_type (id, name, description) VALUES ($1,$2,$3)`,
		st.ID, st.Name, st.Description)
	return err
}

func (r *serviceTypeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceType, error) {
	return r.scanServiceType(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceTypeCols+` FROM service_type WHERE id = $1`, id))
}

func (r *serviceTypeRepoPG) GetByName(ctx context.Context, name string) (*ServiceType, error) {
	return r.scanServiceType(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceTypeCols+` FROM service_type WHERE name = $1`, name))
}

func (r *serviceTypeRepoPG) List(ctx context.Context) ([]*ServiceType, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+serviceTypeCols+` FROM service_type ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ServiceType
	for rows.Next() {
		st, err := r.scanServiceType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}

// =========== Bill Repository ===========

type billRepoPG struct{ pool *pgxpool.Pool }

func NewBillRepoPG(pool *pgxpool.Pool) BillRepository {
	return &billRepoPG{pool: pool}
}

func (r *billRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billCols = `id, patient_id, service_type_id, total_amount, paid_amount, status,
	bill_date, due_date, transaction_id, created_at`

func (r *billRepoPG) scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.PatientID, &b.ServiceTypeID, &b.TotalAmount, &b.PaidAmount, &b.Status,
		&b.BillDate, &b.DueDate, &b.TransactionID, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *billRepoPG) Create(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill (id, patient_id, service_type_id, total_amount, paid_amount, status,
			bill_date, due_date, transaction_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.ID, b.PatientID, b.ServiceTypeID, b.TotalAmount, b.PaidAmount, b.Status,
		b.BillDate, b.DueDate, b.TransactionID)
	return err
}

func (r *billRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return r.scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bill WHERE id = $1`, id))
}

func (r *billRepoPG) GetByTransactionID(ctx context.Context, transactionID string) (*Bill, error) {
	return r.scanBill(r.conn(ctx).QueryRow(ctx,
		`SELECT `+billCols+` FROM bill WHERE transaction_id = $1`, transactionID))
}

func (r *billRepoPG) Update(ctx context.Context, b *Bill) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bill SET total_amount=$2, paid_amount=$3, status=$4, due_date=$5 WHERE id = $1`,
		b.ID, b.TotalAmount, b.PaidAmount, b.Status, b.DueDate)
	return err
}

func (r *billRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM bill WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billCols+` FROM bill WHERE patient_id = $1 ORDER BY bill_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bill
	for rows.Next() {
		b, err := r.scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

// =========== PharmacyBill Repository ===========

type pharmacyBillRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyBillRepoPG(pool *pgxpool.Pool) PharmacyBillRepository {
	return &pharmacyBillRepoPG{pool: pool}
}

func (r *pharmacyBillRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pharmacyBillCols = `id, prescription_id, pharmacy_id, total_amount, status, bill_date, created_at`

func (r *pharmacyBillRepoPG) scanPharmacyBill(row pgx.Row) (*PharmacyBill, error) {
	var pb PharmacyBill
	err := row.Scan(&pb.ID, &pb.PrescriptionID, &pb.PharmacyID, &pb.TotalAmount, &pb.Status,
		&pb.BillDate, &pb.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &pb, nil
}

func (r *pharmacyBillRepoPG) Create(ctx context.Context, pb *PharmacyBill) error {
	pb.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_bill (id, prescription_id, pharmacy_id, total_amount, status, bill_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		pb.ID, pb.PrescriptionID, pb.PharmacyID, pb.TotalAmount, pb.Status, pb.BillDate)
	return err
}

func (r *pharmacyBillRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PharmacyBill, error) {
	return r.scanPharmacyBill(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyBillCols+` FROM pharmacy_bill WHERE id = $1`, id))
}

func (r *pharmacyBillRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*PharmacyBill, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM pharmacy_bill WHERE pharmacy_id = $1`, pharmacyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pharmacyBillCols+` FROM pharmacy_bill WHERE pharmacy_id = $1 ORDER BY bill_date DESC LIMIT $2 OFFSET $3`,
		pharmacyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PharmacyBill
	for rows.Next() {
		pb, err := r.scanPharmacyBill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, pb)
	}
	return items, total, rows.Err()
}

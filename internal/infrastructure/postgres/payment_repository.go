package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/egovle/sevasetu/internal/domain/payment"
)

// PaymentRepository implements payment.Repository.
type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, req *payment.Request) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_requests (request_id, user_id, user_role, amount, status, created_at, decided_by, decided_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, req.RequestID, req.UserID, req.UserRole, req.Amount, req.Status, req.CreatedAt, req.DecidedBy, req.DecidedAt, req.Version)
	return err
}

func (r *PaymentRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*payment.Request, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, request_id, user_id, user_role, amount, status, created_at, decided_by, decided_at, version
		FROM payment_requests WHERE request_id=$1
	`, requestID)
	req, err := scanRequest(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return req, err
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Request, error) {
	query := `
		SELECT id, request_id, user_id, user_role, amount, status, created_at, decided_by, decided_at, version
		FROM payment_requests`
	where := ""
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, value)
		where += clause + "$" + itoa(len(args))
	}
	if filter.UserID != nil {
		add("user_id=", *filter.UserID)
	}
	if filter.Status != nil {
		add("status=", *filter.Status)
	}
	query += where + " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $" + itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []*payment.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Update writes the request guarded by a version compare-and-set, so two
// concurrent decisions settle exactly one.
func (r *PaymentRepository) Update(ctx context.Context, req *payment.Request) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_requests SET status=$1, decided_by=$2, decided_at=$3, version=version+1
		WHERE request_id=$4 AND version=$5
	`, req.Status, req.DecidedBy, req.DecidedAt, req.RequestID, req.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrAlreadyDecided
	}
	req.Version++
	return nil
}

func scanRequest(row pgx.Row) (*payment.Request, error) {
	var req payment.Request
	if err := row.Scan(&req.ID, &req.RequestID, &req.UserID, &req.UserRole, &req.Amount,
		&req.Status, &req.CreatedAt, &req.DecidedBy, &req.DecidedAt, &req.Version); err != nil {
		return nil, err
	}
	return &req, nil
}

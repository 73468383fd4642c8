package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/egovle/sevasetu/internal/domain/catalog"
)

// CatalogRepository implements catalog.Repository.
type CatalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Create(ctx context.Context, svc *catalog.Service) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO services (service_id, name, customer_rate, vle_rate, government_fee, is_variable, price_expression, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, svc.ServiceID, svc.Name, svc.CustomerRate, svc.VLERate, svc.GovernmentFee, svc.IsVariable, svc.PriceExpression, svc.CreatedAt)
	return err
}

func (r *CatalogRepository) GetByID(ctx context.Context, serviceID uuid.UUID) (*catalog.Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, service_id, name, customer_rate, vle_rate, government_fee, is_variable, price_expression, created_at
		FROM services WHERE service_id=$1
	`, serviceID)
	svc, err := scanService(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return svc, err
}

func (r *CatalogRepository) List(ctx context.Context, limit, offset int) ([]*catalog.Service, error) {
	query := `
		SELECT id, service_id, name, customer_rate, vle_rate, government_fee, is_variable, price_expression, created_at
		FROM services ORDER BY name`
	args := []interface{}{}
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
	var services []*catalog.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func scanService(row pgx.Row) (*catalog.Service, error) {
	var svc catalog.Service
	if err := row.Scan(&svc.ID, &svc.ServiceID, &svc.Name, &svc.CustomerRate, &svc.VLERate,
		&svc.GovernmentFee, &svc.IsVariable, &svc.PriceExpression, &svc.CreatedAt); err != nil {
		return nil, err
	}
	return &svc, nil
}

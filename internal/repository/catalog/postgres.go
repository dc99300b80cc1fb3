package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"callorder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetBusiness(ctx context.Context, businessID string) (*domain.Business, error) {
	const q = `
SELECT id::text, name, category, COALESCE(phone, ''), COALESCE(location, ''), verified, created_at
FROM businesses
WHERE id = $1
`
	var b domain.Business
	err := r.pool.QueryRow(ctx, q, businessID).Scan(&b.ID, &b.Name, &b.Category, &b.Phone, &b.Location, &b.Verified, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: get business id=%s error=%v", businessID, err)
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) ListItems(ctx context.Context, businessID string) ([]domain.CatalogItem, error) {
	const q = `
SELECT id::text, business_id::text, name, COALESCE(description, ''), price_cents, currency, COALESCE(category, ''), available, created_at
FROM catalog_items
WHERE business_id = $1
ORDER BY created_at
`
	rows, err := r.pool.Query(ctx, q, businessID)
	if err != nil {
		r.logger.Printf("catalog repo: list business_id=%s error=%v", businessID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogItem
	for rows.Next() {
		var it domain.CatalogItem
		if err := rows.Scan(&it.ID, &it.BusinessID, &it.Name, &it.Description, &it.PriceCents, &it.Currency, &it.Category, &it.Available, &it.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog repo: list rows business_id=%s error=%v", businessID, err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetItem(ctx context.Context, businessID, itemID string) (*domain.CatalogItem, error) {
	const q = `
SELECT id::text, business_id::text, name, COALESCE(description, ''), price_cents, currency, COALESCE(category, ''), available, created_at
FROM catalog_items
WHERE business_id = $1 AND id = $2
`
	var it domain.CatalogItem
	err := r.pool.QueryRow(ctx, q, businessID, itemID).Scan(&it.ID, &it.BusinessID, &it.Name, &it.Description, &it.PriceCents, &it.Currency, &it.Category, &it.Available, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: get item business_id=%s id=%s error=%v", businessID, itemID, err)
		return nil, err
	}
	return &it, nil
}

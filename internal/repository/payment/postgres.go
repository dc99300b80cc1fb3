package payment

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

func (r *postgresRepo) Create(ctx context.Context, a domain.PaymentAttempt) error {
	const q = `
INSERT INTO payment_attempts (id, order_id, amount_cents, method, result, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.pool.Exec(ctx, q, a.ID, a.OrderID, a.AmountCents, string(a.Method), string(a.Result), a.CreatedAt)
	if err != nil {
		r.logger.Printf("payment repo: create id=%s order_id=%s error=%v", a.ID, a.OrderID, err)
	}
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error) {
	const q = `
SELECT id::text, order_id::text, amount_cents, method, result, created_at
FROM payment_attempts
WHERE id = $1
`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetOpenByOrder(ctx context.Context, orderID string) (*domain.PaymentAttempt, error) {
	const q = `
SELECT id::text, order_id::text, amount_cents, method, result, created_at
FROM payment_attempts
WHERE order_id = $1 AND result <> 'failed'
ORDER BY created_at DESC
LIMIT 1
`
	return r.scanOne(r.pool.QueryRow(ctx, q, orderID))
}

func (r *postgresRepo) scanOne(row pgx.Row) (*domain.PaymentAttempt, error) {
	var a domain.PaymentAttempt
	var method, result string
	if err := row.Scan(&a.ID, &a.OrderID, &a.AmountCents, &method, &result, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Method = domain.PaymentMethod(method)
	a.Result = domain.PaymentResult(result)
	return &a, nil
}

func (r *postgresRepo) SetResult(ctx context.Context, id string, result domain.PaymentResult) error {
	const q = `
UPDATE payment_attempts
SET result = $1
WHERE id = $2
`
	tag, err := r.pool.Exec(ctx, q, string(result), id)
	if err != nil {
		r.logger.Printf("payment repo: set result id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

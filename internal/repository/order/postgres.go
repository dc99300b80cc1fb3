package order

import (
	"context"
	"errors"
	"fmt"
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

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const orderQ = `
INSERT INTO orders (id, business_id, consumer_id, total_cents, currency, status, payment_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
`
	if _, err := tx.Exec(ctx, orderQ, o.ID, o.BusinessID, o.ConsumerID, o.TotalCents, o.Currency, string(o.Status), o.PaymentRef, o.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const lineQ = `
INSERT INTO order_line_items (order_id, position, name, price_cents)
VALUES ($1, $2, $3, $4)
`
	for i, line := range o.Lines {
		if _, err := tx.Exec(ctx, lineQ, o.ID, i, line.Name, line.PriceCents); err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}

	const historyQ = `
INSERT INTO order_status_history (order_id, from_status, to_status, note, occurred_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
`
	for _, change := range o.History {
		if _, err := tx.Exec(ctx, historyQ, o.ID, string(change.From), string(change.To), change.Note, change.OccurredAt); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, business_id::text, consumer_id, total_cents, currency, status, COALESCE(payment_ref, ''), created_at
FROM orders
WHERE id = $1
`
	var o domain.Order
	var status string
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.BusinessID, &o.ConsumerID, &o.TotalCents, &o.Currency, &status, &o.PaymentRef, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	o.Status = domain.OrderStatus(status)

	if o.Lines, err = r.fetchLines(ctx, id); err != nil {
		return nil, err
	}
	if o.History, err = r.History(ctx, id); err != nil {
		return nil, err
	}
	for _, change := range o.History {
		if change.Note != "" {
			o.Notes = append(o.Notes, change.Note)
		}
	}
	return &o, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	const q = `
SELECT name, price_cents
FROM order_line_items
WHERE order_id = $1
ORDER BY position
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.LineItem
	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(&line.Name, &line.PriceCents); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, businessID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, business_id::text, consumer_id, total_cents, currency, status, COALESCE(payment_ref, ''), created_at
FROM orders
WHERE business_id = $1
ORDER BY created_at DESC
`
	return r.listOrders(ctx, q, businessID)
}

func (r *postgresRepo) ListByConsumer(ctx context.Context, consumerID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, business_id::text, consumer_id, total_cents, currency, status, COALESCE(payment_ref, ''), created_at
FROM orders
WHERE consumer_id = $1
ORDER BY created_at DESC
`
	return r.listOrders(ctx, q, consumerID)
}

func (r *postgresRepo) listOrders(ctx context.Context, q, arg string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.ID, &o.BusinessID, &o.ConsumerID, &o.TotalCents, &o.Currency, &status, &o.PaymentRef, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) History(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	const q = `
SELECT from_status, to_status, COALESCE(note, ''), occurred_at
FROM order_status_history
WHERE order_id = $1
ORDER BY occurred_at, id
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		r.logger.Printf("order repo: history order_id=%s error=%v", orderID, err)
		return nil, err
	}
	defer rows.Close()

	var history []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		var from, to string
		if err := rows.Scan(&from, &to, &change.Note, &change.OccurredAt); err != nil {
			return nil, err
		}
		change.From = domain.OrderStatus(from)
		change.To = domain.OrderStatus(to)
		history = append(history, change)
	}
	return history, rows.Err()
}

// ApplyTransition writes the status change guarded by the expected
// origin status, so a concurrent writer that got there first makes this
// call fail instead of silently overwriting.
func (r *postgresRepo) ApplyTransition(ctx context.Context, in ApplyTransitionInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const updateQ = `
UPDATE orders
SET status = $1,
    payment_ref = COALESCE(NULLIF($2, ''), payment_ref)
WHERE id = $3 AND status = $4
`
	tag, err := tx.Exec(ctx, updateQ, string(in.Change.To), in.PaymentRef, in.OrderID, string(in.Change.From))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, in.OrderID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidTransition
	}

	const historyQ = `
INSERT INTO order_status_history (order_id, from_status, to_status, note, occurred_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
`
	if _, err := tx.Exec(ctx, historyQ, in.OrderID, string(in.Change.From), string(in.Change.To), in.Change.Note, in.Change.OccurredAt); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	return tx.Commit(ctx)
}

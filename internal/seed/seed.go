package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Available   bool
}

// Apply inserts demo data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	businessID, err := ensureBusiness(ctx, pool, "Pizza Maputo", "Restaurant", "+258 84 123 0000", "Maputo")
	if err != nil {
		return fmt.Errorf("ensure business: %w", err)
	}

	items := []itemSeed{
		{
			Name:        "Margherita Pizza",
			Description: "Classic tomato sauce and mozzarella",
			PriceCents:  250,
			Category:    "Pizza",
			Available:   true,
		},
		{
			Name:        "Pepperoni Pizza",
			Description: "Pepperoni, tomato sauce, and mozzarella",
			PriceCents:  280,
			Category:    "Pizza",
			Available:   true,
		},
		{
			Name:        "Hawaiian Pizza",
			Description: "Ham, pineapple, and mozzarella",
			PriceCents:  270,
			Category:    "Pizza",
			Available:   false,
		},
		{
			Name:        "Garlic Bread",
			Description: "Toasted bread with garlic butter",
			PriceCents:  80,
			Category:    "Sides",
			Available:   true,
		},
	}

	for _, item := range items {
		if err := upsertItem(ctx, pool, businessID, item); err != nil {
			return fmt.Errorf("upsert item %s: %w", item.Name, err)
		}
	}

	return nil
}

func ensureBusiness(ctx context.Context, pool *pgxpool.Pool, name, category, phone, location string) (string, error) {
	const q = `
INSERT INTO businesses (name, category, phone, location, verified)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT DO NOTHING
RETURNING id::text
`
	var id string
	err := pool.QueryRow(ctx, q, name, category, phone, location).Scan(&id)
	if err == nil {
		return id, nil
	}
	// already seeded; look it up
	const lookup = `SELECT id::text FROM businesses WHERE name = $1 LIMIT 1`
	if err := pool.QueryRow(ctx, lookup, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertItem(ctx context.Context, pool *pgxpool.Pool, businessID string, item itemSeed) error {
	const q = `
INSERT INTO catalog_items (business_id, name, description, price_cents, currency, category, available)
SELECT $1, $2, $3, $4, 'MZN', $5, $6
WHERE NOT EXISTS (
    SELECT 1 FROM catalog_items WHERE business_id = $1 AND name = $2
)
`
	_, err := pool.Exec(ctx, q, businessID, item.Name, item.Description, item.PriceCents, item.Category, item.Available)
	return err
}

package domain

import "time"

// Business is a merchant reachable by call or direct order.
type Business struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// CatalogItem is a product or service offered by a business. Price is
// in minor currency units. Items are immutable from the core's point of
// view; the business owns them.
type CatalogItem struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category,omitempty"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
}

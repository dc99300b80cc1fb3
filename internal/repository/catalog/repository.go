package catalog

import (
	"context"

	"callorder/internal/domain"
)

// Repository is the read side of the business catalog. The core never
// writes catalog data; the business owns it.
type Repository interface {
	GetBusiness(ctx context.Context, businessID string) (*domain.Business, error)
	ListItems(ctx context.Context, businessID string) ([]domain.CatalogItem, error)
	GetItem(ctx context.Context, businessID, itemID string) (*domain.CatalogItem, error)
}

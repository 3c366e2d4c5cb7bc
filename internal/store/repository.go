package store

import (
	"context"

	"github.com/stokku/inventory-service/internal/model"
)

// Repository is the read-only slice of organizational data the coordination
// subsystem needs: store and product resolution, and staff associations for
// authorization and notification fan-out. Lookups return (nil, nil) when the
// row does not exist; callers map that to a domain error.
type Repository interface {
	GetStore(ctx context.Context, id string) (*model.Store, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	IsStoreManager(ctx context.Context, userID, storeID string) (bool, error)
	IsMainStoreManager(ctx context.Context, userID string) (bool, error)

	ListOperationalStaff(ctx context.Context, storeID string) ([]model.User, error)
}

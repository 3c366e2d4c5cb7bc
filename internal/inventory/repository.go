package inventory

import (
	"context"
	"time"

	"github.com/stokku/inventory-service/internal/inventory/dto"
	"github.com/stokku/inventory-service/internal/model"
)

type Repository interface {
	// Inventory rows
	GetByStoreProduct(ctx context.Context, storeID, productID string) (*model.Inventory, error)
	GetByID(ctx context.Context, id string) (*model.Inventory, error)
	FindLowStock(ctx context.Context, storeID string) ([]model.Inventory, error)
	FindAlertCandidates(ctx context.Context, expiryHorizon time.Time) ([]model.Inventory, error)

	// Core stock operation: apply a signed delta and append the matching
	// ledger entry in one transaction. Negative deltas are conditional and
	// fail with model.ErrInsufficientStock rather than going below zero.
	AdjustStockWithMovement(ctx context.Context, storeID, productID string, movement *model.StockMovement) (*model.Inventory, error)

	// Movements / audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListSalesSince(ctx context.Context, storeID, productID string, since time.Time) ([]model.StockMovement, error)
	MovementAverageMagnitude(ctx context.Context, inventoryID string, since time.Time) (float64, error)

	// Alerts
	CreateAlert(ctx context.Context, alert *model.InventoryAlert) error
	ListUnreadAlerts(ctx context.Context, storeID string) ([]model.InventoryAlert, error)
	MarkAlertRead(ctx context.Context, alertID string) error
	StampLastAlert(ctx context.Context, inventoryID, summary string) error
}

package inventory

import (
	"context"

	"github.com/stokku/inventory-service/internal/inventory/dto"
	"github.com/stokku/inventory-service/internal/model"
)

type UseCase interface {
	GetStoreInventory(ctx context.Context, storeID, productID string) (*model.Inventory, error)
	ListLowStock(ctx context.Context, storeID string) ([]model.Inventory, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Inventory, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListUnreadAlerts(ctx context.Context, storeID string) ([]model.InventoryAlert, error)
	MarkAlertRead(ctx context.Context, alertID string) error
}

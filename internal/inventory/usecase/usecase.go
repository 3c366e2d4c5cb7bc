package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/inventory"
	"github.com/stokku/inventory-service/internal/inventory/dto"
	"github.com/stokku/inventory-service/internal/model"
)

// AlertEvaluator re-checks stock health after a mutation. Evaluation is
// advisory: its failures are logged, never propagated.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, inv *model.Inventory, recent *model.StockMovement) []model.InventoryAlert
}

type inventoryUseCase struct {
	repo   inventory.Repository
	alerts AlertEvaluator
	logger *zap.Logger
}

func NewInventoryUseCase(repo inventory.Repository, alerts AlertEvaluator, logger *zap.Logger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		alerts: alerts,
		logger: logger,
	}
}

func (uc *inventoryUseCase) GetStoreInventory(ctx context.Context, storeID, productID string) (*model.Inventory, error) {
	inv, err := uc.repo.GetByStoreProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		// A store that never held the product reads as zero stock.
		return &model.Inventory{
			StoreID:   storeID,
			ProductID: productID,
			Quantity:  0,
		}, nil
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, storeID string) ([]model.Inventory, error) {
	return uc.repo.FindLowStock(ctx, storeID)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Inventory, error) {
	if input.QuantityChange == 0 {
		return nil, fmt.Errorf("%w: quantity change must be non-zero", model.ErrValidation)
	}
	switch input.MovementType {
	case model.MovementSale:
		if input.QuantityChange > 0 {
			return nil, fmt.Errorf("%w: a sale must decrease stock", model.ErrValidation)
		}
	case model.MovementProductionIn:
		if input.QuantityChange < 0 {
			return nil, fmt.Errorf("%w: a production arrival must increase stock", model.ErrValidation)
		}
	case model.MovementAdjustment:
		// any non-zero delta
	default:
		return nil, fmt.Errorf("%w: movement type %q is not adjustable", model.ErrValidation, input.MovementType)
	}

	var createdBy *string
	if input.UserID != "" {
		createdBy = &input.UserID
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		MovementType:   input.MovementType,
		QuantityChange: input.QuantityChange,
		Notes:          input.Notes,
		CreatedBy:      createdBy,
	}

	inv, err := uc.repo.AdjustStockWithMovement(ctx, input.StoreID, input.ProductID, movement)
	if err != nil {
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv, movement)

	return inv, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) ListUnreadAlerts(ctx context.Context, storeID string) ([]model.InventoryAlert, error) {
	return uc.repo.ListUnreadAlerts(ctx, storeID)
}

func (uc *inventoryUseCase) MarkAlertRead(ctx context.Context, alertID string) error {
	return uc.repo.MarkAlertRead(ctx, alertID)
}

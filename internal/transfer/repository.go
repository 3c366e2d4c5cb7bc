package transfer

import (
	"context"

	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/transfer/dto"
)

// FulfillResult is everything a fulfillment transaction produced: the
// completed transfer and the post-commit snapshots and ledger entries of
// both affected inventory rows, for alert evaluation.
type FulfillResult struct {
	Transfer    *model.StoreTransfer
	Source      *model.Inventory
	Dest        *model.Inventory
	OutMovement *model.StockMovement
	InMovement  *model.StockMovement
}

type Repository interface {
	Create(ctx context.Context, t *model.StoreTransfer) error
	GetByID(ctx context.Context, id string) (*model.StoreTransfer, error)
	ListByStore(ctx context.Context, storeID string) ([]dto.TransferRecord, error)

	// Fulfill executes the debit/credit/ledger/status change as one atomic
	// transaction. It fails with model.ErrInsufficientStock when the
	// conditional debit rejects, and model.ErrInvalidTransition when the
	// transfer is no longer in a fulfillable status.
	Fulfill(ctx context.Context, t *model.StoreTransfer, approvedBy string) (*FulfillResult, error)

	// UpdateStatus moves a transfer from one status to another without side
	// effects (reject/cancel). The from-guard makes the transition
	// optimistic; zero affected rows yields model.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to model.TransferStatus) (*model.StoreTransfer, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/auth"
	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/store"
	"github.com/stokku/inventory-service/internal/transfer"
	"github.com/stokku/inventory-service/internal/transfer/dto"
	"github.com/stokku/inventory-service/pkg/metrics"
)

// StockReader is the read-side view of inventory the orchestrator needs for
// the request-time availability check.
type StockReader interface {
	GetByStoreProduct(ctx context.Context, storeID, productID string) (*model.Inventory, error)
}

// TransitionAuthorizer is the capability check for status transitions.
// Satisfied by auth.Authorizer.
type TransitionAuthorizer interface {
	CanTransitionTransfer(ctx context.Context, actor *auth.Actor, t *model.StoreTransfer) (bool, error)
}

// AlertEvaluator re-checks stock health on both inventory rows touched by a
// fulfillment. Runs after commit; advisory only.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, inv *model.Inventory, recent *model.StockMovement) []model.InventoryAlert
}

type transferUseCase struct {
	repo     transfer.Repository
	stock    StockReader
	stores   store.Repository
	authz    TransitionAuthorizer
	alerts   AlertEvaluator
	approval transfer.ApprovalPolicy
	logger   *zap.Logger
}

func NewTransferUseCase(
	repo transfer.Repository,
	stock StockReader,
	stores store.Repository,
	authz TransitionAuthorizer,
	alerts AlertEvaluator,
	approval transfer.ApprovalPolicy,
	logger *zap.Logger,
) transfer.UseCase {
	if approval == nil {
		approval = transfer.DefaultApprovalPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &transferUseCase{
		repo:     repo,
		stock:    stock,
		stores:   stores,
		authz:    authz,
		alerts:   alerts,
		approval: approval,
		logger:   logger,
	}
}

func (uc *transferUseCase) RequestTransfer(ctx context.Context, input *dto.RequestTransferInput) (*model.StoreTransfer, error) {
	if input.Quantity <= 0 {
		metrics.TransfersFailed.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}
	if input.SourceStoreID == input.DestStoreID {
		metrics.TransfersFailed.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: source and destination store must differ", model.ErrValidation)
	}

	source, err := uc.stores.GetStore(ctx, input.SourceStoreID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		metrics.TransfersFailed.WithLabelValues("store_not_found").Inc()
		return nil, fmt.Errorf("%w: source store %s", model.ErrStoreNotFound, input.SourceStoreID)
	}
	dest, err := uc.stores.GetStore(ctx, input.DestStoreID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		metrics.TransfersFailed.WithLabelValues("store_not_found").Inc()
		return nil, fmt.Errorf("%w: destination store %s", model.ErrStoreNotFound, input.DestStoreID)
	}
	product, err := uc.stores.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		metrics.TransfersFailed.WithLabelValues("product_not_found").Inc()
		return nil, fmt.Errorf("%w: %s", model.ErrProductNotFound, input.ProductID)
	}

	// Availability check at request time. Time passes before fulfillment,
	// so the fulfillment transaction re-checks with a conditional debit.
	inv, err := uc.stock.GetByStoreProduct(ctx, input.SourceStoreID, input.ProductID)
	if err != nil {
		return nil, err
	}
	available := int64(0)
	if inv != nil {
		available = inv.Quantity
	}
	if available < input.Quantity {
		metrics.TransfersFailed.WithLabelValues("insufficient_stock").Inc()
		return nil, fmt.Errorf("%w: requested %d, available %d",
			model.ErrInsufficientStock, input.Quantity, available)
	}

	t := &model.StoreTransfer{
		ID:            uuid.New().String(),
		SourceStoreID: input.SourceStoreID,
		DestStoreID:   input.DestStoreID,
		ProductID:     input.ProductID,
		Quantity:      input.Quantity,
		Status:        model.TransferPending,
		CreatedBy:     input.RequestedBy,
		Notes:         input.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	uc.logger.Info("transfer requested",
		zap.String("transfer_id", t.ID),
		zap.String("source_store_id", t.SourceStoreID),
		zap.String("dest_store_id", t.DestStoreID),
		zap.Int64("quantity", t.Quantity))

	if !uc.approval(source) {
		return uc.fulfill(ctx, t, input.RequestedBy)
	}
	return t, nil
}

func (uc *transferUseCase) UpdateTransferStatus(ctx context.Context, transferID string, newStatus model.TransferStatus, actor *auth.Actor) (*model.StoreTransfer, error) {
	if !newStatus.Valid() {
		metrics.TransfersFailed.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, newStatus)
	}

	t, err := uc.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, model.ErrTransferNotFound
	}

	allowed, err := uc.authz.CanTransitionTransfer(ctx, actor, t)
	if err != nil {
		return nil, err
	}
	if !allowed {
		metrics.TransfersFailed.WithLabelValues("forbidden").Inc()
		return nil, model.ErrForbidden
	}

	switch newStatus {
	case model.TransferApproved, model.TransferCompleted:
		if t.Status == model.TransferCompleted {
			if newStatus == model.TransferCompleted {
				// Completing an already-completed transfer is a no-op;
				// the side effects ran exactly once.
				return t, nil
			}
			metrics.TransfersFailed.WithLabelValues("conflict").Inc()
			return nil, fmt.Errorf("%w: transfer already completed", model.ErrInvalidTransition)
		}
		if t.Status != model.TransferPending && t.Status != model.TransferApproved {
			metrics.TransfersFailed.WithLabelValues("conflict").Inc()
			return nil, fmt.Errorf("%w: cannot fulfill a %s transfer", model.ErrInvalidTransition, t.Status)
		}
		return uc.fulfill(ctx, t, actor.UserID)

	case model.TransferRejected, model.TransferCancelled:
		if t.Status != model.TransferPending {
			metrics.TransfersFailed.WithLabelValues("conflict").Inc()
			return nil, fmt.Errorf("%w: cannot %s a %s transfer",
				model.ErrInvalidTransition, newStatus, t.Status)
		}
		updated, err := uc.repo.UpdateStatus(ctx, t.ID, model.TransferPending, newStatus)
		if err != nil {
			return nil, err
		}
		uc.logger.Info("transfer closed",
			zap.String("transfer_id", t.ID),
			zap.String("status", string(newStatus)),
			zap.String("actor", actor.UserID))
		return updated, nil
	}

	return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, newStatus)
}

// fulfill runs the atomic debit/credit transaction and, after commit,
// evaluates alerts on both affected rows.
func (uc *transferUseCase) fulfill(ctx context.Context, t *model.StoreTransfer, actorID string) (*model.StoreTransfer, error) {
	res, err := uc.repo.Fulfill(ctx, t, actorID)
	if err != nil {
		metrics.TransfersFailed.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	metrics.TransfersCompleted.Inc()

	uc.logger.Info("transfer fulfilled",
		zap.String("transfer_id", res.Transfer.ID),
		zap.Int64("quantity", res.Transfer.Quantity),
		zap.Int64("source_remaining", res.Source.Quantity),
		zap.Int64("dest_on_hand", res.Dest.Quantity))

	uc.alerts.Evaluate(ctx, res.Source, res.OutMovement)
	uc.alerts.Evaluate(ctx, res.Dest, res.InMovement)

	return res.Transfer, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, model.ErrInvalidTransition):
		return "conflict"
	}
	return "internal"
}

func (uc *transferUseCase) ListTransfers(ctx context.Context, storeID string) ([]dto.TransferRecord, error) {
	if storeID == "" {
		return nil, fmt.Errorf("%w: storeId is required", model.ErrValidation)
	}
	return uc.repo.ListByStore(ctx, storeID)
}

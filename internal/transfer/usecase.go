package transfer

import (
	"context"

	"github.com/stokku/inventory-service/internal/auth"
	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/transfer/dto"
)

// ApprovalPolicy decides whether a transfer out of the given source store
// needs explicit approval. Injected so the state machine stays testable
// independent of organizational structure.
type ApprovalPolicy func(source *model.Store) bool

// DefaultApprovalPolicy self-approves transfers initiated by the main
// warehouse; branch-to-branch transfers await a manager.
func DefaultApprovalPolicy(source *model.Store) bool {
	return source.Role != model.StoreRoleMain
}

type UseCase interface {
	RequestTransfer(ctx context.Context, input *dto.RequestTransferInput) (*model.StoreTransfer, error)
	UpdateTransferStatus(ctx context.Context, transferID string, newStatus model.TransferStatus, actor *auth.Actor) (*model.StoreTransfer, error)
	ListTransfers(ctx context.Context, storeID string) ([]dto.TransferRecord, error)
}

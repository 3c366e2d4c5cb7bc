package auth

import (
	"context"

	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/store"
)

// Authorizer is the single capability check for transfer transitions. An
// actor may transition a transfer when they are a super admin, a manager of
// the source store, or a manager of the main warehouse.
type Authorizer struct {
	stores store.Repository
}

func NewAuthorizer(stores store.Repository) *Authorizer {
	return &Authorizer{stores: stores}
}

func (a *Authorizer) CanTransitionTransfer(ctx context.Context, actor *Actor, transfer *model.StoreTransfer) (bool, error) {
	if actor == nil || transfer == nil {
		return false, nil
	}
	if actor.Role == model.UserRoleSuperAdmin {
		return true, nil
	}

	ok, err := a.stores.IsStoreManager(ctx, actor.UserID, transfer.SourceStoreID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	return a.stores.IsMainStoreManager(ctx, actor.UserID)
}

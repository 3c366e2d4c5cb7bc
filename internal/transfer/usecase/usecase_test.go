package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/auth"
	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/transfer"
	"github.com/stokku/inventory-service/internal/transfer/dto"
)

// fakeTransferRepo backs the orchestrator with an in-memory transfer table
// and a single source-stock counter, reproducing the claim-then-debit
// semantics of the real transaction under one lock.
type fakeTransferRepo struct {
	mu          sync.Mutex
	transfers   map[string]*model.StoreTransfer
	sourceStock int64
	destStock   int64
	fulfills    int
}

func newFakeTransferRepo(sourceStock int64) *fakeTransferRepo {
	return &fakeTransferRepo{
		transfers:   make(map[string]*model.StoreTransfer),
		sourceStock: sourceStock,
	}
}

func (f *fakeTransferRepo) Create(_ context.Context, t *model.StoreTransfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.transfers[t.ID] = &cp
	return nil
}

func (f *fakeTransferRepo) GetByID(_ context.Context, id string) (*model.StoreTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transfers[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTransferRepo) ListByStore(_ context.Context, _ string) ([]dto.TransferRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]dto.TransferRecord, 0, len(f.transfers))
	for _, t := range f.transfers {
		records = append(records, dto.TransferRecord{StoreTransfer: *t})
	}
	return records, nil
}

func (f *fakeTransferRepo) Fulfill(_ context.Context, t *model.StoreTransfer, approvedBy string) (*transfer.FulfillResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.transfers[t.ID]
	if !ok || (stored.Status != model.TransferPending && stored.Status != model.TransferApproved) {
		return nil, model.ErrInvalidTransition
	}
	if f.sourceStock < t.Quantity {
		return nil, model.ErrInsufficientStock
	}

	f.sourceStock -= t.Quantity
	f.destStock += t.Quantity
	f.fulfills++

	now := time.Now().UTC()
	stored.Status = model.TransferCompleted
	stored.ApprovedBy = &approvedBy
	stored.CompletedAt = &now

	cp := *stored
	return &transfer.FulfillResult{
		Transfer:    &cp,
		Source:      &model.Inventory{ID: "inv-src", StoreID: t.SourceStoreID, ProductID: t.ProductID, Quantity: f.sourceStock},
		Dest:        &model.Inventory{ID: "inv-dst", StoreID: t.DestStoreID, ProductID: t.ProductID, Quantity: f.destStock},
		OutMovement: &model.StockMovement{MovementType: model.MovementTransferOut, QuantityChange: -t.Quantity},
		InMovement:  &model.StockMovement{MovementType: model.MovementTransferIn, QuantityChange: t.Quantity},
	}, nil
}

func (f *fakeTransferRepo) UpdateStatus(_ context.Context, id string, from, to model.TransferStatus) (*model.StoreTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transfers[id]
	if !ok || t.Status != from {
		return nil, model.ErrInvalidTransition
	}
	t.Status = to
	cp := *t
	return &cp, nil
}

type fakeStores struct {
	stores   map[string]*model.Store
	products map[string]*model.Product
}

func (f *fakeStores) GetStore(_ context.Context, id string) (*model.Store, error) {
	return f.stores[id], nil
}

func (f *fakeStores) GetProduct(_ context.Context, id string) (*model.Product, error) {
	return f.products[id], nil
}

func (f *fakeStores) IsStoreManager(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeStores) IsMainStoreManager(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (f *fakeStores) ListOperationalStaff(_ context.Context, _ string) ([]model.User, error) {
	return nil, nil
}

type fakeStockReader struct {
	repo *fakeTransferRepo
}

func (f *fakeStockReader) GetByStoreProduct(_ context.Context, _, _ string) (*model.Inventory, error) {
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	return &model.Inventory{ID: "inv-src", Quantity: f.repo.sourceStock}, nil
}

type fakeAuthz struct {
	allow bool
}

func (f *fakeAuthz) CanTransitionTransfer(_ context.Context, _ *auth.Actor, _ *model.StoreTransfer) (bool, error) {
	return f.allow, nil
}

type fakeAlerts struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeAlerts) Evaluate(_ context.Context, _ *model.Inventory, _ *model.StockMovement) []model.InventoryAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

type fixture struct {
	uc     transfer.UseCase
	repo   *fakeTransferRepo
	alerts *fakeAlerts
	authz  *fakeAuthz
}

func newFixture(sourceStock int64, sourceRole model.StoreRole) *fixture {
	repo := newFakeTransferRepo(sourceStock)
	stores := &fakeStores{
		stores: map[string]*model.Store{
			"src": {ID: "src", Name: "Source", Role: sourceRole},
			"dst": {ID: "dst", Name: "Destination", Role: model.StoreRoleBranch},
		},
		products: map[string]*model.Product{
			"p1": {ID: "p1", SKU: "SKU-1", Name: "Widget"},
		},
	}
	alerts := &fakeAlerts{}
	authz := &fakeAuthz{allow: true}
	uc := NewTransferUseCase(repo, &fakeStockReader{repo: repo}, stores, authz, alerts,
		transfer.DefaultApprovalPolicy, zap.NewNop())
	return &fixture{uc: uc, repo: repo, alerts: alerts, authz: authz}
}

func requestInput(qty int64) *dto.RequestTransferInput {
	return &dto.RequestTransferInput{
		SourceStoreID: "src",
		DestStoreID:   "dst",
		ProductID:     "p1",
		Quantity:      qty,
		RequestedBy:   "u1",
	}
}

var manager = &auth.Actor{UserID: "mgr", Name: "Manager", Role: "user"}

func TestRequestTransferValidation(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	_, err := f.uc.RequestTransfer(context.Background(), &dto.RequestTransferInput{
		SourceStoreID: "src", DestStoreID: "dst", ProductID: "p1", Quantity: 0,
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.uc.RequestTransfer(context.Background(), &dto.RequestTransferInput{
		SourceStoreID: "src", DestStoreID: "src", ProductID: "p1", Quantity: 5,
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRequestTransferUnknownReferences(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	in := requestInput(5)
	in.SourceStoreID = "ghost"
	_, err := f.uc.RequestTransfer(context.Background(), in)
	assert.ErrorIs(t, err, model.ErrStoreNotFound)

	in = requestInput(5)
	in.ProductID = "ghost"
	_, err = f.uc.RequestTransfer(context.Background(), in)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestRequestTransferInsufficientStockNeverPersists(t *testing.T) {
	f := newFixture(3, model.StoreRoleBranch)

	_, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Empty(t, f.repo.transfers)
}

func TestRequestTransferFromBranchAwaitsApproval(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)
	assert.Equal(t, model.TransferPending, created.Status)
	assert.Equal(t, int64(100), f.repo.sourceStock)
	assert.Zero(t, f.alerts.calls)
}

func TestRequestTransferFromMainSelfApproves(t *testing.T) {
	f := newFixture(100, model.StoreRoleMain)

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, created.Status)
	assert.NotNil(t, created.CompletedAt)
	assert.Equal(t, int64(90), f.repo.sourceStock)
	assert.Equal(t, int64(10), f.repo.destStock)
	// Both affected rows are re-checked after commit.
	assert.Equal(t, 2, f.alerts.calls)
}

func TestApprovePendingTransferFulfills(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)

	updated, err := f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferApproved, manager)
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, "mgr", *updated.ApprovedBy)
	assert.Equal(t, int64(90), f.repo.sourceStock)
	assert.Equal(t, int64(10), f.repo.destStock)
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)

	first, err := f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferCompleted, manager)
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, first.Status)

	second, err := f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferCompleted, manager)
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, second.Status)

	// The debit ran exactly once.
	assert.Equal(t, 1, f.repo.fulfills)
	assert.Equal(t, int64(90), f.repo.sourceStock)
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)

	_, err = f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferCompleted, manager)
	require.NoError(t, err)

	// A completed transfer admits no further transitions except the
	// idempotent repeat-complete.
	_, err = f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferApproved, manager)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferRejected, manager)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferCancelled, manager)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestRejectPendingTransfer(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)

	updated, err := f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferRejected, manager)
	require.NoError(t, err)
	assert.Equal(t, model.TransferRejected, updated.Status)
	assert.Equal(t, int64(100), f.repo.sourceStock)
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	_, err := f.uc.UpdateTransferStatus(context.Background(), "any", model.TransferStatus("SHIPPED"), manager)
	assert.ErrorIs(t, err, model.ErrValidation)

	// PENDING is a creation-time status, not a transition target.
	_, err = f.uc.UpdateTransferStatus(context.Background(), "any", model.TransferPending, manager)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.uc.UpdateTransferStatus(context.Background(), "missing", model.TransferApproved, manager)
	assert.ErrorIs(t, err, model.ErrTransferNotFound)
}

func TestUpdateStatusForbidden(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)
	f.authz.allow = false

	created, err := f.uc.RequestTransfer(context.Background(), requestInput(10))
	require.NoError(t, err)

	_, err = f.uc.UpdateTransferStatus(context.Background(), created.ID, model.TransferApproved, manager)
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Equal(t, int64(100), f.repo.sourceStock)
}

func TestConcurrentFulfillmentsDebitOnce(t *testing.T) {
	f := newFixture(10, model.StoreRoleBranch)

	first, err := f.uc.RequestTransfer(context.Background(), requestInput(8))
	require.NoError(t, err)
	second, err := f.uc.RequestTransfer(context.Background(), requestInput(8))
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(transferID string) {
			defer wg.Done()
			_, err := f.uc.UpdateTransferStatus(context.Background(), transferID, model.TransferCompleted, manager)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var succeeded, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, model.ErrInsufficientStock):
			insufficient++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(2), f.repo.sourceStock)
	assert.Equal(t, 1, f.repo.fulfills)
}

func TestListTransfersRequiresStore(t *testing.T) {
	f := newFixture(100, model.StoreRoleBranch)

	_, err := f.uc.ListTransfers(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.uc.RequestTransfer(context.Background(), requestInput(5))
	require.NoError(t, err)

	records, err := f.uc.ListTransfers(context.Background(), "src")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/notifier"
)

type fakeAlertStore struct {
	mu         sync.Mutex
	created    []model.InventoryAlert
	stamped    map[string]string
	avg        float64
	avgErr     error
	createErr  error
	candidates []model.Inventory
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{stamped: make(map[string]string)}
}

func (f *fakeAlertStore) CreateAlert(_ context.Context, alert *model.InventoryAlert) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *alert)
	return nil
}

func (f *fakeAlertStore) StampLastAlert(_ context.Context, inventoryID, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stamped[inventoryID] = summary
	return nil
}

func (f *fakeAlertStore) MovementAverageMagnitude(_ context.Context, _ string, _ time.Time) (float64, error) {
	return f.avg, f.avgErr
}

func (f *fakeAlertStore) FindAlertCandidates(_ context.Context, _ time.Time) ([]model.Inventory, error) {
	return f.candidates, nil
}

type fakeStaffDirectory struct {
	staff []model.User
	err   error
}

func (f *fakeStaffDirectory) ListOperationalStaff(_ context.Context, _ string) ([]model.User, error) {
	return f.staff, f.err
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifier.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n notifier.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

var engineNow = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func newTestEngine(store *fakeAlertStore, staff *fakeStaffDirectory, notifiers ...notifier.Notifier) *Engine {
	e := NewEngine(store, staff, notifiers, zap.NewNop())
	e.now = func() time.Time { return engineNow }
	return e
}

func alertTypes(alerts []model.InventoryAlert) []model.AlertType {
	types := make([]model.AlertType, len(alerts))
	for i, a := range alerts {
		types[i] = a.AlertType
	}
	return types
}

func TestStockRules(t *testing.T) {
	inDays := func(d int) *time.Time {
		ts := engineNow.AddDate(0, 0, d)
		return &ts
	}

	tests := []struct {
		name string
		inv  model.Inventory
		want []model.AlertType
	}{
		{
			name: "healthy",
			inv:  model.Inventory{Quantity: 50, MinimumStock: 5},
			want: nil,
		},
		{
			name: "out of stock",
			inv:  model.Inventory{Quantity: 0, MinimumStock: 5},
			want: []model.AlertType{model.AlertOutOfStock},
		},
		{
			name: "low stock at the minimum",
			inv:  model.Inventory{Quantity: 5, MinimumStock: 5},
			want: []model.AlertType{model.AlertLowStock},
		},
		{
			name: "out of stock suppresses low stock",
			inv:  model.Inventory{Quantity: 0, MinimumStock: 10},
			want: []model.AlertType{model.AlertOutOfStock},
		},
		{
			name: "expired",
			inv:  model.Inventory{Quantity: 50, MinimumStock: 5, ExpiryDate: inDays(-1)},
			want: []model.AlertType{model.AlertExpired},
		},
		{
			name: "expiring soon",
			inv:  model.Inventory{Quantity: 50, MinimumStock: 5, ExpiryDate: inDays(15)},
			want: []model.AlertType{model.AlertExpiringSoon},
		},
		{
			name: "expiry outside the warning window",
			inv:  model.Inventory{Quantity: 50, MinimumStock: 5, ExpiryDate: inDays(45)},
			want: nil,
		},
		{
			name: "low stock and expiring stack",
			inv:  model.Inventory{Quantity: 3, MinimumStock: 5, ExpiryDate: inDays(10)},
			want: []model.AlertType{model.AlertLowStock, model.AlertExpiringSoon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := stockRules(&tt.inv, engineNow)
			got := make([]model.AlertType, 0, len(hits))
			for _, h := range hits {
				got = append(got, h.alertType)
			}
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluatePersistsAndStampsHigh(t *testing.T) {
	store := newFakeAlertStore()
	e := newTestEngine(store, &fakeStaffDirectory{})

	inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 0, MinimumStock: 5}
	alerts := e.Evaluate(context.Background(), inv, nil)

	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertOutOfStock, alerts[0].AlertType)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Len(t, store.created, 1)

	// HIGH severity stamps the summary onto the row.
	assert.Equal(t, alerts[0].Message, store.stamped["inv-1"])
}

func TestEvaluateMediumDoesNotStamp(t *testing.T) {
	store := newFakeAlertStore()
	e := newTestEngine(store, &fakeStaffDirectory{})

	inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 3, MinimumStock: 5}
	alerts := e.Evaluate(context.Background(), inv, nil)

	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityMedium, alerts[0].Severity)
	assert.Empty(t, store.stamped)
}

func TestEvaluateUnusualMovement(t *testing.T) {
	t.Run("fires above twice the trailing average", func(t *testing.T) {
		store := newFakeAlertStore()
		store.avg = 5
		e := newTestEngine(store, &fakeStaffDirectory{})

		inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 100, MinimumStock: 5}
		recent := &model.StockMovement{QuantityChange: -20}
		alerts := e.Evaluate(context.Background(), inv, recent)

		assert.Equal(t, []model.AlertType{model.AlertOverStock}, alertTypes(alerts))
		assert.Equal(t, model.SeverityLow, alerts[0].Severity)
	})

	t.Run("quiet at twice the average exactly", func(t *testing.T) {
		store := newFakeAlertStore()
		store.avg = 5
		e := newTestEngine(store, &fakeStaffDirectory{})

		inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 100, MinimumStock: 5}
		recent := &model.StockMovement{QuantityChange: -10}
		alerts := e.Evaluate(context.Background(), inv, recent)

		assert.Empty(t, alerts)
	})

	t.Run("average lookup failure skips the rule only", func(t *testing.T) {
		store := newFakeAlertStore()
		store.avgErr = assert.AnError
		e := newTestEngine(store, &fakeStaffDirectory{})

		inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 0, MinimumStock: 5}
		recent := &model.StockMovement{QuantityChange: -20}
		alerts := e.Evaluate(context.Background(), inv, recent)

		assert.Equal(t, []model.AlertType{model.AlertOutOfStock}, alertTypes(alerts))
	})
}

func TestEvaluatePersistFailureIsSwallowed(t *testing.T) {
	store := newFakeAlertStore()
	store.createErr = assert.AnError
	e := newTestEngine(store, &fakeStaffDirectory{})

	inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 0, MinimumStock: 5}
	alerts := e.Evaluate(context.Background(), inv, nil)

	assert.Empty(t, alerts)
	assert.Empty(t, store.stamped)
}

func TestDispatchFansOutToStaffAndChannels(t *testing.T) {
	store := newFakeAlertStore()
	staff := &fakeStaffDirectory{staff: []model.User{
		{ID: "u1", Name: "Ana"},
		{ID: "u2", Name: "Budi"},
	}}
	first := &recordingNotifier{}
	second := &recordingNotifier{err: assert.AnError}
	e := newTestEngine(store, staff, first, second)

	inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 0, MinimumStock: 5}
	alerts := e.Evaluate(context.Background(), inv, nil)

	// One alert, two recipients, both channels attempted. The failing
	// channel does not affect the result or the other channel.
	require.Len(t, alerts, 1)
	assert.Len(t, first.sent, 2)
	assert.Len(t, second.sent, 2)

	recipients := []string{first.sent[0].RecipientID, first.sent[1].RecipientID}
	assert.ElementsMatch(t, []string{"u1", "u2"}, recipients)
}

func TestDispatchStaffLookupFailure(t *testing.T) {
	store := newFakeAlertStore()
	staff := &fakeStaffDirectory{err: assert.AnError}
	ch := &recordingNotifier{}
	e := newTestEngine(store, staff, ch)

	inv := &model.Inventory{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 0, MinimumStock: 5}
	alerts := e.Evaluate(context.Background(), inv, nil)

	require.Len(t, alerts, 1)
	assert.Empty(t, ch.sent)
}

func TestSweep(t *testing.T) {
	store := newFakeAlertStore()
	store.candidates = []model.Inventory{
		{ID: "inv-1", StoreID: "s1", ProductID: "p1", Quantity: 0, MinimumStock: 5},
		{ID: "inv-2", StoreID: "s1", ProductID: "p2", Quantity: 2, MinimumStock: 5},
	}
	e := newTestEngine(store, &fakeStaffDirectory{})

	require.NoError(t, e.Sweep(context.Background()))
	assert.Len(t, store.created, 2)
	// Only the out-of-stock row is HIGH.
	assert.Len(t, store.stamped, 1)
	assert.Contains(t, store.stamped, "inv-1")
}

package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/notifier"
	"github.com/stokku/inventory-service/pkg/metrics"
)

const (
	// expiryWarningWindow is how far ahead of the expiry date the
	// EXPIRING_SOON rule fires.
	expiryWarningWindow = 30 * 24 * time.Hour

	// unusualMovementFactor flags a movement whose magnitude exceeds this
	// multiple of the trailing 30-day average for the row.
	unusualMovementFactor = 2.0

	movementLookback = 30 * 24 * time.Hour
)

// AlertStore is the slice of the inventory repository the engine writes
// through.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *model.InventoryAlert) error
	StampLastAlert(ctx context.Context, inventoryID, summary string) error
	MovementAverageMagnitude(ctx context.Context, inventoryID string, since time.Time) (float64, error)
	FindAlertCandidates(ctx context.Context, expiryHorizon time.Time) ([]model.Inventory, error)
}

// StaffDirectory resolves the recipients of alert notifications.
type StaffDirectory interface {
	ListOperationalStaff(ctx context.Context, storeID string) ([]model.User, error)
}

// Engine derives stock-health alerts from inventory state and movement
// history. It is advisory: every failure inside the engine is logged and
// swallowed so that the inventory transaction that triggered evaluation is
// never affected.
type Engine struct {
	store     AlertStore
	staff     StaffDirectory
	notifiers []notifier.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewEngine(store AlertStore, staff StaffDirectory, notifiers []notifier.Notifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:     store,
		staff:     staff,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
	}
}

type ruleHit struct {
	alertType model.AlertType
	severity  model.AlertSeverity
	message   string
}

// stockRules evaluates the state-based rules. Rules are not mutually
// exclusive; a row can be both low on stock and expiring.
func stockRules(inv *model.Inventory, now time.Time) []ruleHit {
	var hits []ruleHit

	if inv.Quantity <= 0 {
		hits = append(hits, ruleHit{
			alertType: model.AlertOutOfStock,
			severity:  model.SeverityHigh,
			message:   fmt.Sprintf("product %s is out of stock at store %s", inv.ProductID, inv.StoreID),
		})
	} else if inv.Quantity <= inv.MinimumStock {
		hits = append(hits, ruleHit{
			alertType: model.AlertLowStock,
			severity:  model.SeverityMedium,
			message: fmt.Sprintf("product %s at store %s is low on stock: %d left (minimum %d)",
				inv.ProductID, inv.StoreID, inv.Quantity, inv.MinimumStock),
		})
	}

	if inv.ExpiryDate != nil {
		switch {
		case !inv.ExpiryDate.After(now):
			hits = append(hits, ruleHit{
				alertType: model.AlertExpired,
				severity:  model.SeverityHigh,
				message: fmt.Sprintf("product %s at store %s expired on %s",
					inv.ProductID, inv.StoreID, inv.ExpiryDate.Format("2006-01-02")),
			})
		case inv.ExpiryDate.Sub(now) <= expiryWarningWindow:
			hits = append(hits, ruleHit{
				alertType: model.AlertExpiringSoon,
				severity:  model.SeverityMedium,
				message: fmt.Sprintf("product %s at store %s expires on %s",
					inv.ProductID, inv.StoreID, inv.ExpiryDate.Format("2006-01-02")),
			})
		}
	}

	return hits
}

// Evaluate runs all rules against the inventory snapshot, persists every
// fired alert, stamps the latest HIGH summary onto the row, and dispatches
// notifications to the store's operational staff.
func (e *Engine) Evaluate(ctx context.Context, inv *model.Inventory, recent *model.StockMovement) []model.InventoryAlert {
	now := e.now().UTC()
	hits := stockRules(inv, now)

	if recent != nil && recent.Magnitude() > 0 {
		avg, err := e.store.MovementAverageMagnitude(ctx, inv.ID, now.Add(-movementLookback))
		if err != nil {
			e.logger.Error("failed to compute movement average",
				zap.String("inventory_id", inv.ID), zap.Error(err))
		} else if avg > 0 && float64(recent.Magnitude()) > unusualMovementFactor*avg {
			hits = append(hits, ruleHit{
				alertType: model.AlertOverStock,
				severity:  model.SeverityLow,
				message: fmt.Sprintf("unusual movement for product %s at store %s: %d units against a 30-day average of %.1f",
					inv.ProductID, inv.StoreID, recent.Magnitude(), avg),
			})
		}
	}

	var alerts []model.InventoryAlert
	for _, hit := range hits {
		a := model.InventoryAlert{
			ID:          uuid.New().String(),
			InventoryID: inv.ID,
			StoreID:     inv.StoreID,
			ProductID:   inv.ProductID,
			AlertType:   hit.alertType,
			Severity:    hit.severity,
			Message:     hit.message,
			IsRead:      false,
			CreatedAt:   now,
		}
		if err := e.store.CreateAlert(ctx, &a); err != nil {
			e.logger.Error("failed to persist alert",
				zap.String("inventory_id", inv.ID),
				zap.String("alert_type", string(hit.alertType)),
				zap.Error(err))
			continue
		}
		metrics.AlertsEmitted.WithLabelValues(string(hit.alertType)).Inc()
		alerts = append(alerts, a)

		if hit.severity == model.SeverityHigh {
			if err := e.store.StampLastAlert(ctx, inv.ID, hit.message); err != nil {
				e.logger.Error("failed to stamp last alert",
					zap.String("inventory_id", inv.ID), zap.Error(err))
			}
		}
	}

	if len(alerts) > 0 {
		e.dispatch(ctx, inv.StoreID, alerts)
	}

	return alerts
}

// dispatch fans alerts out to the store's operational staff across every
// configured channel. Delivery is fire-and-forget.
func (e *Engine) dispatch(ctx context.Context, storeID string, alerts []model.InventoryAlert) {
	staff, err := e.staff.ListOperationalStaff(ctx, storeID)
	if err != nil {
		e.logger.Error("failed to resolve notification recipients",
			zap.String("store_id", storeID), zap.Error(err))
		return
	}

	for _, a := range alerts {
		for _, user := range staff {
			n := notifier.Notification{
				AlertID:     a.ID,
				StoreID:     a.StoreID,
				ProductID:   a.ProductID,
				RecipientID: user.ID,
				AlertType:   a.AlertType,
				Severity:    a.Severity,
				Message:     a.Message,
				CreatedAt:   a.CreatedAt,
			}
			for _, ch := range e.notifiers {
				if err := ch.Notify(ctx, n); err != nil {
					e.logger.Warn("alert notification failed",
						zap.String("alert_id", a.ID),
						zap.String("recipient_id", user.ID),
						zap.Error(err))
				}
			}
		}
	}
}

// Sweep re-evaluates every row at or below its minimum stock or inside the
// expiry warning window. Used by the nightly schedule.
func (e *Engine) Sweep(ctx context.Context) error {
	now := e.now().UTC()
	candidates, err := e.store.FindAlertCandidates(ctx, now.Add(expiryWarningWindow))
	if err != nil {
		return err
	}

	fired := 0
	for i := range candidates {
		fired += len(e.Evaluate(ctx, &candidates[i], nil))
	}

	e.logger.Info("stock-health sweep finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("alerts", fired))
	return nil
}

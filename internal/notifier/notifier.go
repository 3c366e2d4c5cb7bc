package notifier

import (
	"context"
	"time"

	"github.com/stokku/inventory-service/internal/model"
)

// Notification is the outbound payload for one alert delivered to one
// recipient. Dispatch is best-effort and happens strictly after the
// triggering transaction has committed.
type Notification struct {
	AlertID     string              `json:"alert_id"`
	StoreID     string              `json:"store_id"`
	ProductID   string              `json:"product_id"`
	RecipientID string              `json:"recipient_id"`
	AlertType   model.AlertType     `json:"alert_type"`
	Severity    model.AlertSeverity `json:"severity"`
	Message     string              `json:"message"`
	CreatedAt   time.Time           `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

package model

import "time"

type AlertType string

const (
	AlertOutOfStock   AlertType = "OUT_OF_STOCK"
	AlertLowStock     AlertType = "LOW_STOCK"
	AlertExpired      AlertType = "EXPIRED"
	AlertExpiringSoon AlertType = "EXPIRING_SOON"
	AlertOverStock    AlertType = "OVER_STOCK"
)

type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "HIGH"
	SeverityMedium AlertSeverity = "MEDIUM"
	SeverityLow    AlertSeverity = "LOW"
)

// InventoryAlert is a derived, informational signal. Re-evaluation may emit
// duplicates; consumers treat the inventory row, not the alert, as
// authoritative.
type InventoryAlert struct {
	ID          string        `db:"id"`
	InventoryID string        `db:"inventory_id"`
	StoreID     string        `db:"store_id"`
	ProductID   string        `db:"product_id"`
	AlertType   AlertType     `db:"alert_type"`
	Severity    AlertSeverity `db:"severity"`
	Message     string        `db:"message"`
	IsRead      bool          `db:"is_read"`
	CreatedAt   time.Time     `db:"created_at"`
}

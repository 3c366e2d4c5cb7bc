package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is the stock position of one product at one store. Rows are
// created lazily on first stock arrival (transfer-in, production, or manual
// seeding) and are never hard-deleted while movements reference them.
type Inventory struct {
	ID              string              `db:"id"`
	StoreID         string              `db:"store_id"`
	ProductID       string              `db:"product_id"`
	Quantity        int64               `db:"quantity"`
	MinimumStock    int64               `db:"minimum_stock"`
	ReorderPoint    int64               `db:"reorder_point"`
	ReorderQuantity int64               `db:"reorder_quantity"`
	UnitCost        decimal.NullDecimal `db:"unit_cost"`
	ExpiryDate      *time.Time          `db:"expiry_date"`
	LastAlert       *string             `db:"last_alert"`
	Notes           string              `db:"notes"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

// Defaults applied when a row is created as a side effect of stock arriving
// at a store that never held the product before.
const (
	DefaultMinimumStock    = 5
	DefaultReorderPoint    = 10
	DefaultReorderQuantity = 20
)

const (
	MovementSale         = "SALE"
	MovementTransferIn   = "TRANSFER_IN"
	MovementTransferOut  = "TRANSFER_OUT"
	MovementAdjustment   = "ADJUSTMENT"
	MovementProductionIn = "PRODUCTION_IN"
)

// StockMovement is an immutable ledger entry. One row is appended per
// inventory-affecting event, inside the same transaction as the quantity
// change; rows are never updated or deleted.
type StockMovement struct {
	ID             string    `db:"id"`
	InventoryID    string    `db:"inventory_id"`
	StoreID        string    `db:"store_id"`
	ProductID      string    `db:"product_id"`
	MovementType   string    `db:"movement_type"`
	QuantityChange int64     `db:"quantity_change"`
	QuantityBefore int64     `db:"quantity_before"`
	QuantityAfter  int64     `db:"quantity_after"`
	ReferenceType  *string   `db:"reference_type"`
	ReferenceID    *string   `db:"reference_id"`
	Notes          string    `db:"notes"`
	CreatedBy      *string   `db:"created_by"`
	CreatedAt      time.Time `db:"created_at"`
}

// Magnitude is the absolute inventory delta of the movement.
func (m *StockMovement) Magnitude() int64 {
	if m.QuantityChange < 0 {
		return -m.QuantityChange
	}
	return m.QuantityChange
}

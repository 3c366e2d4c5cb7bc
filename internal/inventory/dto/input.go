package dto

// AdjustStockInput applies a signed stock delta outside the transfer flow:
// sales recorded by checkout, production arrivals, and manual corrections.
type AdjustStockInput struct {
	StoreID        string
	ProductID      string
	MovementType   string
	QuantityChange int64
	Notes          string
	UserID         string
}

// AdjustStockRequest is the HTTP body for POST /inventory/adjust.
type AdjustStockRequest struct {
	StoreID        string `json:"storeId" binding:"required"`
	ProductID      string `json:"productId" binding:"required"`
	MovementType   string `json:"movementType" binding:"required"`
	QuantityChange int64  `json:"quantityChange" binding:"required"`
	Notes          string `json:"notes"`
}

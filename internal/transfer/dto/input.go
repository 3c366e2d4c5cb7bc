package dto

// RequestTransferInput carries a validated transfer request into the
// orchestrator.
type RequestTransferInput struct {
	SourceStoreID string
	DestStoreID   string
	ProductID     string
	Quantity      int64
	RequestedBy   string
	Notes         string
}

// CreateTransferRequest is the HTTP body for POST /transfers.
type CreateTransferRequest struct {
	SourceStoreID string `json:"sourceStoreId" binding:"required"`
	DestStoreID   string `json:"destStoreId" binding:"required"`
	ProductID     string `json:"productId" binding:"required"`
	Quantity      int64  `json:"quantity" binding:"required,gt=0"`
	Notes         string `json:"notes"`
}

// UpdateTransferRequest is the HTTP body for PATCH /transfers.
type UpdateTransferRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

package model

import "time"

type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferApproved  TransferStatus = "APPROVED"
	TransferRejected  TransferStatus = "REJECTED"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// Valid reports whether s is a status a caller may request a transition into.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferApproved, TransferRejected, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// Terminal statuses admit no further transitions.
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferRejected, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// StoreTransfer is one requested movement of a fixed quantity of one product
// from a source store to a destination store. The row is mutated only by the
// transfer orchestrator and is retained forever as a historical record.
type StoreTransfer struct {
	ID            string         `db:"id"`
	SourceStoreID string         `db:"source_store_id"`
	DestStoreID   string         `db:"dest_store_id"`
	ProductID     string         `db:"product_id"`
	Quantity      int64          `db:"quantity"`
	Status        TransferStatus `db:"status"`
	CreatedBy     string         `db:"created_by"`
	ApprovedBy    *string        `db:"approved_by"`
	Notes         string         `db:"notes"`
	CreatedAt     time.Time      `db:"created_at"`
	CompletedAt   *time.Time     `db:"completed_at"`
}

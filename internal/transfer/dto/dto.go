package dto

import "github.com/stokku/inventory-service/internal/model"

// TransferRecord is a transfer with its store, product, and actor names
// resolved for listing.
type TransferRecord struct {
	model.StoreTransfer
	SourceStoreName string  `db:"source_store_name" json:"sourceStoreName"`
	DestStoreName   string  `db:"dest_store_name" json:"destStoreName"`
	ProductName     string  `db:"product_name" json:"productName"`
	CreatedByName   string  `db:"created_by_name" json:"createdByName"`
	ApprovedByName  *string `db:"approved_by_name" json:"approvedByName,omitempty"`
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/transfer"
	"github.com/stokku/inventory-service/internal/transfer/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, t *model.StoreTransfer) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO store_transfers (
            id, source_store_id, dest_store_id, product_id, quantity,
            status, created_by, approved_by, notes, created_at, completed_at
        )
        VALUES (
            :id, :source_store_id, :dest_store_id, :product_id, :quantity,
            :status, :created_by, :approved_by, :notes, :created_at, :completed_at
        )
    `, t)
	return errors.Wrap(err, "create transfer")
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.StoreTransfer, error) {
	var t model.StoreTransfer
	err := r.DB.GetContext(ctx, &t, `SELECT * FROM store_transfers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get transfer")
	}
	return &t, nil
}

func (r *PGRepository) ListByStore(ctx context.Context, storeID string) ([]dto.TransferRecord, error) {
	var records []dto.TransferRecord
	err := r.DB.SelectContext(ctx, &records, `
        SELECT t.*,
               src.name AS source_store_name,
               dst.name AS dest_store_name,
               p.name   AS product_name,
               cu.name  AS created_by_name,
               au.name  AS approved_by_name
        FROM store_transfers t
        JOIN stores src ON src.id = t.source_store_id
        JOIN stores dst ON dst.id = t.dest_store_id
        JOIN products p ON p.id = t.product_id
        JOIN users cu   ON cu.id = t.created_by
        LEFT JOIN users au ON au.id = t.approved_by
        WHERE t.source_store_id = $1 OR t.dest_store_id = $1
        ORDER BY t.created_at DESC
    `, storeID)
	if err != nil {
		return nil, errors.Wrap(err, "list transfers")
	}
	return records, nil
}

// Fulfill runs the whole fulfillment as one transaction: claim the transfer
// row, conditionally debit the source, credit (or lazily create) the
// destination, and append both ledger entries. Any failure rolls the whole
// thing back; the claim guard makes double fulfillment impossible.
func (r *PGRepository) Fulfill(ctx context.Context, t *model.StoreTransfer, approvedBy string) (*transfer.FulfillResult, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin fulfill tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var claimed model.StoreTransfer
	err = tx.GetContext(ctx, &claimed, `
        UPDATE store_transfers
        SET status = $1, approved_by = $2, completed_at = $3
        WHERE id = $4 AND status IN ($5, $6)
        RETURNING *
    `, model.TransferCompleted, approvedBy, now, t.ID, model.TransferPending, model.TransferApproved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrInvalidTransition
	}
	if err != nil {
		return nil, errors.Wrap(err, "claim transfer")
	}

	// Re-check stock at fulfillment time: the conditional debit is the
	// authoritative guard against concurrent over-subscription.
	var src model.Inventory
	err = tx.GetContext(ctx, &src, `
        UPDATE inventory
        SET quantity = quantity - $1, updated_at = $2
        WHERE store_id = $3 AND product_id = $4 AND quantity >= $1
        RETURNING *
    `, claimed.Quantity, now, claimed.SourceStoreID, claimed.ProductID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrInsufficientStock
	}
	if err != nil {
		return nil, errors.Wrap(err, "debit source inventory")
	}

	var dst model.Inventory
	err = tx.GetContext(ctx, &dst, `
        INSERT INTO inventory (
            id, store_id, product_id, quantity,
            minimum_stock, reorder_point, reorder_quantity,
            notes, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, $8)
        ON CONFLICT (store_id, product_id)
        DO UPDATE SET
            quantity = inventory.quantity + EXCLUDED.quantity,
            updated_at = EXCLUDED.updated_at
        RETURNING *
    `, uuid.New().String(), claimed.DestStoreID, claimed.ProductID, claimed.Quantity,
		model.DefaultMinimumStock, model.DefaultReorderPoint, model.DefaultReorderQuantity, now)
	if err != nil {
		return nil, errors.Wrap(err, "credit destination inventory")
	}

	refType := "store_transfer"
	out := &model.StockMovement{
		ID:             uuid.New().String(),
		InventoryID:    src.ID,
		StoreID:        claimed.SourceStoreID,
		ProductID:      claimed.ProductID,
		MovementType:   model.MovementTransferOut,
		QuantityChange: -claimed.Quantity,
		QuantityBefore: src.Quantity + claimed.Quantity,
		QuantityAfter:  src.Quantity,
		ReferenceType:  &refType,
		ReferenceID:    &claimed.ID,
		Notes:          claimed.Notes,
		CreatedBy:      &approvedBy,
		CreatedAt:      now,
	}
	in := &model.StockMovement{
		ID:             uuid.New().String(),
		InventoryID:    dst.ID,
		StoreID:        claimed.DestStoreID,
		ProductID:      claimed.ProductID,
		MovementType:   model.MovementTransferIn,
		QuantityChange: claimed.Quantity,
		QuantityBefore: dst.Quantity - claimed.Quantity,
		QuantityAfter:  dst.Quantity,
		ReferenceType:  &refType,
		ReferenceID:    &claimed.ID,
		Notes:          claimed.Notes,
		CreatedBy:      &approvedBy,
		CreatedAt:      now,
	}
	for _, m := range []*model.StockMovement{out, in} {
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO stock_movements (
                id, inventory_id, store_id, product_id,
                movement_type, quantity_change, quantity_before, quantity_after,
                reference_type, reference_id, notes, created_by, created_at
            )
            VALUES (
                :id, :inventory_id, :store_id, :product_id,
                :movement_type, :quantity_change, :quantity_before, :quantity_after,
                :reference_type, :reference_id, :notes, :created_by, :created_at
            )
        `, m)
		if err != nil {
			return nil, errors.Wrap(err, "log transfer movement")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit fulfill tx")
	}

	return &transfer.FulfillResult{
		Transfer:    &claimed,
		Source:      &src,
		Dest:        &dst,
		OutMovement: out,
		InMovement:  in,
	}, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, from, to model.TransferStatus) (*model.StoreTransfer, error) {
	var t model.StoreTransfer
	err := r.DB.GetContext(ctx, &t, `
        UPDATE store_transfers SET status = $1
        WHERE id = $2 AND status = $3
        RETURNING *
    `, to, id, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrInvalidTransition
	}
	if err != nil {
		return nil, errors.Wrap(err, "update transfer status")
	}
	return &t, nil
}

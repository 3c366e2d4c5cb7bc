package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stokku/inventory-service/internal/inventory/dto"
	"github.com/stokku/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByStoreProduct(ctx context.Context, storeID, productID string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.DB.GetContext(ctx, &inv, `
        SELECT * FROM inventory WHERE store_id = $1 AND product_id = $2
    `, storeID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // caller decides whether absence is an error
	}
	if err != nil {
		return nil, errors.Wrap(err, "get inventory")
	}
	return &inv, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.DB.GetContext(ctx, &inv, `SELECT * FROM inventory WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get inventory by id")
	}
	return &inv, nil
}

func (r *PGRepository) FindLowStock(ctx context.Context, storeID string) ([]model.Inventory, error) {
	query := `SELECT * FROM inventory WHERE quantity <= reorder_point`
	args := []interface{}{}
	if storeID != "" {
		query += ` AND store_id = $1`
		args = append(args, storeID)
	}
	query += ` ORDER BY updated_at DESC`

	var items []model.Inventory
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, errors.Wrap(err, "find low stock")
	}
	return items, nil
}

func (r *PGRepository) FindAlertCandidates(ctx context.Context, expiryHorizon time.Time) ([]model.Inventory, error) {
	var items []model.Inventory
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM inventory
        WHERE quantity <= minimum_stock
           OR (expiry_date IS NOT NULL AND expiry_date <= $1)
    `, expiryHorizon)
	if err != nil {
		return nil, errors.Wrap(err, "find alert candidates")
	}
	return items, nil
}

// AdjustStockWithMovement applies a signed quantity delta and appends the
// ledger entry in one transaction. A positive delta lazily creates the row
// with system defaults; a negative delta is conditional on sufficient stock
// so the quantity can never go below zero, and fails the whole transaction
// with model.ErrInsufficientStock when the guard rejects it.
func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, storeID, productID string, movement *model.StockMovement) (*model.Inventory, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin adjust tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var inv model.Inventory

	if movement.QuantityChange < 0 {
		err = tx.GetContext(ctx, &inv, `
            UPDATE inventory
            SET quantity = quantity + $1, updated_at = $2
            WHERE store_id = $3 AND product_id = $4 AND quantity + $1 >= 0
            RETURNING *
        `, movement.QuantityChange, now, storeID, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrInsufficientStock
		}
	} else {
		err = tx.GetContext(ctx, &inv, `
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
        `, uuid.New().String(), storeID, productID, movement.QuantityChange,
			model.DefaultMinimumStock, model.DefaultReorderPoint, model.DefaultReorderQuantity, now)
	}
	if err != nil {
		return nil, errors.Wrap(err, "apply stock delta")
	}

	movement.InventoryID = inv.ID
	movement.StoreID = storeID
	movement.ProductID = productID
	movement.QuantityBefore = inv.Quantity - movement.QuantityChange
	movement.QuantityAfter = inv.Quantity
	movement.CreatedAt = now

	if err := insertMovement(ctx, tx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit adjust tx")
	}
	return &inv, nil
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	_, err := tx.NamedExecContext(ctx, `
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
	return errors.Wrap(err, "log movement")
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.StoreID != "" {
		conditions = append(conditions, "store_id = :store_id")
		args["store_id"] = f.StoreID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count movements")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare list movements")
	}
	defer nstmt.Close()

	var items []model.StockMovement
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, errors.Wrap(err, "list movements")
}

func (r *PGRepository) ListSalesSince(ctx context.Context, storeID, productID string, since time.Time) ([]model.StockMovement, error) {
	var items []model.StockMovement
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM stock_movements
        WHERE store_id = $1 AND product_id = $2
          AND movement_type = $3 AND created_at >= $4
        ORDER BY created_at ASC
    `, storeID, productID, model.MovementSale, since)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	return items, nil
}

func (r *PGRepository) MovementAverageMagnitude(ctx context.Context, inventoryID string, since time.Time) (float64, error) {
	var avg float64
	err := r.DB.GetContext(ctx, &avg, `
        SELECT COALESCE(AVG(ABS(quantity_change)), 0) FROM stock_movements
        WHERE inventory_id = $1 AND created_at >= $2
    `, inventoryID, since)
	if err != nil {
		return 0, errors.Wrap(err, "movement average")
	}
	return avg, nil
}

func (r *PGRepository) CreateAlert(ctx context.Context, alert *model.InventoryAlert) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO inventory_alerts (
            id, inventory_id, store_id, product_id,
            alert_type, severity, message, is_read, created_at
        )
        VALUES (
            :id, :inventory_id, :store_id, :product_id,
            :alert_type, :severity, :message, :is_read, :created_at
        )
    `, alert)
	return errors.Wrap(err, "create alert")
}

func (r *PGRepository) ListUnreadAlerts(ctx context.Context, storeID string) ([]model.InventoryAlert, error) {
	var alerts []model.InventoryAlert
	err := r.DB.SelectContext(ctx, &alerts, `
        SELECT * FROM inventory_alerts
        WHERE store_id = $1 AND is_read = false
        ORDER BY created_at DESC
    `, storeID)
	if err != nil {
		return nil, errors.Wrap(err, "list unread alerts")
	}
	return alerts, nil
}

func (r *PGRepository) MarkAlertRead(ctx context.Context, alertID string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE inventory_alerts SET is_read = true WHERE id = $1
    `, alertID)
	if err != nil {
		return errors.Wrap(err, "mark alert read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrInventoryNotFound
	}
	return nil
}

func (r *PGRepository) StampLastAlert(ctx context.Context, inventoryID, summary string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE inventory SET last_alert = $1, updated_at = $2 WHERE id = $3
    `, summary, time.Now().UTC(), inventoryID)
	return errors.Wrap(err, "stamp last alert")
}

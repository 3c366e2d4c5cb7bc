package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stokku/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetStore(ctx context.Context, id string) (*model.Store, error) {
	var s model.Store
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM stores WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get store")
	}
	return &s, nil
}

func (r *PGRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT id, sku, name FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

func (r *PGRepository) IsStoreManager(ctx context.Context, userID, storeID string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `
        SELECT count(*) FROM store_staff
        WHERE user_id = $1 AND store_id = $2 AND role = $3
    `, userID, storeID, model.StaffRoleManager)
	if err != nil {
		return false, errors.Wrap(err, "check store manager")
	}
	return count > 0, nil
}

func (r *PGRepository) IsMainStoreManager(ctx context.Context, userID string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `
        SELECT count(*) FROM store_staff ss
        JOIN stores s ON s.id = ss.store_id
        WHERE ss.user_id = $1 AND ss.role = $2 AND s.role = $3
    `, userID, model.StaffRoleManager, model.StoreRoleMain)
	if err != nil {
		return false, errors.Wrap(err, "check main store manager")
	}
	return count > 0, nil
}

func (r *PGRepository) ListOperationalStaff(ctx context.Context, storeID string) ([]model.User, error) {
	var users []model.User
	err := r.DB.SelectContext(ctx, &users, `
        SELECT u.id, u.name, u.email, u.role FROM users u
        JOIN store_staff ss ON ss.user_id = u.id
        WHERE ss.store_id = $1 AND ss.role IN ($2, $3)
    `, storeID, model.StaffRoleManager, model.StaffRoleStaff)
	if err != nil {
		return nil, errors.Wrap(err, "list operational staff")
	}
	return users, nil
}

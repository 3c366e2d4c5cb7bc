package model

import "time"

type StoreRole string

const (
	// StoreRoleMain marks the central warehouse branch stores replenish from.
	StoreRoleMain   StoreRole = "MAIN"
	StoreRoleBranch StoreRole = "BRANCH"
)

type Store struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Role      StoreRole `db:"role"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// Product is the read-only slice of the catalog this service needs for
// validation and name resolution. Catalog management lives elsewhere.
type Product struct {
	ID   string `db:"id"`
	SKU  string `db:"sku"`
	Name string `db:"name"`
}

const (
	UserRoleSuperAdmin = "super_admin"
	UserRoleUser       = "user"
)

type User struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	Role  string `db:"role"`
}

const (
	StaffRoleManager = "manager"
	StaffRoleStaff   = "staff"
)

// StoreStaff associates a user with a store in an operational role.
type StoreStaff struct {
	StoreID string `db:"store_id"`
	UserID  string `db:"user_id"`
	Role    string `db:"role"`
}

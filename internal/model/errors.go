package model

import "errors"

// Domain error kinds. Validation and lookup failures are detected before any
// side effect; ErrInsufficientStock may also abort a fulfillment transaction
// mid-flight, rolling back every write it performed.
var (
	ErrValidation        = errors.New("validation failed")
	ErrStoreNotFound     = errors.New("store not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrTransferNotFound  = errors.New("transfer not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrInsufficientStock = errors.New("insufficient inventory")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)

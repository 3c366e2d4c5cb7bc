package dto

import "time"

type MovementFilters struct {
	StoreID      string
	ProductID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

package dto

import "github.com/fekuna/school-inventory-service/internal/model"

type ItemFilters struct {
	CategoryID  string
	Status      model.ItemStatus
	SearchQuery string // code or name
	Page        int
	PageSize    int
}

type LowStockFilters struct {
	CategoryID string
	Limit      int
}

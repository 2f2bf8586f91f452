package dto

import "github.com/fekuna/school-inventory-service/internal/model"

type RequestFilters struct {
	Status      model.ReplenishmentStatus
	ItemID      string
	RequestedBy string
	Page        int
	PageSize    int
}

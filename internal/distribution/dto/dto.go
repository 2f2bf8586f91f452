package dto

import "github.com/fekuna/school-inventory-service/internal/model"

type RequestFilters struct {
	Status      model.DistributionStatus
	ItemID      string
	RequesterID string
	Page        int
	PageSize    int
}

package replenishment

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
)

type Repository interface {
	Create(ctx context.Context, r *model.ReplenishmentRequest) error
	FindByID(ctx context.Context, id string) (*model.ReplenishmentRequest, error)
	FindAll(ctx context.Context, filters *dto.RequestFilters) ([]model.ReplenishmentRequest, int, error)

	// Transition writes r's workflow fields only if the stored status is still from.
	Transition(ctx context.Context, r *model.ReplenishmentRequest, from model.ReplenishmentStatus) error
	// Delete removes the request only while its status is one of allowed.
	Delete(ctx context.Context, id string, allowed ...model.ReplenishmentStatus) error
}

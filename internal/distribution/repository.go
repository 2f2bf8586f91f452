package distribution

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
)

type Repository interface {
	// Create fails with DuplicatePending when the requester already has a pending request for the item.
	Create(ctx context.Context, r *model.DistributionRequest) error
	FindByID(ctx context.Context, id string) (*model.DistributionRequest, error)
	FindAll(ctx context.Context, filters *dto.RequestFilters) ([]model.DistributionRequest, int, error)
	HasPending(ctx context.Context, requesterID, itemID string) (bool, error)

	// Transition writes r's status and processing fields only if the stored status is still from.
	// A miss returns apperror.ErrStaleWrite.
	Transition(ctx context.Context, r *model.DistributionRequest, from model.DistributionStatus) error
}

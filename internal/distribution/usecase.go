package distribution

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
)

type UseCase interface {
	Submit(ctx context.Context, actor model.Actor, input *dto.SubmitInput) (*model.DistributionRequest, error)
	Approve(ctx context.Context, actor model.Actor, input *dto.ApproveInput) (*model.DistributionRequest, error)
	Reject(ctx context.Context, actor model.Actor, id, remarks string) (*model.DistributionRequest, error)
	Distribute(ctx context.Context, actor model.Actor, id string, remarks *string) (*model.DistributionRequest, *model.StockMovement, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.DistributionRequest, error)
	Get(ctx context.Context, id string) (*model.DistributionRequest, error)
	List(ctx context.Context, filters *dto.RequestFilters) ([]model.DistributionRequest, int, error)
}

package replenishment

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
)

type UseCase interface {
	Submit(ctx context.Context, actor model.Actor, input *dto.SubmitInput) (*model.ReplenishmentRequest, error)
	Approve(ctx context.Context, actor model.Actor, input *dto.ApproveInput) (*model.ReplenishmentRequest, error)
	Reject(ctx context.Context, actor model.Actor, id, notes string) (*model.ReplenishmentRequest, error)
	MarkOrdered(ctx context.Context, actor model.Actor, id string) (*model.ReplenishmentRequest, error)
	Receive(ctx context.Context, actor model.Actor, input *dto.ReceiveInput) (*model.ReplenishmentRequest, *model.StockMovement, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
	Get(ctx context.Context, id string) (*model.ReplenishmentRequest, error)
	List(ctx context.Context, filters *dto.RequestFilters) ([]model.ReplenishmentRequest, int, error)
}

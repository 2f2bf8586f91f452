package item

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/item/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
)

type UseCase interface {
	CreateItem(ctx context.Context, actor model.Actor, input *dto.CreateItemInput) (*model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Item, error)
	UpdateItem(ctx context.Context, actor model.Actor, input *dto.UpdateItemInput) (*model.Item, error)
	SetItemStatus(ctx context.Context, actor model.Actor, id string, status model.ItemStatus) (*model.Item, error)
}

package item

import (
	"context"
	"time"

	"github.com/fekuna/school-inventory-service/internal/item/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, it *model.Item) error
	FindByID(ctx context.Context, id string) (*model.Item, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Item, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Item, error)
	IsCodeUnique(ctx context.Context, code string) (bool, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)

	// Update writes metadata fields only; quantity belongs to the stock ledger.
	Update(ctx context.Context, it *model.Item) error
	SetStatus(ctx context.Context, id string, status model.ItemStatus, at time.Time) error
}

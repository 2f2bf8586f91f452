package stock

import (
	"context"
	"time"

	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock/dto"
)

type Repository interface {
	// Item quantity
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	CompareAndSetQuantity(ctx context.Context, itemID string, expected, next int64, at time.Time) error

	// Ledger
	AppendMovement(ctx context.Context, m *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ItemMovements(ctx context.Context, itemID string) ([]model.StockMovement, error)
}

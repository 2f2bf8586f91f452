package stock

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock/dto"
)

type UseCase interface {
	// ApplyDelta is the only path that changes an item's quantity.
	ApplyDelta(ctx context.Context, input *dto.MoveInput) (*dto.MoveResult, error)
	AdjustStock(ctx context.Context, actor model.Actor, input *dto.AdjustStockInput) (*dto.MoveResult, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	VerifyLedger(ctx context.Context, itemID string) (*dto.LedgerReport, error)
}

package dto

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/model"
)

type MoveInput struct {
	ItemID        string
	Kind          model.MovementKind
	Quantity      int64
	Reason        string
	ReferenceType string
	ReferenceID   string
	ActorID       string
	AllowInactive bool

	// Within runs in the same atomic unit as the quantity update, after the movement is
	// appended. Returning an error undoes the movement.
	Within func(ctx context.Context, movement *model.StockMovement) error
}

type AdjustStockInput struct {
	ItemID   string
	Kind     model.MovementKind
	Quantity int64
	Reason   string
}

package dto

import "github.com/fekuna/school-inventory-service/internal/model"

type MovementFilters struct {
	ItemID        string
	Kind          model.MovementKind
	ReferenceType string
	ReferenceID   string
	Page          int
	PageSize      int
}

type MoveResult struct {
	Item     *model.Item
	Movement *model.StockMovement
}

// LedgerReport compares an item's stored quantity with the replay of its movements.
type LedgerReport struct {
	ItemID           string
	StoredQuantity   int64
	ReplayedQuantity int64
	Movements        int
	Consistent       bool
	BrokenMovementID string
}

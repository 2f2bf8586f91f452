package model

import "time"

// Event types published after stock movements commit.
const (
	EventStockMoved = "stock.moved"
	EventStockLow   = "stock.low"
)

type StockMovedEvent struct {
	MovementID       string       `json:"movement_id"`
	ItemID           string       `json:"item_id"`
	Kind             MovementKind `json:"kind"`
	Quantity         int64        `json:"quantity"`
	PreviousQuantity int64        `json:"previous_quantity"`
	NewQuantity      int64        `json:"new_quantity"`
	ReferenceType    string       `json:"reference_type,omitempty"`
	ReferenceID      string       `json:"reference_id,omitempty"`
	ActorID          string       `json:"actor_id"`
	OccurredAt       time.Time    `json:"occurred_at"`
}

type StockLowEvent struct {
	ItemID          string    `json:"item_id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Quantity        int64     `json:"quantity"`
	MinimumQuantity int64     `json:"minimum_quantity"`
	OccurredAt      time.Time `json:"occurred_at"`
}

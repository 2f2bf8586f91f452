package model

import (
	"fmt"
	"time"
)

type MovementKind string

const (
	MovementCredit MovementKind = "credit"
	MovementDebit  MovementKind = "debit"
)

func (k MovementKind) Valid() bool {
	return k == MovementCredit || k == MovementDebit
}

// Apply returns the quantity that results from moving qty units of this kind.
func (k MovementKind) Apply(current, qty int64) int64 {
	if k == MovementDebit {
		return current - qty
	}
	return current + qty
}

// Reference types recorded on movements.
const (
	ReferenceDistribution  = "distribution_request"
	ReferenceReplenishment = "replenishment_request"
	ReferenceAdjustment    = "adjustment"
	ReferenceInitialStock  = "initial_stock"
)

// StockMovement is one append-only ledger row.
type StockMovement struct {
	ID               string       `db:"id" json:"id"`
	Sequence         int64        `db:"sequence" json:"sequence"`
	ItemID           string       `db:"item_id" json:"item_id"`
	Kind             MovementKind `db:"kind" json:"kind"`
	Quantity         int64        `db:"quantity" json:"quantity"`
	PreviousQuantity int64        `db:"previous_quantity" json:"previous_quantity"`
	NewQuantity      int64        `db:"new_quantity" json:"new_quantity"`
	Reason           string       `db:"reason" json:"reason"`
	ReferenceType    *string      `db:"reference_type" json:"reference_type"`
	ReferenceID      *string      `db:"reference_id" json:"reference_id"`
	ActorID          string       `db:"actor_id" json:"actor_id"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// ReplayMovements folds movements, in ledger order, starting from zero. It stops at the first row
// whose recorded quantities disagree with the running total and returns that row's id.
func ReplayMovements(movements []StockMovement) (quantity int64, brokenID string, err error) {
	for _, m := range movements {
		if m.PreviousQuantity != quantity {
			return quantity, m.ID, fmt.Errorf("movement %s: previous quantity %d, ledger says %d", m.ID, m.PreviousQuantity, quantity)
		}
		next := m.Kind.Apply(quantity, m.Quantity)
		if next != m.NewQuantity || next < 0 {
			return quantity, m.ID, fmt.Errorf("movement %s: new quantity %d, ledger says %d", m.ID, m.NewQuantity, next)
		}
		quantity = next
	}
	return quantity, "", nil
}

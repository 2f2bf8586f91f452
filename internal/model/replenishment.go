package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ReplenishmentStatus string

const (
	ReplenishmentPending  ReplenishmentStatus = "pending"
	ReplenishmentApproved ReplenishmentStatus = "approved"
	ReplenishmentRejected ReplenishmentStatus = "rejected"
	ReplenishmentOrdered  ReplenishmentStatus = "ordered"
	ReplenishmentReceived ReplenishmentStatus = "received"
)

// Received is reachable from every non-terminal state: stock can arrive before the paperwork.
var replenishmentTransitions = map[ReplenishmentStatus][]ReplenishmentStatus{
	ReplenishmentPending:  {ReplenishmentApproved, ReplenishmentRejected, ReplenishmentReceived},
	ReplenishmentApproved: {ReplenishmentOrdered, ReplenishmentReceived},
	ReplenishmentOrdered:  {ReplenishmentReceived},
}

func (s ReplenishmentStatus) Valid() bool {
	switch s {
	case ReplenishmentPending, ReplenishmentApproved, ReplenishmentRejected, ReplenishmentOrdered, ReplenishmentReceived:
		return true
	}
	return false
}

func (s ReplenishmentStatus) CanTransitionTo(next ReplenishmentStatus) bool {
	for _, allowed := range replenishmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ReplenishmentStatus) IsTerminal() bool {
	return len(replenishmentTransitions[s]) == 0
}

// Deletable reports whether a request in this state never moved stock and may be removed.
func (s ReplenishmentStatus) Deletable() bool {
	return s == ReplenishmentPending || s == ReplenishmentRejected
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority defaults an empty value to medium.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "normal":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	case "high":
		return PriorityHigh, true
	}
	return "", false
}

// ReplenishmentRequest asks for an item to be restocked from a supplier.
type ReplenishmentRequest struct {
	ID                string              `db:"id" json:"id"`
	ItemID            string              `db:"item_id" json:"item_id"`
	RequestedQuantity int64               `db:"requested_quantity" json:"requested_quantity"`
	ApprovedQuantity  *int64              `db:"approved_quantity" json:"approved_quantity"`
	ReceivedQuantity  *int64              `db:"received_quantity" json:"received_quantity"`
	Priority          Priority            `db:"priority" json:"priority"`
	Reason            string              `db:"reason" json:"reason"`
	SupplierInfo      *string             `db:"supplier_info" json:"supplier_info"`
	EstimatedCost     decimal.NullDecimal `db:"estimated_cost" json:"estimated_cost"`
	ActualCost        decimal.NullDecimal `db:"actual_cost" json:"actual_cost"`
	Notes             *string             `db:"notes" json:"notes"`
	Status            ReplenishmentStatus `db:"status" json:"status"`
	RequestedBy       string              `db:"requested_by" json:"requested_by"`
	ApprovedBy        *string             `db:"approved_by" json:"approved_by"`
	ReceivedBy        *string             `db:"received_by" json:"received_by"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	ProcessedAt       *time.Time          `db:"processed_at" json:"processed_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

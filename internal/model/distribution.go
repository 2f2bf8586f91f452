package model

import (
	"strings"
	"time"
)

type DistributionStatus string

const (
	DistributionPending     DistributionStatus = "pending"
	DistributionApproved    DistributionStatus = "approved"
	DistributionRejected    DistributionStatus = "rejected"
	DistributionDistributed DistributionStatus = "distributed"
	DistributionCancelled   DistributionStatus = "cancelled"
)

var distributionTransitions = map[DistributionStatus][]DistributionStatus{
	DistributionPending:  {DistributionApproved, DistributionRejected, DistributionCancelled},
	DistributionApproved: {DistributionDistributed},
}

func (s DistributionStatus) Valid() bool {
	switch s {
	case DistributionPending, DistributionApproved, DistributionRejected, DistributionDistributed, DistributionCancelled:
		return true
	}
	return false
}

func (s DistributionStatus) CanTransitionTo(next DistributionStatus) bool {
	for _, allowed := range distributionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s DistributionStatus) IsTerminal() bool {
	return len(distributionTransitions[s]) == 0
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency accepts "medium" as a synonym of normal and defaults an empty value to normal.
func ParseUrgency(s string) (Urgency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UrgencyNormal, true
	case "low":
		return UrgencyLow, true
	case "normal", "medium":
		return UrgencyNormal, true
	case "high":
		return UrgencyHigh, true
	}
	return "", false
}

// DistributionRequest asks for items to be handed out of stock to a student or staff member.
type DistributionRequest struct {
	ID                string             `db:"id" json:"id"`
	RequesterID       string             `db:"requester_id" json:"requester_id"`
	RequesterKind     ActorKind          `db:"requester_kind" json:"requester_kind"`
	ItemID            string             `db:"item_id" json:"item_id"`
	RequestedQuantity int64              `db:"requested_quantity" json:"requested_quantity"`
	ApprovedQuantity  *int64             `db:"approved_quantity" json:"approved_quantity"`
	Purpose           string             `db:"purpose" json:"purpose"`
	Urgency           Urgency            `db:"urgency" json:"urgency"`
	Status            DistributionStatus `db:"status" json:"status"`
	Remarks           *string            `db:"remarks" json:"remarks"`
	ProcessedBy       *string            `db:"processed_by" json:"processed_by"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
	ProcessedAt       *time.Time         `db:"processed_at" json:"processed_at"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updated_at"`
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionStatus_Transitions(t *testing.T) {
	tests := []struct {
		from DistributionStatus
		to   DistributionStatus
		ok   bool
	}{
		{DistributionPending, DistributionApproved, true},
		{DistributionPending, DistributionRejected, true},
		{DistributionPending, DistributionCancelled, true},
		{DistributionPending, DistributionDistributed, false},
		{DistributionApproved, DistributionDistributed, true},
		{DistributionApproved, DistributionCancelled, false},
		{DistributionApproved, DistributionRejected, false},
		{DistributionDistributed, DistributionDistributed, false},
		{DistributionRejected, DistributionApproved, false},
		{DistributionCancelled, DistributionPending, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, DistributionDistributed.IsTerminal())
	assert.True(t, DistributionRejected.IsTerminal())
	assert.True(t, DistributionCancelled.IsTerminal())
	assert.False(t, DistributionApproved.IsTerminal())
}

func TestReplenishmentStatus_Transitions(t *testing.T) {
	for _, from := range []ReplenishmentStatus{ReplenishmentPending, ReplenishmentApproved, ReplenishmentOrdered} {
		assert.True(t, from.CanTransitionTo(ReplenishmentReceived), "%s -> received", from)
	}
	assert.True(t, ReplenishmentApproved.CanTransitionTo(ReplenishmentOrdered))
	assert.False(t, ReplenishmentPending.CanTransitionTo(ReplenishmentOrdered))
	assert.False(t, ReplenishmentReceived.CanTransitionTo(ReplenishmentReceived))
	assert.False(t, ReplenishmentRejected.CanTransitionTo(ReplenishmentApproved))

	assert.True(t, ReplenishmentPending.Deletable())
	assert.True(t, ReplenishmentRejected.Deletable())
	assert.False(t, ReplenishmentApproved.Deletable())
	assert.False(t, ReplenishmentReceived.Deletable())
}

func TestParseUrgencyAndPriority(t *testing.T) {
	u, ok := ParseUrgency("Medium")
	require.True(t, ok)
	assert.Equal(t, UrgencyNormal, u)

	u, ok = ParseUrgency("")
	require.True(t, ok)
	assert.Equal(t, UrgencyNormal, u)

	_, ok = ParseUrgency("asap")
	assert.False(t, ok)

	p, ok := ParsePriority("HIGH")
	require.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
}

func TestItem_LowStock(t *testing.T) {
	it := Item{Quantity: 5, MinimumQuantity: 5, Status: ItemStatusActive}
	assert.True(t, it.IsLowStock())
	assert.Equal(t, int64(0), it.Margin())

	it.Status = ItemStatusInactive
	assert.False(t, it.IsLowStock())

	it = Item{Quantity: 6, MinimumQuantity: 5, Status: ItemStatusActive}
	assert.False(t, it.IsLowStock())
}

func TestReplayMovements(t *testing.T) {
	ms := []StockMovement{
		{ID: "m1", Kind: MovementCredit, Quantity: 10, PreviousQuantity: 0, NewQuantity: 10},
		{ID: "m2", Kind: MovementDebit, Quantity: 4, PreviousQuantity: 10, NewQuantity: 6},
		{ID: "m3", Kind: MovementCredit, Quantity: 15, PreviousQuantity: 6, NewQuantity: 21},
	}

	qty, broken, err := ReplayMovements(ms)
	require.NoError(t, err)
	assert.Equal(t, int64(21), qty)
	assert.Empty(t, broken)

	ms[2].PreviousQuantity = 7
	qty, broken, err = ReplayMovements(ms)
	require.Error(t, err)
	assert.Equal(t, "m3", broken)
	assert.Equal(t, int64(6), qty)
}

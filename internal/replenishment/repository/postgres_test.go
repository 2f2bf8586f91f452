package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	itemrepo "github.com/fekuna/school-inventory-service/internal/item/repository"
	"github.com/fekuna/school-inventory-service/internal/model"
	reprepo "github.com/fekuna/school-inventory-service/internal/replenishment/repository"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres/pgtest"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	now := time.Now().UTC()
	id := uuid.NewString()
	require.NoError(t, itemrepo.NewPGRepository(db).Create(context.Background(), &model.Item{
		BaseModel: model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Code:      "CODE-" + id[:8],
		Name:      "paper",
		UnitPrice: decimal.NewFromInt(1),
		Status:    model.ItemStatusActive,
	}))
	return id
}

func newRequest(itemID string) *model.ReplenishmentRequest {
	now := time.Now().UTC()
	return &model.ReplenishmentRequest{
		ID:                uuid.NewString(),
		ItemID:            itemID,
		RequestedQuantity: 50,
		Priority:          model.PriorityHigh,
		Reason:            "new term",
		EstimatedCost:     decimal.NewNullDecimal(decimal.RequireFromString("120.50")),
		Status:            model.ReplenishmentPending,
		RequestedBy:       "staff-1",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestPGRepository_TransitionFromStaleStatus(t *testing.T) {
	db := pgtest.Open(t)
	repo := reprepo.NewPGRepository(db)
	ctx := context.Background()
	req := newRequest(seedItem(t, db))
	require.NoError(t, repo.Create(ctx, req))

	approved := *req
	qty := int64(40)
	approved.Status = model.ReplenishmentApproved
	approved.ApprovedQuantity = &qty
	require.NoError(t, repo.Transition(ctx, &approved, model.ReplenishmentPending))

	again := *req
	again.Status = model.ReplenishmentRejected
	err := repo.Transition(ctx, &again, model.ReplenishmentPending)
	assert.ErrorIs(t, err, apperror.ErrStaleWrite)

	got, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReplenishmentApproved, got.Status)
	assert.Equal(t, int64(40), *got.ApprovedQuantity)
	assert.True(t, got.EstimatedCost.Decimal.Equal(decimal.RequireFromString("120.5")))
	assert.False(t, got.ActualCost.Valid)
}

func TestPGRepository_DeleteOnlyFromAllowedStatus(t *testing.T) {
	db := pgtest.Open(t)
	repo := reprepo.NewPGRepository(db)
	ctx := context.Background()
	itemID := seedItem(t, db)

	ordered := newRequest(itemID)
	ordered.Status = model.ReplenishmentOrdered
	require.NoError(t, repo.Create(ctx, ordered))

	err := repo.Delete(ctx, ordered.ID, model.ReplenishmentPending, model.ReplenishmentRejected)
	assert.ErrorIs(t, err, apperror.ErrStaleWrite)

	got, err := repo.FindByID(ctx, ordered.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "an ordered request survives")

	open := newRequest(itemID)
	require.NoError(t, repo.Create(ctx, open))
	require.NoError(t, repo.Delete(ctx, open.ID, model.ReplenishmentPending, model.ReplenishmentRejected))

	gone, err := repo.FindByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = repo.Delete(ctx, "ghost", model.ReplenishmentPending)
	assert.ErrorIs(t, err, apperror.ErrStaleWrite)
}

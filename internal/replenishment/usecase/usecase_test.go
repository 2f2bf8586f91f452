package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/item"
	itemdto "github.com/fekuna/school-inventory-service/internal/item/dto"
	itemrepo "github.com/fekuna/school-inventory-service/internal/item/repository"
	itemusecase "github.com/fekuna/school-inventory-service/internal/item/usecase"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	reprepo "github.com/fekuna/school-inventory-service/internal/replenishment/repository"
	"github.com/fekuna/school-inventory-service/internal/stock"
	stockdto "github.com/fekuna/school-inventory-service/internal/stock/dto"
	stockrepo "github.com/fekuna/school-inventory-service/internal/stock/repository"
	stockusecase "github.com/fekuna/school-inventory-service/internal/stock/usecase"
	"github.com/fekuna/school-inventory-service/pkg/broker"
	"github.com/fekuna/school-inventory-service/pkg/cache"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
	"github.com/fekuna/school-inventory-service/pkg/lock"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/fekuna/school-inventory-service/pkg/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = model.Actor{ID: "admin-1", Kind: model.ActorAdmin}
	staff   = model.Actor{ID: "staff-1", Kind: model.ActorStaff}
	student = model.Actor{ID: "student-1", Kind: model.ActorStudent}
)

type fixture struct {
	items item.UseCase
	stock stock.UseCase
	uc    replenishment.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	log := logger.NewNop()

	itemRepo := itemrepo.NewMemoryRepository(store)
	stockUC := stockusecase.NewStockUseCase(
		stockrepo.NewMemoryRepository(store, itemRepo), store, lock.NewLocalLocker(),
		cache.NewNop(), broker.NewNopPublisher(), m, log, false,
	)

	return &fixture{
		items: itemusecase.NewItemUseCase(itemRepo, stockUC, store, cache.NewNop(), 0, nil, "items", log),
		stock: stockUC,
		uc:    NewReplenishmentUseCase(reprepo.NewMemoryRepository(store), itemRepo, stockUC, m, log),
	}
}

func (f *fixture) createItem(t *testing.T, code string, quantity, minimum int64) string {
	t.Helper()
	it, err := f.items.CreateItem(context.Background(), admin, &itemdto.CreateItemInput{
		Code: code, Name: code, MinimumQuantity: minimum,
		UnitPrice: decimal.NewFromInt(2), InitialQuantity: quantity,
	})
	require.NoError(t, err)
	return it.ID
}

func (f *fixture) quantity(t *testing.T, itemID string) int64 {
	t.Helper()
	it, err := f.items.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	return it.Quantity
}

func (f *fixture) submit(t *testing.T, itemID string, qty int64) *model.ReplenishmentRequest {
	t.Helper()
	req, err := f.uc.Submit(context.Background(), staff, &dto.SubmitInput{ItemID: itemID, Quantity: qty, Reason: "restock"})
	require.NoError(t, err)
	return req
}

func ptr[T any](v T) *T { return &v }

func TestReplenishment_HappyPath(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 5)

	req, err := f.uc.Submit(context.Background(), staff, &dto.SubmitInput{
		ItemID: pen, Quantity: 20, Reason: "term start", Priority: "high",
		SupplierInfo: ptr("Stationery Co"), EstimatedCost: ptr(decimal.RequireFromString("40.00")),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReplenishmentPending, req.Status)
	assert.Equal(t, model.PriorityHigh, req.Priority)
	assert.True(t, req.EstimatedCost.Valid)

	req, err = f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: req.ID, ApprovedQuantity: ptr(int64(15))})
	require.NoError(t, err)
	assert.Equal(t, model.ReplenishmentApproved, req.Status)
	assert.Equal(t, int64(15), *req.ApprovedQuantity)
	assert.Equal(t, admin.ID, *req.ApprovedBy)
	assert.Equal(t, int64(6), f.quantity(t, pen), "approval moves no stock")

	req, mv, err := f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, model.ReplenishmentReceived, req.Status)
	assert.Equal(t, int64(15), *req.ReceivedQuantity)
	assert.Equal(t, staff.ID, *req.ReceivedBy)
	assert.Equal(t, model.MovementCredit, mv.Kind)
	assert.Equal(t, int64(6), mv.PreviousQuantity)
	assert.Equal(t, int64(21), mv.NewQuantity)
	assert.Equal(t, int64(21), f.quantity(t, pen))

	stored, err := f.uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReplenishmentReceived, stored.Status)
}

func TestReplenishment_SubmitValidation(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 5)

	tests := []struct {
		name  string
		actor model.Actor
		input dto.SubmitInput
		kind  apperror.Kind
	}{
		{"student", student, dto.SubmitInput{ItemID: pen, Quantity: 1, Reason: "x"}, apperror.KindForbidden},
		{"zero quantity", staff, dto.SubmitInput{ItemID: pen, Quantity: 0, Reason: "x"}, apperror.KindValidation},
		{"empty reason", staff, dto.SubmitInput{ItemID: pen, Quantity: 1, Reason: " "}, apperror.KindValidation},
		{"bad priority", staff, dto.SubmitInput{ItemID: pen, Quantity: 1, Reason: "x", Priority: "urgent"}, apperror.KindValidation},
		{"negative cost", staff, dto.SubmitInput{ItemID: pen, Quantity: 1, Reason: "x", EstimatedCost: ptr(decimal.NewFromInt(-1))}, apperror.KindValidation},
		{"unknown item", staff, dto.SubmitInput{ItemID: "ghost", Quantity: 1, Reason: "x"}, apperror.KindNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := tc.input
			_, err := f.uc.Submit(context.Background(), tc.actor, &input)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
		})
	}
}

func TestReplenishment_ApproveBounds(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 5)
	req := f.submit(t, pen, 10)

	_, err := f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: req.ID, ApprovedQuantity: ptr(int64(11))})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: req.ID, ApprovedQuantity: ptr(int64(0))})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = f.uc.Approve(context.Background(), student, &dto.ApproveInput{ID: req.ID})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	req, err = f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: req.ID, Notes: ptr("ok")})
	require.NoError(t, err)
	assert.Equal(t, int64(10), *req.ApprovedQuantity)
	assert.Equal(t, "ok", *req.Notes)
}

func TestReplenishment_ReceiveQuantityFallbacks(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 0, 0)

	pending := f.submit(t, pen, 4)
	_, mv, err := f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: pending.ID})
	require.NoError(t, err, "pending requests may be received directly")
	assert.Equal(t, int64(4), mv.Quantity)

	ordered := f.submit(t, pen, 10)
	_, err = f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: ordered.ID, ApprovedQuantity: ptr(int64(8))})
	require.NoError(t, err)
	_, err = f.uc.MarkOrdered(context.Background(), admin, ordered.ID)
	require.NoError(t, err)

	req, mv, err := f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{
		ID: ordered.ID, ReceivedQuantity: ptr(int64(7)), ActualCost: ptr(decimal.RequireFromString("13.50")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), mv.Quantity)
	assert.True(t, req.ActualCost.Decimal.Equal(decimal.RequireFromString("13.5")))
	assert.Equal(t, int64(11), f.quantity(t, pen))
}

func TestReplenishment_ReceiveTwiceCreditsOnce(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 0)
	req := f.submit(t, pen, 5)

	_, _, err := f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: req.ID})
	require.NoError(t, err)
	_, _, err = f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: req.ID})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	assert.Equal(t, int64(11), f.quantity(t, pen))
}

func TestReplenishment_ConcurrentReceiveCreditsOnce(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 0, 0)
	req := f.submit(t, pen, 5)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: req.ID})
			switch {
			case err == nil:
				successes.Add(1)
			case apperror.Is(err, apperror.KindStateConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(7), conflicts.Load())
	assert.Equal(t, int64(5), f.quantity(t, pen))

	_, total, err := f.stock.ListMovements(context.Background(), &stockdto.MovementFilters{
		ReferenceType: model.ReferenceReplenishment, ReferenceID: req.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestReplenishment_Transitions(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 0)

	req := f.submit(t, pen, 5)
	_, err := f.uc.MarkOrdered(context.Background(), admin, req.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict), "pending cannot be ordered")

	req, err = f.uc.Reject(context.Background(), admin, req.ID, "over budget")
	require.NoError(t, err)
	assert.Equal(t, model.ReplenishmentRejected, req.Status)
	assert.Equal(t, "over budget", *req.Notes)

	_, err = f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: req.ID})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	_, _, err = f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: req.ID})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	assert.Equal(t, int64(6), f.quantity(t, pen))

	_, err = f.uc.Reject(context.Background(), admin, "ghost", "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestReplenishment_Delete(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 0)

	pending := f.submit(t, pen, 5)
	require.NoError(t, f.uc.Delete(context.Background(), staff, pending.ID))
	_, err := f.uc.Get(context.Background(), pending.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	received := f.submit(t, pen, 5)
	_, _, err = f.uc.Receive(context.Background(), staff, &dto.ReceiveInput{ID: received.ID})
	require.NoError(t, err)
	err = f.uc.Delete(context.Background(), staff, received.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict), "received requests are part of the audit trail")

	assert.True(t, apperror.Is(f.uc.Delete(context.Background(), staff, "ghost"), apperror.KindNotFound))
	assert.True(t, apperror.Is(f.uc.Delete(context.Background(), student, received.ID), apperror.KindForbidden))
}

func TestReplenishment_ListOrdersByPriority(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 6, 0)

	for _, p := range []string{"low", "high", "", "high"} {
		_, err := f.uc.Submit(context.Background(), staff, &dto.SubmitInput{ItemID: pen, Quantity: 1, Reason: "x", Priority: p})
		require.NoError(t, err)
	}

	list, total, err := f.uc.List(context.Background(), &dto.RequestFilters{ItemID: pen})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, list, 4)
	assert.Equal(t, model.PriorityHigh, list[0].Priority)
	assert.Equal(t, model.PriorityHigh, list[1].Priority)
	assert.Equal(t, model.PriorityMedium, list[2].Priority)
	assert.Equal(t, model.PriorityLow, list[3].Priority)

	_, _, err = f.uc.List(context.Background(), &dto.RequestFilters{Status: "lost"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

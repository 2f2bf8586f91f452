package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/distribution"
	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	distrepo "github.com/fekuna/school-inventory-service/internal/distribution/repository"
	"github.com/fekuna/school-inventory-service/internal/item"
	itemdto "github.com/fekuna/school-inventory-service/internal/item/dto"
	itemrepo "github.com/fekuna/school-inventory-service/internal/item/repository"
	itemusecase "github.com/fekuna/school-inventory-service/internal/item/usecase"
	"github.com/fekuna/school-inventory-service/internal/model"
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
	uc    distribution.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	m := metrics.New()
	log := logger.NewNop()

	itemRepo := itemrepo.NewMemoryRepository(store)
	stockUC := stockusecase.NewStockUseCase(
		stockrepo.NewMemoryRepository(store, itemRepo), store, locker,
		cache.NewNop(), broker.NewNopPublisher(), m, log, false,
	)
	itemUC := itemusecase.NewItemUseCase(itemRepo, stockUC, store, cache.NewNop(), 0, nil, "items", log)

	return &fixture{
		items: itemUC,
		stock: stockUC,
		uc:    NewDistributionUseCase(distrepo.NewMemoryRepository(store), itemRepo, stockUC, locker, m, log),
	}
}

func (f *fixture) createItem(t *testing.T, code string, quantity, minimum int64) string {
	t.Helper()
	it, err := f.items.CreateItem(context.Background(), admin, &itemdto.CreateItemInput{
		Code: code, Name: code, MinimumQuantity: minimum,
		UnitPrice: decimal.NewFromFloat(1.5), InitialQuantity: quantity,
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

func (f *fixture) approved(t *testing.T, requester model.Actor, itemID string, qty int64) *model.DistributionRequest {
	t.Helper()
	req, err := f.uc.Submit(context.Background(), requester, &dto.SubmitInput{ItemID: itemID, Quantity: qty, Purpose: "class"})
	require.NoError(t, err)
	req, err = f.uc.Approve(context.Background(), admin, &dto.ApproveInput{ID: req.ID})
	require.NoError(t, err)
	return req
}

func ptr[T any](v T) *T { return &v }

func TestDistribution_HappyPath(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)

	req, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{
		ItemID: pen, Quantity: 4, Purpose: "exam", Urgency: "medium",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DistributionPending, req.Status)
	assert.Equal(t, model.UrgencyNormal, req.Urgency)
	assert.Equal(t, model.ActorStudent, req.RequesterKind)

	req, err = f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID, ApprovedQuantity: ptr(int64(4))})
	require.NoError(t, err)
	assert.Equal(t, model.DistributionApproved, req.Status)
	require.NotNil(t, req.ProcessedBy)
	assert.Equal(t, staff.ID, *req.ProcessedBy)
	assert.Equal(t, int64(10), f.quantity(t, pen), "approval moves no stock")

	req, mv, err := f.uc.Distribute(context.Background(), staff, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.DistributionDistributed, req.Status)
	assert.Equal(t, model.MovementDebit, mv.Kind)
	assert.Equal(t, int64(10), mv.PreviousQuantity)
	assert.Equal(t, int64(6), mv.NewQuantity)
	assert.Contains(t, mv.Reason, req.ID)
	assert.Equal(t, int64(6), f.quantity(t, pen))

	stored, err := f.uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DistributionDistributed, stored.Status)
}

func TestDistribution_SubmitValidation(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)

	tests := []struct {
		name  string
		actor model.Actor
		input dto.SubmitInput
		kind  apperror.Kind
	}{
		{"zero quantity", student, dto.SubmitInput{ItemID: pen, Quantity: 0, Purpose: "x"}, apperror.KindValidation},
		{"empty purpose", student, dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "  "}, apperror.KindValidation},
		{"bad urgency", student, dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "x", Urgency: "asap"}, apperror.KindValidation},
		{"unknown item", student, dto.SubmitInput{ItemID: "ghost", Quantity: 1, Purpose: "x"}, apperror.KindNotFound},
		{"more than stock", student, dto.SubmitInput{ItemID: pen, Quantity: 11, Purpose: "x"}, apperror.KindInsufficientStock},
		{"admin requester", admin, dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "x"}, apperror.KindForbidden},
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

func TestDistribution_InactiveItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)
	_, err := f.items.SetItemStatus(context.Background(), admin, pen, model.ItemStatusInactive)
	require.NoError(t, err)

	_, err = f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "x"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDistribution_DuplicatePending(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)

	first, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "x"})
	require.NoError(t, err)

	_, err = f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 2, Purpose: "y"})
	assert.True(t, apperror.Is(err, apperror.KindDuplicatePending))

	_, err = f.uc.Submit(context.Background(), staff, &dto.SubmitInput{ItemID: pen, Quantity: 2, Purpose: "y"})
	assert.NoError(t, err, "other requesters are independent")

	_, err = f.uc.Cancel(context.Background(), student, first.ID)
	require.NoError(t, err)
	_, err = f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 2, Purpose: "y"})
	assert.NoError(t, err, "a cancelled request no longer blocks")
}

func TestDistribution_ConcurrentSubmitsAllowOnePending(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		dups    atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "x"})
			switch {
			case err == nil:
				created.Add(1)
			case apperror.Is(err, apperror.KindDuplicatePending):
				dups.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(9), dups.Load())
}

func TestDistribution_ApproveRechecksStock(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)

	req, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 8, Purpose: "art"})
	require.NoError(t, err)

	_, err = f.stock.AdjustStock(context.Background(), admin, &stockdto.AdjustStockInput{
		ItemID: pen, Kind: model.MovementDebit, Quantity: 4, Reason: "breakage",
	})
	require.NoError(t, err)

	_, err = f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID})
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))

	stored, err := f.uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DistributionPending, stored.Status)
	assert.Nil(t, stored.ApprovedQuantity)

	_, err = f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID, ApprovedQuantity: ptr(int64(9))})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "approval bound")

	req, err = f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID, ApprovedQuantity: ptr(int64(6)), Remarks: ptr("partial")})
	require.NoError(t, err)
	assert.Equal(t, int64(6), *req.ApprovedQuantity)
	assert.Equal(t, "partial", *req.Remarks)
}

func TestDistribution_DistributeTwiceDebitsOnce(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 5)
	req := f.approved(t, student, pen, 3)

	_, _, err := f.uc.Distribute(context.Background(), staff, req.ID, nil)
	require.NoError(t, err)

	_, _, err = f.uc.Distribute(context.Background(), staff, req.ID, nil)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	assert.Equal(t, int64(7), f.quantity(t, pen))

	_, total, err := f.stock.ListMovements(context.Background(), &stockdto.MovementFilters{
		ReferenceType: model.ReferenceDistribution, ReferenceID: req.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDistribution_InsufficientAtDistributeKeepsApproved(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 0)
	req := f.approved(t, student, pen, 6)

	_, err := f.stock.AdjustStock(context.Background(), admin, &stockdto.AdjustStockInput{
		ItemID: pen, Kind: model.MovementDebit, Quantity: 5, Reason: "lost",
	})
	require.NoError(t, err)

	_, _, err = f.uc.Distribute(context.Background(), staff, req.ID, nil)
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))

	stored, err := f.uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DistributionApproved, stored.Status)
	assert.Equal(t, int64(5), f.quantity(t, pen))
}

func TestDistribution_ConcurrentDistributeSameItem(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 7, 0)

	a := f.approved(t, student, pen, 5)
	b := f.approved(t, staff, pen, 5)

	var (
		wg           sync.WaitGroup
		successes    atomic.Int32
		insufficient atomic.Int32
	)
	for _, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := f.uc.Distribute(context.Background(), admin, id, nil)
			switch {
			case err == nil:
				successes.Add(1)
			case apperror.Is(err, apperror.KindInsufficientStock):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(1), insufficient.Load())
	assert.Equal(t, int64(2), f.quantity(t, pen))

	approved, total, err := f.uc.List(context.Background(), &dto.RequestFilters{Status: model.DistributionApproved})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, approved, 1)

	report, err := f.stock.VerifyLedger(context.Background(), pen)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestDistribution_ApproveRejectRace(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 0)
	req, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 2, Purpose: "x"})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	record := func(err error) {
		switch {
		case err == nil:
			successes.Add(1)
		case apperror.Is(err, apperror.KindStateConflict):
			conflicts.Add(1)
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID})
			record(err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.uc.Reject(context.Background(), admin, req.ID, "no")
			record(err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(9), conflicts.Load())
}

func TestDistribution_Cancel(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 0)

	req, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 2, Purpose: "x"})
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), staff, req.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.uc.Cancel(context.Background(), student, "ghost")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID})
	require.NoError(t, err)

	_, err = f.uc.Cancel(context.Background(), student, req.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	stored, err := f.uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DistributionApproved, stored.Status)
	assert.Equal(t, int64(10), f.quantity(t, pen))
}

func TestDistribution_ListFilters(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 0)
	ink := f.createItem(t, "INK-01", 10, 0)

	_, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 1, Purpose: "x"})
	require.NoError(t, err)
	_, err = f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: ink, Quantity: 1, Purpose: "x"})
	require.NoError(t, err)
	_, err = f.uc.Submit(context.Background(), staff, &dto.SubmitInput{ItemID: ink, Quantity: 1, Purpose: "x"})
	require.NoError(t, err)

	_, total, err := f.uc.List(context.Background(), &dto.RequestFilters{RequesterID: student.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	page, total, err := f.uc.List(context.Background(), &dto.RequestFilters{ItemID: ink, Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, page, 1)

	_, _, err = f.uc.List(context.Background(), &dto.RequestFilters{Status: "lost"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDistribution_OnlyStaffProcessRequests(t *testing.T) {
	f := newFixture(t)
	pen := f.createItem(t, "PEN-01", 10, 0)

	req, err := f.uc.Submit(context.Background(), student, &dto.SubmitInput{ItemID: pen, Quantity: 2, Purpose: "class"})
	require.NoError(t, err)

	_, err = f.uc.Approve(context.Background(), student, &dto.ApproveInput{ID: req.ID})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	_, err = f.uc.Reject(context.Background(), student, req.ID, "self")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.uc.Approve(context.Background(), staff, &dto.ApproveInput{ID: req.ID})
	require.NoError(t, err)

	_, _, err = f.uc.Distribute(context.Background(), student, req.ID, nil)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	got, err := f.uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DistributionApproved, got.Status)
	it, err := f.items.GetItem(context.Background(), pen)
	require.NoError(t, err)
	assert.Equal(t, int64(10), it.Quantity)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/item"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock"
	"github.com/fekuna/school-inventory-service/internal/stock/dto"
	"github.com/fekuna/school-inventory-service/pkg/broker"
	"github.com/fekuna/school-inventory-service/pkg/cache"
	"github.com/fekuna/school-inventory-service/pkg/database"
	"github.com/fekuna/school-inventory-service/pkg/lock"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/fekuna/school-inventory-service/pkg/metrics"
	"github.com/fekuna/school-inventory-service/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type stockUseCase struct {
	repo          stock.Repository
	txm           database.TxManager
	locker        lock.Locker
	cache         cache.Cache
	publisher     broker.Publisher
	metrics       *metrics.Metrics
	logger        logger.ZapLogger
	tracer        trace.Tracer
	allowInactive bool
}

func NewStockUseCase(
	repo stock.Repository,
	txm database.TxManager,
	locker lock.Locker,
	c cache.Cache,
	publisher broker.Publisher,
	m *metrics.Metrics,
	log logger.ZapLogger,
	allowInactive bool,
) stock.UseCase {
	return &stockUseCase{
		repo:          repo,
		txm:           txm,
		locker:        locker,
		cache:         c,
		publisher:     publisher,
		metrics:       m,
		logger:        log,
		tracer:        otel.Tracer("stock"),
		allowInactive: allowInactive,
	}
}

func (uc *stockUseCase) ApplyDelta(ctx context.Context, input *dto.MoveInput) (res *dto.MoveResult, err error) {
	ctx, span := uc.tracer.Start(ctx, "stock.apply_delta", trace.WithAttributes(
		attribute.String("item.id", input.ItemID),
		attribute.String("movement.kind", string(input.Kind)),
		attribute.Int64("movement.quantity", input.Quantity),
	))
	defer func() { tracing.End(span, err) }()

	if !input.Kind.Valid() {
		return nil, apperror.Validation("unknown movement kind %q", input.Kind)
	}
	if input.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive, got %d", input.Quantity)
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperror.Validation("movement reason is required")
	}
	if input.ActorID == "" {
		return nil, apperror.Validation("actor is required")
	}

	waitStart := time.Now()
	release, err := uc.locker.Acquire(ctx, item.LockKey(input.ItemID))
	if err != nil {
		uc.logger.Warn("stock lock not acquired", zap.String("item_id", input.ItemID), zap.Error(err))
		return nil, apperror.Wrap(apperror.KindUnavailable, err, "item %s is busy, retry", input.ItemID)
	}
	defer release()
	uc.metrics.ObserveLockWait("item", time.Since(waitStart))

	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		it, err := uc.repo.GetItem(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if it == nil {
			return apperror.NotFound("item %s not found", input.ItemID)
		}
		if !it.IsActive() && !input.AllowInactive && !uc.allowInactive {
			return apperror.NotFound("item %s is inactive", input.ItemID)
		}

		previous := it.Quantity
		next := input.Kind.Apply(previous, input.Quantity)
		if next < 0 {
			return apperror.InsufficientStock("item %s has %d in stock, cannot debit %d", it.Code, previous, input.Quantity)
		}

		now := time.Now().UTC()
		if err := uc.repo.CompareAndSetQuantity(ctx, it.ID, previous, next, now); err != nil {
			if errors.Is(err, apperror.ErrStaleWrite) {
				return apperror.Wrap(apperror.KindStateConflict, err, "item %s changed concurrently", it.ID)
			}
			return err
		}

		movement := &model.StockMovement{
			ID:               uuid.New().String(),
			ItemID:           it.ID,
			Kind:             input.Kind,
			Quantity:         input.Quantity,
			PreviousQuantity: previous,
			NewQuantity:      next,
			Reason:           input.Reason,
			ReferenceType:    optional(input.ReferenceType),
			ReferenceID:      optional(input.ReferenceID),
			ActorID:          input.ActorID,
			CreatedAt:        now,
		}
		if err := uc.repo.AppendMovement(ctx, movement); err != nil {
			return err
		}

		if input.Within != nil {
			if err := input.Within(ctx, movement); err != nil {
				return err
			}
		}

		it.Quantity = next
		it.UpdatedAt = now
		res = &dto.MoveResult{Item: it, Movement: movement}

		snapshot := *it
		uc.txm.AfterCommit(ctx, func() { uc.afterMove(ctx, &snapshot, movement) })
		return nil
	})
	if err != nil {
		uc.observeFailure(input, err)
		return nil, err
	}

	return res, nil
}

func (uc *stockUseCase) observeFailure(input *dto.MoveInput, err error) {
	kind := apperror.KindOf(err)
	fields := []zap.Field{
		zap.String("item_id", input.ItemID),
		zap.String("kind", string(input.Kind)),
		zap.Int64("quantity", input.Quantity),
		zap.String("actor_id", input.ActorID),
		zap.Error(err),
	}
	switch kind {
	case apperror.KindUnknown:
		uc.logger.Error("stock movement failed", fields...)
	default:
		uc.metrics.ObserveRejection(strings.ToLower(kind.String()))
		uc.logger.Info("stock movement rejected", fields...)
	}
}

// afterMove runs once the movement is durable: metrics, cache eviction and events.
// None of it can undo the movement.
func (uc *stockUseCase) afterMove(ctx context.Context, it *model.Item, m *model.StockMovement) {
	refType := ""
	if m.ReferenceType != nil {
		refType = *m.ReferenceType
	}
	uc.metrics.ObserveMovement(string(m.Kind), refType, m.Quantity)

	uc.logger.Info("stock moved",
		zap.String("item_id", it.ID),
		zap.String("movement_id", m.ID),
		zap.String("kind", string(m.Kind)),
		zap.Int64("quantity", m.Quantity),
		zap.Int64("previous_quantity", m.PreviousQuantity),
		zap.Int64("new_quantity", m.NewQuantity),
		zap.String("actor_id", m.ActorID),
	)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := uc.cache.Delete(ctx, item.CacheKey(it.ID)); err != nil {
		uc.logger.Warn("failed to evict item cache", zap.String("item_id", it.ID), zap.Error(err))
	}

	moved := model.StockMovedEvent{
		MovementID:       m.ID,
		ItemID:           it.ID,
		Kind:             m.Kind,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceType:    refType,
		ActorID:          m.ActorID,
		OccurredAt:       m.CreatedAt,
	}
	if m.ReferenceID != nil {
		moved.ReferenceID = *m.ReferenceID
	}
	uc.publish(ctx, it.ID, model.EventStockMoved, moved)

	if m.PreviousQuantity > it.MinimumQuantity && m.NewQuantity <= it.MinimumQuantity {
		uc.publish(ctx, it.ID, model.EventStockLow, model.StockLowEvent{
			ItemID:          it.ID,
			Code:            it.Code,
			Name:            it.Name,
			Quantity:        m.NewQuantity,
			MinimumQuantity: it.MinimumQuantity,
			OccurredAt:      m.CreatedAt,
		})
	}
}

func (uc *stockUseCase) publish(ctx context.Context, key, eventType string, payload any) {
	event, err := broker.NewEvent(eventType, payload)
	if err == nil {
		err = uc.publisher.Publish(ctx, key, event)
	}
	if err != nil {
		uc.logger.Warn("failed to publish stock event", zap.String("event_type", eventType), zap.String("item_id", key), zap.Error(err))
	}
}

func (uc *stockUseCase) AdjustStock(ctx context.Context, actor model.Actor, input *dto.AdjustStockInput) (*dto.MoveResult, error) {
	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not adjust stock", actor.Kind, actor.ID)
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperror.Validation("adjustment reason is required")
	}

	return uc.ApplyDelta(ctx, &dto.MoveInput{
		ItemID:        input.ItemID,
		Kind:          input.Kind,
		Quantity:      input.Quantity,
		Reason:        fmt.Sprintf("manual adjustment: %s", input.Reason),
		ReferenceType: model.ReferenceAdjustment,
		ActorID:       actor.ID,
	})
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if filters.Kind != "" && !filters.Kind.Valid() {
		return nil, 0, apperror.Validation("unknown movement kind %q", filters.Kind)
	}
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *stockUseCase) VerifyLedger(ctx context.Context, itemID string) (*dto.LedgerReport, error) {
	var report *dto.LedgerReport
	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		it, err := uc.repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if it == nil {
			return apperror.NotFound("item %s not found", itemID)
		}

		movements, err := uc.repo.ItemMovements(ctx, itemID)
		if err != nil {
			return err
		}

		replayed, brokenID, replayErr := model.ReplayMovements(movements)
		report = &dto.LedgerReport{
			ItemID:           itemID,
			StoredQuantity:   it.Quantity,
			ReplayedQuantity: replayed,
			Movements:        len(movements),
			Consistent:       replayErr == nil && replayed == it.Quantity,
			BrokenMovementID: brokenID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !report.Consistent {
		uc.logger.Error("ledger does not match stored quantity",
			zap.String("item_id", itemID),
			zap.Int64("stored", report.StoredQuantity),
			zap.Int64("replayed", report.ReplayedQuantity),
			zap.String("broken_movement_id", report.BrokenMovementID),
		)
	}
	return report, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

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
	"github.com/fekuna/school-inventory-service/internal/replenishment"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	"github.com/fekuna/school-inventory-service/internal/stock"
	stockdto "github.com/fekuna/school-inventory-service/internal/stock/dto"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/fekuna/school-inventory-service/pkg/metrics"
	"github.com/fekuna/school-inventory-service/pkg/tracing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const workflow = "replenishment"

type replenishmentUseCase struct {
	repo    replenishment.Repository
	items   item.Repository
	stock   stock.UseCase
	metrics *metrics.Metrics
	logger  logger.ZapLogger
	tracer  trace.Tracer
}

func NewReplenishmentUseCase(
	repo replenishment.Repository,
	items item.Repository,
	stockUC stock.UseCase,
	m *metrics.Metrics,
	log logger.ZapLogger,
) replenishment.UseCase {
	return &replenishmentUseCase{
		repo:    repo,
		items:   items,
		stock:   stockUC,
		metrics: m,
		logger:  log,
		tracer:  otel.Tracer(workflow),
	}
}

func (uc *replenishmentUseCase) Submit(ctx context.Context, actor model.Actor, input *dto.SubmitInput) (req *model.ReplenishmentRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "replenishment.submit", trace.WithAttributes(
		attribute.String("item.id", input.ItemID),
		attribute.String("actor.id", actor.ID),
	))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not request replenishment", actor.Kind, actor.ID)
	}
	if input.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive, got %d", input.Quantity)
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperror.Validation("reason is required")
	}
	priority, ok := model.ParsePriority(input.Priority)
	if !ok {
		return nil, apperror.Validation("unknown priority %q", input.Priority)
	}
	if err := validateCost("estimated cost", input.EstimatedCost); err != nil {
		return nil, err
	}

	it, err := uc.items.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if it == nil || !it.IsActive() {
		return nil, apperror.NotFound("item %s not found", input.ItemID)
	}

	now := time.Now().UTC()
	req = &model.ReplenishmentRequest{
		ID:                uuid.New().String(),
		ItemID:            input.ItemID,
		RequestedQuantity: input.Quantity,
		Priority:          priority,
		Reason:            reason,
		SupplierInfo:      trimmed(input.SupplierInfo),
		EstimatedCost:     nullDecimal(input.EstimatedCost),
		Status:            model.ReplenishmentPending,
		RequestedBy:       actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	uc.metrics.ObserveTransition(workflow, string(req.Status))
	uc.logger.Info("replenishment request submitted",
		zap.String("request_id", req.ID),
		zap.String("item_id", req.ItemID),
		zap.String("actor_id", actor.ID),
		zap.Int64("quantity", req.RequestedQuantity),
	)
	return req, nil
}

func (uc *replenishmentUseCase) Approve(ctx context.Context, actor model.Actor, input *dto.ApproveInput) (req *model.ReplenishmentRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "replenishment.approve", trace.WithAttributes(attribute.String("request.id", input.ID)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not approve replenishment", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, input.ID, model.ReplenishmentApproved)
	if err != nil {
		return nil, err
	}

	approved := req.RequestedQuantity
	if input.ApprovedQuantity != nil {
		approved = *input.ApprovedQuantity
	}
	if approved <= 0 {
		return nil, apperror.Validation("approved quantity must be positive, got %d", approved)
	}
	if approved > req.RequestedQuantity {
		return nil, apperror.Validation("approved quantity %d exceeds requested %d", approved, req.RequestedQuantity)
	}
	if err := validateCost("actual cost", input.ActualCost); err != nil {
		return nil, err
	}

	from := req.Status
	now := time.Now().UTC()
	req.Status = model.ReplenishmentApproved
	req.ApprovedQuantity = &approved
	if input.ActualCost != nil {
		req.ActualCost = nullDecimal(input.ActualCost)
	}
	if notes := trimmed(input.Notes); notes != nil {
		req.Notes = notes
	}
	req.ApprovedBy = &actor.ID
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := uc.transition(ctx, req, from, actor); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *replenishmentUseCase) Reject(ctx context.Context, actor model.Actor, id, notes string) (req *model.ReplenishmentRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "replenishment.reject", trace.WithAttributes(attribute.String("request.id", id)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not reject replenishment", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, id, model.ReplenishmentRejected)
	if err != nil {
		return nil, err
	}

	from := req.Status
	now := time.Now().UTC()
	req.Status = model.ReplenishmentRejected
	if n := trimmed(&notes); n != nil {
		req.Notes = n
	}
	req.ApprovedBy = &actor.ID
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := uc.transition(ctx, req, from, actor); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *replenishmentUseCase) MarkOrdered(ctx context.Context, actor model.Actor, id string) (req *model.ReplenishmentRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "replenishment.mark_ordered", trace.WithAttributes(attribute.String("request.id", id)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not order replenishment", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, id, model.ReplenishmentOrdered)
	if err != nil {
		return nil, err
	}

	from := req.Status
	req.Status = model.ReplenishmentOrdered
	req.UpdatedAt = time.Now().UTC()

	if err := uc.transition(ctx, req, from, actor); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *replenishmentUseCase) Receive(ctx context.Context, actor model.Actor, input *dto.ReceiveInput) (req *model.ReplenishmentRequest, movement *model.StockMovement, err error) {
	ctx, span := uc.tracer.Start(ctx, "replenishment.receive", trace.WithAttributes(attribute.String("request.id", input.ID)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, nil, apperror.Forbidden("%s %s may not receive deliveries", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, input.ID, model.ReplenishmentReceived)
	if err != nil {
		return nil, nil, err
	}

	quantity := req.RequestedQuantity
	switch {
	case input.ReceivedQuantity != nil:
		quantity = *input.ReceivedQuantity
	case req.ApprovedQuantity != nil:
		quantity = *req.ApprovedQuantity
	}
	if quantity <= 0 {
		return nil, nil, apperror.Validation("received quantity must be positive, got %d", quantity)
	}
	if err := validateCost("actual cost", input.ActualCost); err != nil {
		return nil, nil, err
	}

	from := req.Status
	next := *req
	res, err := uc.stock.ApplyDelta(ctx, &stockdto.MoveInput{
		ItemID:        req.ItemID,
		Kind:          model.MovementCredit,
		Quantity:      quantity,
		Reason:        fmt.Sprintf("replenishment of request #%s", req.ID),
		ReferenceType: model.ReferenceReplenishment,
		ReferenceID:   req.ID,
		ActorID:       actor.ID,
		Within: func(ctx context.Context, _ *model.StockMovement) error {
			now := time.Now().UTC()
			next.Status = model.ReplenishmentReceived
			next.ReceivedQuantity = &quantity
			if input.ActualCost != nil {
				next.ActualCost = nullDecimal(input.ActualCost)
			}
			next.ReceivedBy = &actor.ID
			next.ProcessedAt = &now
			next.UpdatedAt = now
			return uc.transition(ctx, &next, from, actor)
		},
	})
	if err != nil {
		return nil, nil, err
	}

	return &next, res.Movement, nil
}

func (uc *replenishmentUseCase) Delete(ctx context.Context, actor model.Actor, id string) error {
	if !actor.Kind.CanManageStock() {
		return apperror.Forbidden("%s %s may not delete replenishment requests", actor.Kind, actor.ID)
	}

	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return apperror.NotFound("replenishment request %s not found", id)
	}
	if !req.Status.Deletable() {
		return apperror.StateConflict("cannot delete request %s in status %s", id, req.Status)
	}

	if err := uc.repo.Delete(ctx, id, model.ReplenishmentPending, model.ReplenishmentRejected); err != nil {
		if errors.Is(err, apperror.ErrStaleWrite) {
			return apperror.Wrap(apperror.KindStateConflict, err, "request %s changed before it could be deleted", id)
		}
		return err
	}

	uc.logger.Info("replenishment request deleted",
		zap.String("request_id", id),
		zap.String("status", string(req.Status)),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

func (uc *replenishmentUseCase) Get(ctx context.Context, id string) (*model.ReplenishmentRequest, error) {
	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NotFound("replenishment request %s not found", id)
	}
	return req, nil
}

func (uc *replenishmentUseCase) List(ctx context.Context, filters *dto.RequestFilters) ([]model.ReplenishmentRequest, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.Validation("unknown status %q", filters.Status)
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *replenishmentUseCase) load(ctx context.Context, id string, next model.ReplenishmentStatus) (*model.ReplenishmentRequest, error) {
	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NotFound("replenishment request %s not found", id)
	}
	if !req.Status.CanTransitionTo(next) {
		return nil, apperror.StateConflict("cannot move request %s from %s to %s", id, req.Status, next)
	}
	return req, nil
}

func (uc *replenishmentUseCase) transition(ctx context.Context, req *model.ReplenishmentRequest, from model.ReplenishmentStatus, actor model.Actor) error {
	if err := uc.repo.Transition(ctx, req, from); err != nil {
		if errors.Is(err, apperror.ErrStaleWrite) {
			return apperror.Wrap(apperror.KindStateConflict, err, "request %s is no longer %s", req.ID, from)
		}
		return err
	}

	uc.metrics.ObserveTransition(workflow, string(req.Status))
	uc.logger.Info("replenishment request transitioned",
		zap.String("request_id", req.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.Status)),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

func validateCost(field string, d *decimal.Decimal) error {
	if d != nil && d.IsNegative() {
		return apperror.Validation("%s must not be negative", field)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

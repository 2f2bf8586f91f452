package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/distribution"
	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	"github.com/fekuna/school-inventory-service/internal/item"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock"
	stockdto "github.com/fekuna/school-inventory-service/internal/stock/dto"
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

const workflow = "distribution"

type distributionUseCase struct {
	repo    distribution.Repository
	items   item.Repository
	stock   stock.UseCase
	locker  lock.Locker
	metrics *metrics.Metrics
	logger  logger.ZapLogger
	tracer  trace.Tracer
}

func NewDistributionUseCase(
	repo distribution.Repository,
	items item.Repository,
	stockUC stock.UseCase,
	locker lock.Locker,
	m *metrics.Metrics,
	log logger.ZapLogger,
) distribution.UseCase {
	return &distributionUseCase{
		repo:    repo,
		items:   items,
		stock:   stockUC,
		locker:  locker,
		metrics: m,
		logger:  log,
		tracer:  otel.Tracer(workflow),
	}
}

func (uc *distributionUseCase) Submit(ctx context.Context, actor model.Actor, input *dto.SubmitInput) (req *model.DistributionRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "distribution.submit", trace.WithAttributes(
		attribute.String("item.id", input.ItemID),
		attribute.String("actor.id", actor.ID),
	))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanRequestDistribution() {
		return nil, apperror.Forbidden("%s %s may not request distributions", actor.Kind, actor.ID)
	}
	if input.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive, got %d", input.Quantity)
	}
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, apperror.Validation("purpose is required")
	}
	urgency, ok := model.ParseUrgency(input.Urgency)
	if !ok {
		return nil, apperror.Validation("unknown urgency %q", input.Urgency)
	}

	release, err := uc.locker.Acquire(ctx, fmt.Sprintf("lock:distribution:%s:%s", actor.ID, input.ItemID))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnavailable, err, "another submission for item %s is in progress", input.ItemID)
	}
	defer release()

	it, err := uc.items.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if it == nil || !it.IsActive() {
		return nil, apperror.NotFound("item %s not found", input.ItemID)
	}
	if input.Quantity > it.Quantity {
		uc.metrics.ObserveRejection("insufficient_stock")
		return nil, apperror.InsufficientStock("item %s has %d in stock, requested %d", it.Code, it.Quantity, input.Quantity)
	}

	pending, err := uc.repo.HasPending(ctx, actor.ID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperror.DuplicatePending("you already have a pending request for item %s", it.Code)
	}

	now := time.Now().UTC()
	req = &model.DistributionRequest{
		ID:                uuid.New().String(),
		RequesterID:       actor.ID,
		RequesterKind:     actor.Kind,
		ItemID:            input.ItemID,
		RequestedQuantity: input.Quantity,
		Purpose:           purpose,
		Urgency:           urgency,
		Status:            model.DistributionPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	uc.metrics.ObserveTransition(workflow, string(req.Status))
	uc.logger.Info("distribution request submitted",
		zap.String("request_id", req.ID),
		zap.String("item_id", req.ItemID),
		zap.String("actor_id", actor.ID),
		zap.Int64("quantity", req.RequestedQuantity),
	)
	return req, nil
}

func (uc *distributionUseCase) Approve(ctx context.Context, actor model.Actor, input *dto.ApproveInput) (req *model.DistributionRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "distribution.approve", trace.WithAttributes(attribute.String("request.id", input.ID)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not approve distribution requests", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, input.ID, model.DistributionApproved)
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

	it, err := uc.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperror.NotFound("item %s not found", req.ItemID)
	}
	if approved > it.Quantity {
		uc.metrics.ObserveRejection("insufficient_stock")
		return nil, apperror.InsufficientStock("item %s has %d in stock, cannot approve %d", it.Code, it.Quantity, approved)
	}

	now := time.Now().UTC()
	req.Status = model.DistributionApproved
	req.ApprovedQuantity = &approved
	if input.Remarks != nil {
		req.Remarks = input.Remarks
	}
	req.ProcessedBy = &actor.ID
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := uc.transition(ctx, req, model.DistributionPending, actor); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *distributionUseCase) Reject(ctx context.Context, actor model.Actor, id, remarks string) (req *model.DistributionRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "distribution.reject", trace.WithAttributes(attribute.String("request.id", id)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not reject distribution requests", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, id, model.DistributionRejected)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req.Status = model.DistributionRejected
	if r := strings.TrimSpace(remarks); r != "" {
		req.Remarks = &r
	}
	req.ProcessedBy = &actor.ID
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := uc.transition(ctx, req, model.DistributionPending, actor); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *distributionUseCase) Distribute(ctx context.Context, actor model.Actor, id string, remarks *string) (req *model.DistributionRequest, movement *model.StockMovement, err error) {
	ctx, span := uc.tracer.Start(ctx, "distribution.distribute", trace.WithAttributes(attribute.String("request.id", id)))
	defer func() { tracing.End(span, err) }()

	if !actor.Kind.CanManageStock() {
		return nil, nil, apperror.Forbidden("%s %s may not distribute distribution requests", actor.Kind, actor.ID)
	}

	req, err = uc.load(ctx, id, model.DistributionDistributed)
	if err != nil {
		return nil, nil, err
	}

	quantity := req.RequestedQuantity
	if req.ApprovedQuantity != nil {
		quantity = *req.ApprovedQuantity
	}

	next := *req
	res, err := uc.stock.ApplyDelta(ctx, &stockdto.MoveInput{
		ItemID:        req.ItemID,
		Kind:          model.MovementDebit,
		Quantity:      quantity,
		Reason:        fmt.Sprintf("distribution of request #%s", req.ID),
		ReferenceType: model.ReferenceDistribution,
		ReferenceID:   req.ID,
		ActorID:       actor.ID,
		Within: func(ctx context.Context, _ *model.StockMovement) error {
			now := time.Now().UTC()
			next.Status = model.DistributionDistributed
			if remarks != nil {
				next.Remarks = remarks
			}
			next.ProcessedBy = &actor.ID
			next.ProcessedAt = &now
			next.UpdatedAt = now
			return uc.transition(ctx, &next, model.DistributionApproved, actor)
		},
	})
	if err != nil {
		if apperror.Is(err, apperror.KindInsufficientStock) {
			uc.logger.Info("distribution deferred, stock dropped since approval",
				zap.String("request_id", req.ID),
				zap.String("item_id", req.ItemID),
				zap.Int64("quantity", quantity),
			)
		}
		return nil, nil, err
	}

	return &next, res.Movement, nil
}

func (uc *distributionUseCase) Cancel(ctx context.Context, actor model.Actor, id string) (req *model.DistributionRequest, err error) {
	ctx, span := uc.tracer.Start(ctx, "distribution.cancel", trace.WithAttributes(attribute.String("request.id", id)))
	defer func() { tracing.End(span, err) }()

	req, err = uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NotFound("distribution request %s not found", id)
	}
	if req.RequesterID != actor.ID {
		return nil, apperror.Forbidden("only the requester may cancel request %s", id)
	}
	if !req.Status.CanTransitionTo(model.DistributionCancelled) {
		return nil, apperror.StateConflict("cannot cancel request %s in status %s", id, req.Status)
	}

	now := time.Now().UTC()
	req.Status = model.DistributionCancelled
	req.ProcessedBy = &actor.ID
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := uc.transition(ctx, req, model.DistributionPending, actor); err != nil {
		return nil, err
	}
	return req, nil
}

func (uc *distributionUseCase) Get(ctx context.Context, id string) (*model.DistributionRequest, error) {
	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NotFound("distribution request %s not found", id)
	}
	return req, nil
}

func (uc *distributionUseCase) List(ctx context.Context, filters *dto.RequestFilters) ([]model.DistributionRequest, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.Validation("unknown status %q", filters.Status)
	}
	return uc.repo.FindAll(ctx, filters)
}

// load fetches a request and checks that it may move to next.
func (uc *distributionUseCase) load(ctx context.Context, id string, next model.DistributionStatus) (*model.DistributionRequest, error) {
	req, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.NotFound("distribution request %s not found", id)
	}
	if !req.Status.CanTransitionTo(next) {
		return nil, apperror.StateConflict("cannot move request %s from %s to %s", id, req.Status, next)
	}
	return req, nil
}

func (uc *distributionUseCase) transition(ctx context.Context, req *model.DistributionRequest, from model.DistributionStatus, actor model.Actor) error {
	if err := uc.repo.Transition(ctx, req, from); err != nil {
		if errors.Is(err, apperror.ErrStaleWrite) {
			return apperror.Wrap(apperror.KindStateConflict, err, "request %s is no longer %s", req.ID, from)
		}
		return err
	}

	uc.metrics.ObserveTransition(workflow, string(req.Status))
	uc.logger.Info("distribution request transitioned",
		zap.String("request_id", req.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.Status)),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

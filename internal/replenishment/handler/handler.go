package handler

import (
	"context"

	inventoryv1 "github.com/fekuna/school-inventory-service/api/inventory/v1"
	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/auth"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	stockhandler "github.com/fekuna/school-inventory-service/internal/stock/handler"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type ReplenishmentHandler struct {
	uc     replenishment.UseCase
	logger logger.ZapLogger
}

func NewReplenishmentHandler(uc replenishment.UseCase, log logger.ZapLogger) *ReplenishmentHandler {
	return &ReplenishmentHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReplenishmentHandler) Submit(ctx context.Context, req *inventoryv1.SubmitReplenishmentRequest) (*inventoryv1.ReplenishmentRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cost, err := parseCost("estimated cost", req.EstimatedCost)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	r, err := h.uc.Submit(ctx, actor, &dto.SubmitInput{
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		Priority:      req.Priority,
		Reason:        req.Reason,
		SupplierInfo:  req.SupplierInfo,
		EstimatedCost: cost,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *ReplenishmentHandler) Approve(ctx context.Context, req *inventoryv1.ApproveReplenishmentRequest) (*inventoryv1.ReplenishmentRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cost, err := parseCost("actual cost", req.ActualCost)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	r, err := h.uc.Approve(ctx, actor, &dto.ApproveInput{
		ID:               req.ID,
		ApprovedQuantity: req.ApprovedQuantity,
		ActualCost:       cost,
		Notes:            req.Notes,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *ReplenishmentHandler) Reject(ctx context.Context, req *inventoryv1.RejectReplenishmentRequest) (*inventoryv1.ReplenishmentRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.uc.Reject(ctx, actor, req.ID, req.Notes)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *ReplenishmentHandler) MarkOrdered(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.ReplenishmentRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.uc.MarkOrdered(ctx, actor, req.ID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *ReplenishmentHandler) Receive(ctx context.Context, req *inventoryv1.ReceiveReplenishmentRequest) (*inventoryv1.ReceiveResponse, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cost, err := parseCost("actual cost", req.ActualCost)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	r, mv, err := h.uc.Receive(ctx, actor, &dto.ReceiveInput{
		ID:               req.ID,
		ReceivedQuantity: req.ReceivedQuantity,
		ActualCost:       cost,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return &inventoryv1.ReceiveResponse{
		Request:  mapRequest(r),
		Movement: stockhandler.ToMovementMessage(mv),
	}, nil
}

func (h *ReplenishmentHandler) Delete(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.Empty, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.uc.Delete(ctx, actor, req.ID); err != nil {
		return nil, apperror.ToStatus(err)
	}
	return &inventoryv1.Empty{}, nil
}

func (h *ReplenishmentHandler) Get(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.ReplenishmentRequest, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	r, err := h.uc.Get(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *ReplenishmentHandler) List(ctx context.Context, req *inventoryv1.ListReplenishmentsRequest) (*inventoryv1.ListReplenishmentsResponse, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	rs, count, err := h.uc.List(ctx, &dto.RequestFilters{
		Status:      model.ReplenishmentStatus(req.Status),
		ItemID:      req.ItemID,
		RequestedBy: req.RequestedBy,
		Page:        int(req.Page),
		PageSize:    int(req.PageSize),
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	out := make([]*inventoryv1.ReplenishmentRequest, len(rs))
	for i := range rs {
		out[i] = mapRequest(&rs[i])
	}
	return &inventoryv1.ListReplenishmentsResponse{
		Requests: out,
		Total:    int32(count),
	}, nil
}

func parseCost(field string, s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, apperror.Validation("invalid %s %q", field, *s)
	}
	return &d, nil
}

func mapRequest(m *model.ReplenishmentRequest) *inventoryv1.ReplenishmentRequest {
	if m == nil {
		return nil
	}

	out := &inventoryv1.ReplenishmentRequest{
		ID:                m.ID,
		ItemID:            m.ItemID,
		RequestedQuantity: m.RequestedQuantity,
		ApprovedQuantity:  m.ApprovedQuantity,
		ReceivedQuantity:  m.ReceivedQuantity,
		Priority:          string(m.Priority),
		Reason:            m.Reason,
		SupplierInfo:      deref(m.SupplierInfo),
		Notes:             deref(m.Notes),
		Status:            string(m.Status),
		RequestedBy:       m.RequestedBy,
		ApprovedBy:        deref(m.ApprovedBy),
		ReceivedBy:        deref(m.ReceivedBy),
		CreatedAt:         m.CreatedAt,
		ProcessedAt:       m.ProcessedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.EstimatedCost.Valid {
		out.EstimatedCost = m.EstimatedCost.Decimal.StringFixed(2)
	}
	if m.ActualCost.Valid {
		out.ActualCost = m.ActualCost.Decimal.StringFixed(2)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package handler

import (
	"context"

	inventoryv1 "github.com/fekuna/school-inventory-service/api/inventory/v1"
	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/auth"
	"github.com/fekuna/school-inventory-service/internal/distribution"
	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	stockhandler "github.com/fekuna/school-inventory-service/internal/stock/handler"
	"github.com/fekuna/school-inventory-service/pkg/logger"
)

type DistributionHandler struct {
	uc     distribution.UseCase
	logger logger.ZapLogger
}

func NewDistributionHandler(uc distribution.UseCase, log logger.ZapLogger) *DistributionHandler {
	return &DistributionHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DistributionHandler) Submit(ctx context.Context, req *inventoryv1.SubmitDistributionRequest) (*inventoryv1.DistributionRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.uc.Submit(ctx, actor, &dto.SubmitInput{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		Purpose:  req.Purpose,
		Urgency:  req.Urgency,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *DistributionHandler) Approve(ctx context.Context, req *inventoryv1.ApproveDistributionRequest) (*inventoryv1.DistributionRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.uc.Approve(ctx, actor, &dto.ApproveInput{
		ID:               req.ID,
		ApprovedQuantity: req.ApprovedQuantity,
		Remarks:          req.Remarks,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *DistributionHandler) Reject(ctx context.Context, req *inventoryv1.RejectDistributionRequest) (*inventoryv1.DistributionRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.uc.Reject(ctx, actor, req.ID, req.Remarks)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *DistributionHandler) Distribute(ctx context.Context, req *inventoryv1.DistributeRequest) (*inventoryv1.DistributeResponse, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, mv, err := h.uc.Distribute(ctx, actor, req.ID, req.Remarks)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return &inventoryv1.DistributeResponse{
		Request:  mapRequest(r),
		Movement: stockhandler.ToMovementMessage(mv),
	}, nil
}

func (h *DistributionHandler) Cancel(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.DistributionRequest, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.uc.Cancel(ctx, actor, req.ID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *DistributionHandler) Get(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.DistributionRequest, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	r, err := h.uc.Get(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapRequest(r), nil
}

func (h *DistributionHandler) List(ctx context.Context, req *inventoryv1.ListDistributionsRequest) (*inventoryv1.ListDistributionsResponse, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	rs, count, err := h.uc.List(ctx, &dto.RequestFilters{
		Status:      model.DistributionStatus(req.Status),
		ItemID:      req.ItemID,
		RequesterID: req.RequesterID,
		Page:        int(req.Page),
		PageSize:    int(req.PageSize),
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	out := make([]*inventoryv1.DistributionRequest, len(rs))
	for i := range rs {
		out[i] = mapRequest(&rs[i])
	}
	return &inventoryv1.ListDistributionsResponse{
		Requests: out,
		Total:    int32(count),
	}, nil
}

func mapRequest(m *model.DistributionRequest) *inventoryv1.DistributionRequest {
	if m == nil {
		return nil
	}

	remarks := ""
	if m.Remarks != nil {
		remarks = *m.Remarks
	}
	processedBy := ""
	if m.ProcessedBy != nil {
		processedBy = *m.ProcessedBy
	}

	return &inventoryv1.DistributionRequest{
		ID:                m.ID,
		RequesterID:       m.RequesterID,
		RequesterKind:     string(m.RequesterKind),
		ItemID:            m.ItemID,
		RequestedQuantity: m.RequestedQuantity,
		ApprovedQuantity:  m.ApprovedQuantity,
		Purpose:           m.Purpose,
		Urgency:           string(m.Urgency),
		Status:            string(m.Status),
		Remarks:           remarks,
		ProcessedBy:       processedBy,
		CreatedAt:         m.CreatedAt,
		ProcessedAt:       m.ProcessedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

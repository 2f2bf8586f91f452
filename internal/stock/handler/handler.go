package handler

import (
	"context"

	inventoryv1 "github.com/fekuna/school-inventory-service/api/inventory/v1"
	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/auth"
	itemhandler "github.com/fekuna/school-inventory-service/internal/item/handler"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock"
	"github.com/fekuna/school-inventory-service/internal/stock/dto"
	"github.com/fekuna/school-inventory-service/pkg/logger"
)

type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *StockHandler) AdjustStock(ctx context.Context, req *inventoryv1.AdjustStockRequest) (*inventoryv1.MoveResponse, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.uc.AdjustStock(ctx, actor, &dto.AdjustStockInput{
		ItemID:   req.ItemID,
		Kind:     model.MovementKind(req.Kind),
		Quantity: req.Quantity,
		Reason:   req.Reason,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	return &inventoryv1.MoveResponse{
		Item:     itemhandler.ToItemMessage(res.Item),
		Movement: ToMovementMessage(res.Movement),
	}, nil
}

func (h *StockHandler) ListMovements(ctx context.Context, req *inventoryv1.ListMovementsRequest) (*inventoryv1.ListMovementsResponse, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	mvs, count, err := h.uc.ListMovements(ctx, &dto.MovementFilters{
		ItemID:        req.ItemID,
		Kind:          model.MovementKind(req.Kind),
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Page:          int(req.Page),
		PageSize:      int(req.PageSize),
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	out := make([]*inventoryv1.StockMovement, len(mvs))
	for i := range mvs {
		out[i] = ToMovementMessage(&mvs[i])
	}

	return &inventoryv1.ListMovementsResponse{
		Movements: out,
		Total:     int32(count),
	}, nil
}

func (h *StockHandler) VerifyLedger(ctx context.Context, req *inventoryv1.VerifyLedgerRequest) (*inventoryv1.LedgerReport, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	report, err := h.uc.VerifyLedger(ctx, req.ItemID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	return &inventoryv1.LedgerReport{
		ItemID:           report.ItemID,
		StoredQuantity:   report.StoredQuantity,
		ReplayedQuantity: report.ReplayedQuantity,
		Movements:        int32(report.Movements),
		Consistent:       report.Consistent,
		BrokenMovementID: report.BrokenMovementID,
	}, nil
}

func ToMovementMessage(m *model.StockMovement) *inventoryv1.StockMovement {
	if m == nil {
		return nil
	}

	refType := ""
	if m.ReferenceType != nil {
		refType = *m.ReferenceType
	}
	refID := ""
	if m.ReferenceID != nil {
		refID = *m.ReferenceID
	}

	return &inventoryv1.StockMovement{
		ID:               m.ID,
		Sequence:         m.Sequence,
		ItemID:           m.ItemID,
		Kind:             string(m.Kind),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		ReferenceType:    refType,
		ReferenceID:      refID,
		ActorID:          m.ActorID,
		CreatedAt:        m.CreatedAt,
	}
}

package handler

import (
	"context"

	inventoryv1 "github.com/fekuna/school-inventory-service/api/inventory/v1"
	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/auth"
	"github.com/fekuna/school-inventory-service/internal/item"
	"github.com/fekuna/school-inventory-service/internal/item/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type ItemHandler struct {
	uc     item.UseCase
	logger logger.ZapLogger
}

func NewItemHandler(uc item.UseCase, log logger.ZapLogger) *ItemHandler {
	return &ItemHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ItemHandler) CreateItem(ctx context.Context, req *inventoryv1.CreateItemRequest) (*inventoryv1.Item, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	it, err := h.uc.CreateItem(ctx, actor, &dto.CreateItemInput{
		Code:            req.Code,
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		Location:        req.Location,
		MinimumQuantity: req.MinimumQuantity,
		UnitPrice:       price,
		InitialQuantity: req.InitialQuantity,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return ToItemMessage(it), nil
}

func (h *ItemHandler) GetItem(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.Item, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	it, err := h.uc.GetItem(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return ToItemMessage(it), nil
}

func (h *ItemHandler) ListItems(ctx context.Context, req *inventoryv1.ListItemsRequest) (*inventoryv1.ListItemsResponse, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	items, count, err := h.uc.ListItems(ctx, &dto.ItemFilters{
		CategoryID:  req.CategoryID,
		Status:      model.ItemStatus(req.Status),
		SearchQuery: req.Search,
		Page:        int(req.Page),
		PageSize:    int(req.PageSize),
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	return &inventoryv1.ListItemsResponse{
		Items: toItemMessages(items),
		Total: int32(count),
	}, nil
}

func (h *ItemHandler) UpdateItem(ctx context.Context, req *inventoryv1.UpdateItemRequest) (*inventoryv1.Item, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	it, err := h.uc.UpdateItem(ctx, actor, &dto.UpdateItemInput{
		ID:              req.ID,
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		Location:        req.Location,
		MinimumQuantity: req.MinimumQuantity,
		UnitPrice:       price,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return ToItemMessage(it), nil
}

func (h *ItemHandler) SetItemStatus(ctx context.Context, req *inventoryv1.SetItemStatusRequest) (*inventoryv1.Item, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	it, err := h.uc.SetItemStatus(ctx, actor, req.ID, model.ItemStatus(req.Status))
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return ToItemMessage(it), nil
}

func (h *ItemHandler) ListLowStock(ctx context.Context, req *inventoryv1.ListLowStockRequest) (*inventoryv1.ListLowStockResponse, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	items, err := h.uc.ListLowStock(ctx, &dto.LowStockFilters{
		CategoryID: req.CategoryID,
		Limit:      int(req.Limit),
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return &inventoryv1.ListLowStockResponse{Items: toItemMessages(items)}, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid unit price %q", s)
	}
	return d, nil
}

func toItemMessages(items []model.Item) []*inventoryv1.Item {
	out := make([]*inventoryv1.Item, len(items))
	for i := range items {
		out[i] = ToItemMessage(&items[i])
	}
	return out
}

func ToItemMessage(m *model.Item) *inventoryv1.Item {
	if m == nil {
		return nil
	}

	categoryID := ""
	if m.CategoryID != nil {
		categoryID = *m.CategoryID
	}
	location := ""
	if m.Location != nil {
		location = *m.Location
	}

	return &inventoryv1.Item{
		ID:              m.ID,
		Code:            m.Code,
		Name:            m.Name,
		CategoryID:      categoryID,
		Location:        location,
		Quantity:        m.Quantity,
		MinimumQuantity: m.MinimumQuantity,
		UnitPrice:       m.UnitPrice.StringFixed(2),
		Status:          string(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

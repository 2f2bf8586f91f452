package handler

import (
	"context"

	inventoryv1 "github.com/fekuna/school-inventory-service/api/inventory/v1"
	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/auth"
	"github.com/fekuna/school-inventory-service/internal/category"
	"github.com/fekuna/school-inventory-service/internal/category/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

var _ inventoryv1.CategoryServiceServer = (*CategoryHandler)(nil)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) CreateCategory(ctx context.Context, req *inventoryv1.CreateCategoryRequest) (*inventoryv1.Category, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := h.uc.CreateCategory(ctx, actor, &dto.CreateCategoryInput{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   int(req.SortOrder),
	})
	if err != nil {
		h.logger.Debug("create category rejected", zap.Error(err))
		return nil, apperror.ToStatus(err)
	}
	return mapCategory(cat), nil
}

func (h *CategoryHandler) GetCategory(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.Category, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	cat, err := h.uc.GetCategory(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapCategory(cat), nil
}

func (h *CategoryHandler) ListCategories(ctx context.Context, req *inventoryv1.ListCategoriesRequest) (*inventoryv1.ListCategoriesResponse, error) {
	if _, err := auth.ActorFromContext(ctx); err != nil {
		return nil, err
	}

	filters := &dto.CategoryFilters{
		IncludeChildren: req.IncludeChildren,
		Page:            int(req.Page),
		PageSize:        int(req.PageSize),
	}
	switch {
	case req.ParentID != "":
		filters.ParentID = &req.ParentID
	case req.RootsOnly:
		root := ""
		filters.ParentID = &root
	}
	if req.ActiveOnly {
		active := true
		filters.IsActive = &active
	}

	cats, count, err := h.uc.ListCategories(ctx, filters)
	if err != nil {
		return nil, apperror.ToStatus(err)
	}

	out := make([]*inventoryv1.Category, len(cats))
	for i := range cats {
		out[i] = mapCategory(&cats[i])
	}
	return &inventoryv1.ListCategoriesResponse{Categories: out, Total: int32(count)}, nil
}

func (h *CategoryHandler) UpdateCategory(ctx context.Context, req *inventoryv1.UpdateCategoryRequest) (*inventoryv1.Category, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := h.uc.UpdateCategory(ctx, actor, &dto.UpdateCategoryInput{
		ID:          req.ID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   int(req.SortOrder),
		IsActive:    req.IsActive,
	})
	if err != nil {
		return nil, apperror.ToStatus(err)
	}
	return mapCategory(cat), nil
}

func (h *CategoryHandler) DeleteCategory(ctx context.Context, req *inventoryv1.GetRequest) (*inventoryv1.Empty, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.uc.DeleteCategory(ctx, actor, req.ID); err != nil {
		return nil, apperror.ToStatus(err)
	}
	return &inventoryv1.Empty{}, nil
}

func mapCategory(m *model.Category) *inventoryv1.Category {
	if m == nil {
		return nil
	}

	var children []*inventoryv1.Category
	if len(m.Children) > 0 {
		children = make([]*inventoryv1.Category, len(m.Children))
		for i := range m.Children {
			children[i] = mapCategory(&m.Children[i])
		}
	}

	out := &inventoryv1.Category{
		ID:        m.ID,
		Name:      m.Name,
		SortOrder: int32(m.SortOrder),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Children:  children,
	}
	if m.ParentID != nil {
		out.ParentID = *m.ParentID
	}
	if m.Description != nil {
		out.Description = *m.Description
	}
	return out
}

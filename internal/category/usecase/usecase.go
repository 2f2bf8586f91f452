package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/category"
	"github.com/fekuna/school-inventory-service/internal/category/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	items  category.ItemCounter
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, items category.ItemCounter, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		items:  items,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, actor model.Actor, input *dto.CreateCategoryInput) (*model.Category, error) {
	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not create categories", actor.Kind, actor.ID)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}

	parentID := optional(input.ParentID)
	if parentID != nil {
		if _, err := uc.mustFind(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	cat := &model.Category{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ParentID:    parentID,
		Name:        name,
		Description: optional(input.Description),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.logger.Info("category created", zap.String("category_id", cat.ID), zap.String("name", cat.Name), zap.String("actor_id", actor.ID))
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return uc.mustFind(ctx, id)
}

// ListCategories returns a flat page, or with IncludeChildren the matching roots with their subtrees attached.
func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if !filters.IncludeChildren {
		return uc.repo.FindAll(ctx, filters)
	}

	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{IsActive: filters.IsActive})
	if err != nil {
		return nil, 0, err
	}

	byParent := make(map[string][]model.Category)
	for _, c := range all {
		key := ""
		if c.ParentID != nil {
			key = *c.ParentID
		}
		byParent[key] = append(byParent[key], c)
	}

	root := ""
	if filters.ParentID != nil {
		root = *filters.ParentID
	}
	roots := attachChildren(byParent, root, map[string]bool{})

	total := len(roots)
	if filters.PageSize > 0 {
		start := 0
		if filters.Page > 1 {
			start = (filters.Page - 1) * filters.PageSize
		}
		if start > total {
			start = total
		}
		end := start + filters.PageSize
		if end > total {
			end = total
		}
		roots = roots[start:end]
	}
	return roots, total, nil
}

func attachChildren(byParent map[string][]model.Category, parent string, seen map[string]bool) []model.Category {
	children := byParent[parent]
	out := make([]model.Category, 0, len(children))
	for _, c := range children {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		c.Children = attachChildren(byParent, c.ID, seen)
		out = append(out, c)
	}
	return out
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, actor model.Actor, input *dto.UpdateCategoryInput) (*model.Category, error) {
	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not edit categories", actor.Kind, actor.ID)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}

	cat, err := uc.mustFind(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	parentID := optional(input.ParentID)
	if parentID != nil {
		if err := uc.checkAncestry(ctx, cat.ID, *parentID); err != nil {
			return nil, err
		}
	}

	cat.ParentID = parentID
	cat.Name = name
	cat.Description = optional(input.Description)
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	uc.logger.Info("category updated", zap.String("category_id", cat.ID), zap.String("actor_id", actor.ID))
	return cat, nil
}

// checkAncestry rejects a parent that is the category itself or one of its descendants.
func (uc *categoryUseCase) checkAncestry(ctx context.Context, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return apperror.Validation("category %s cannot be nested under itself", id)
		}
		if seen[cur] {
			break
		}
		seen[cur] = true

		c, err := uc.mustFind(ctx, cur)
		if err != nil {
			return err
		}
		if c.ParentID == nil {
			break
		}
		cur = *c.ParentID
	}
	return nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, actor model.Actor, id string) error {
	if !actor.Kind.CanManageStock() {
		return apperror.Forbidden("%s %s may not delete categories", actor.Kind, actor.ID)
	}
	if _, err := uc.mustFind(ctx, id); err != nil {
		return err
	}

	children, err := uc.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperror.StateConflict("category %s still has %d subcategories", id, children)
	}

	inUse, err := uc.items.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperror.StateConflict("category %s is used by %d items", id, inUse)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("category deleted", zap.String("category_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (uc *categoryUseCase) mustFind(ctx context.Context, id string) (*model.Category, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.NotFound("category %s not found", id)
	}
	return c, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

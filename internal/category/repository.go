package category

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/category/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	CountChildren(ctx context.Context, id string) (int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// ItemCounter reports how many catalog items reference a category.
type ItemCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

package category

import (
	"context"

	"github.com/fekuna/school-inventory-service/internal/category/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, actor model.Actor, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	UpdateCategory(ctx context.Context, actor model.Actor, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, actor model.Actor, id string) error
}

package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/category/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
)

type MemoryRepository struct {
	store      *memory.Store
	categories map[string]model.Category
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{
		store:      store,
		categories: make(map[string]model.Category),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		if r.nameTaken(c) {
			return apperror.Validation("category %s already exists at this level", c.Name)
		}
		r.categories[c.ID] = *c
		tx.OnRollback(func() { delete(r.categories, c.ID) })
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var (
		c  model.Category
		ok bool
	)
	r.store.Read(ctx, func() { c, ok = r.categories[id] })
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	r.store.Read(ctx, func() {
		for _, c := range r.categories {
			if f.ParentID != nil && parentOf(c) != *f.ParentID {
				continue
			}
			if f.IsActive != nil && c.IsActive != *f.IsActive {
				continue
			}
			categories = append(categories, c)
		}
	})
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})

	total := len(categories)
	if f.PageSize > 0 {
		start := offset(f.Page, f.PageSize)
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		categories = categories[start:end]
	}
	return categories, total, nil
}

func (r *MemoryRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	r.store.Read(ctx, func() {
		for _, c := range r.categories {
			if parentOf(c) == id {
				n++
			}
		}
	})
	return n, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c *model.Category) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		prev, ok := r.categories[c.ID]
		if !ok {
			return apperror.NotFound("category %s not found", c.ID)
		}
		if r.nameTaken(c) {
			return apperror.Validation("category %s already exists at this level", c.Name)
		}
		r.categories[c.ID] = *c
		tx.OnRollback(func() { r.categories[c.ID] = prev })
		return nil
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		prev, ok := r.categories[id]
		if !ok {
			return apperror.NotFound("category %s not found", id)
		}
		delete(r.categories, id)
		tx.OnRollback(func() { r.categories[id] = prev })
		return nil
	})
}

// nameTaken mirrors the sibling name index: names are unique per parent, case-insensitively.
func (r *MemoryRepository) nameTaken(c *model.Category) bool {
	for id, other := range r.categories {
		if id != c.ID && parentOf(other) == parentOf(*c) && strings.EqualFold(other.Name, c.Name) {
			return true
		}
	}
	return false
}

func parentOf(c model.Category) string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

func offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/item/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
)

type MemoryRepository struct {
	store *memory.Store
	items map[string]model.Item
	codes map[string]string
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{
		store: store,
		items: make(map[string]model.Item),
		codes: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, it *model.Item) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		if _, ok := r.codes[it.Code]; ok {
			return apperror.Validation("item code %s already exists", it.Code)
		}
		r.items[it.ID] = *it
		r.codes[it.Code] = it.ID
		tx.OnRollback(func() {
			delete(r.items, it.ID)
			delete(r.codes, it.Code)
		})
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	var (
		it model.Item
		ok bool
	)
	r.store.Read(ctx, func() { it, ok = r.items[id] })
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *MemoryRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Item, error) {
	items := make([]model.Item, 0, len(ids))
	r.store.Read(ctx, func() {
		for _, id := range ids {
			if it, ok := r.items[id]; ok {
				items = append(items, it)
			}
		}
	})
	return items, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	search := strings.ToLower(f.SearchQuery)

	var items []model.Item
	r.store.Read(ctx, func() {
		for _, it := range r.items {
			if f.CategoryID != "" && (it.CategoryID == nil || *it.CategoryID != f.CategoryID) {
				continue
			}
			if f.Status != "" && it.Status != f.Status {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(it.Name), search) && !strings.Contains(strings.ToLower(it.Code), search) {
				continue
			}
			items = append(items, it)
		}
	})
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })

	total := len(items)
	if f.PageSize > 0 {
		start := offset(f.Page, f.PageSize)
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		items = items[start:end]
	}
	return items, total, nil
}

func (r *MemoryRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.Item, error) {
	var items []model.Item
	r.store.Read(ctx, func() {
		for _, it := range r.items {
			if !it.IsActive() || !it.IsLowStock() {
				continue
			}
			if f.CategoryID != "" && (it.CategoryID == nil || *it.CategoryID != f.CategoryID) {
				continue
			}
			items = append(items, it)
		}
	})

	sort.Slice(items, func(i, j int) bool {
		if mi, mj := items[i].Margin(), items[j].Margin(); mi != mj {
			return mi < mj
		}
		return items[i].ID < items[j].ID
	})
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func (r *MemoryRepository) IsCodeUnique(ctx context.Context, code string) (bool, error) {
	var taken bool
	r.store.Read(ctx, func() { _, taken = r.codes[code] })
	return !taken, nil
}

func (r *MemoryRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	r.store.Read(ctx, func() {
		for _, it := range r.items {
			if it.CategoryID != nil && *it.CategoryID == categoryID {
				n++
			}
		}
	})
	return n, nil
}

func (r *MemoryRepository) Update(ctx context.Context, it *model.Item) error {
	return r.modify(ctx, it.ID, func(cur *model.Item) {
		cur.Name = it.Name
		cur.CategoryID = it.CategoryID
		cur.Location = it.Location
		cur.MinimumQuantity = it.MinimumQuantity
		cur.UnitPrice = it.UnitPrice
		cur.UpdatedAt = it.UpdatedAt
	})
}

func (r *MemoryRepository) SetStatus(ctx context.Context, id string, status model.ItemStatus, at time.Time) error {
	return r.modify(ctx, id, func(cur *model.Item) {
		cur.Status = status
		cur.UpdatedAt = at
	})
}

// CompareAndSetQuantity is the ledger's write path into the item table.
func (r *MemoryRepository) CompareAndSetQuantity(ctx context.Context, id string, expected, next int64, at time.Time) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		cur, ok := r.items[id]
		if !ok || cur.Quantity != expected {
			return apperror.ErrStaleWrite
		}
		prev := cur
		cur.Quantity = next
		cur.UpdatedAt = at
		r.items[id] = cur
		tx.OnRollback(func() { r.items[id] = prev })
		return nil
	})
}

func (r *MemoryRepository) modify(ctx context.Context, id string, fn func(cur *model.Item)) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		cur, ok := r.items[id]
		if !ok {
			return apperror.NotFound("item %s not found", id)
		}
		prev := cur
		fn(&cur)
		r.items[id] = cur
		tx.OnRollback(func() { r.items[id] = prev })
		return nil
	})
}

func offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

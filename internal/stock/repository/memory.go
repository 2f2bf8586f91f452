package repository

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock/dto"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
)

// ItemTable is the slice of the in-memory item repository the ledger needs.
type ItemTable interface {
	FindByID(ctx context.Context, id string) (*model.Item, error)
	CompareAndSetQuantity(ctx context.Context, id string, expected, next int64, at time.Time) error
}

type MemoryRepository struct {
	store     *memory.Store
	items     ItemTable
	movements []model.StockMovement
}

func NewMemoryRepository(store *memory.Store, items ItemTable) *MemoryRepository {
	return &MemoryRepository{store: store, items: items}
}

func (r *MemoryRepository) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	return r.items.FindByID(ctx, itemID)
}

func (r *MemoryRepository) CompareAndSetQuantity(ctx context.Context, itemID string, expected, next int64, at time.Time) error {
	return r.items.CompareAndSetQuantity(ctx, itemID, expected, next, at)
}

func (r *MemoryRepository) AppendMovement(ctx context.Context, m *model.StockMovement) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		m.Sequence = r.store.NextSequence()
		n := len(r.movements)
		r.movements = append(r.movements, *m)
		tx.OnRollback(func() { r.movements = r.movements[:n] })
		return nil
	})
}

func (r *MemoryRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var matched []model.StockMovement
	r.store.Read(ctx, func() {
		for _, m := range r.movements {
			if f.ItemID != "" && m.ItemID != f.ItemID {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.ReferenceType != "" && (m.ReferenceType == nil || *m.ReferenceType != f.ReferenceType) {
				continue
			}
			if f.ReferenceID != "" && (m.ReferenceID == nil || *m.ReferenceID != f.ReferenceID) {
				continue
			}
			matched = append(matched, m)
		}
	})

	sort.Slice(matched, func(i, j int) bool { return matched[i].Sequence > matched[j].Sequence })

	total := len(matched)
	if f.PageSize > 0 {
		start := offset(f.Page, f.PageSize)
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *MemoryRepository) ItemMovements(ctx context.Context, itemID string) ([]model.StockMovement, error) {
	var out []model.StockMovement
	r.store.Read(ctx, func() {
		for _, m := range r.movements {
			if m.ItemID == itemID {
				out = append(out, m)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

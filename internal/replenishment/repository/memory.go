package repository

import (
	"context"
	"slices"
	"sort"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
)

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

type MemoryRepository struct {
	store    *memory.Store
	requests map[string]model.ReplenishmentRequest
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{
		store:    store,
		requests: make(map[string]model.ReplenishmentRequest),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, req *model.ReplenishmentRequest) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		r.requests[req.ID] = *req
		tx.OnRollback(func() { delete(r.requests, req.ID) })
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.ReplenishmentRequest, error) {
	var (
		req model.ReplenishmentRequest
		ok  bool
	)
	r.store.Read(ctx, func() { req, ok = r.requests[id] })
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.RequestFilters) ([]model.ReplenishmentRequest, int, error) {
	var out []model.ReplenishmentRequest
	r.store.Read(ctx, func() {
		for _, req := range r.requests {
			if f.Status != "" && req.Status != f.Status {
				continue
			}
			if f.ItemID != "" && req.ItemID != f.ItemID {
				continue
			}
			if f.RequestedBy != "" && req.RequestedBy != f.RequestedBy {
				continue
			}
			out = append(out, req)
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if pi, pj := priorityRank[out[i].Priority], priorityRank[out[j].Priority]; pi != pj {
			return pi < pj
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	total := len(out)
	if f.PageSize > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.PageSize
		}
		start = min(start, total)
		out = out[start:min(start+f.PageSize, total)]
	}
	return out, total, nil
}

func (r *MemoryRepository) Transition(ctx context.Context, req *model.ReplenishmentRequest, from model.ReplenishmentStatus) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		cur, ok := r.requests[req.ID]
		if !ok || cur.Status != from {
			return apperror.ErrStaleWrite
		}
		next := cur
		next.Status = req.Status
		next.ApprovedQuantity = req.ApprovedQuantity
		next.ReceivedQuantity = req.ReceivedQuantity
		next.ActualCost = req.ActualCost
		next.Notes = req.Notes
		next.ApprovedBy = req.ApprovedBy
		next.ReceivedBy = req.ReceivedBy
		next.ProcessedAt = req.ProcessedAt
		next.UpdatedAt = req.UpdatedAt
		r.requests[req.ID] = next
		tx.OnRollback(func() { r.requests[req.ID] = cur })
		return nil
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, id string, allowed ...model.ReplenishmentStatus) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		cur, ok := r.requests[id]
		if !ok || !slices.Contains(allowed, cur.Status) {
			return apperror.ErrStaleWrite
		}
		delete(r.requests, id)
		tx.OnRollback(func() { r.requests[id] = cur })
		return nil
	})
}

package repository

import (
	"context"
	"sort"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/database/memory"
)

type MemoryRepository struct {
	store    *memory.Store
	requests map[string]model.DistributionRequest
}

func NewMemoryRepository(store *memory.Store) *MemoryRepository {
	return &MemoryRepository{
		store:    store,
		requests: make(map[string]model.DistributionRequest),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, req *model.DistributionRequest) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		if req.Status == model.DistributionPending && r.hasPending(req.RequesterID, req.ItemID) {
			return apperror.DuplicatePending("requester %s already has a pending request for item %s", req.RequesterID, req.ItemID)
		}
		r.requests[req.ID] = *req
		tx.OnRollback(func() { delete(r.requests, req.ID) })
		return nil
	})
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.DistributionRequest, error) {
	var (
		req model.DistributionRequest
		ok  bool
	)
	r.store.Read(ctx, func() { req, ok = r.requests[id] })
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.RequestFilters) ([]model.DistributionRequest, int, error) {
	var out []model.DistributionRequest
	r.store.Read(ctx, func() {
		for _, req := range r.requests {
			if f.Status != "" && req.Status != f.Status {
				continue
			}
			if f.ItemID != "" && req.ItemID != f.ItemID {
				continue
			}
			if f.RequesterID != "" && req.RequesterID != f.RequesterID {
				continue
			}
			out = append(out, req)
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	total := len(out)
	if f.PageSize > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.PageSize
		}
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *MemoryRepository) HasPending(ctx context.Context, requesterID, itemID string) (bool, error) {
	var found bool
	r.store.Read(ctx, func() { found = r.hasPending(requesterID, itemID) })
	return found, nil
}

func (r *MemoryRepository) hasPending(requesterID, itemID string) bool {
	for _, req := range r.requests {
		if req.RequesterID == requesterID && req.ItemID == itemID && req.Status == model.DistributionPending {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Transition(ctx context.Context, req *model.DistributionRequest, from model.DistributionStatus) error {
	return r.store.Write(ctx, func(tx *memory.Tx) error {
		cur, ok := r.requests[req.ID]
		if !ok || cur.Status != from {
			return apperror.ErrStaleWrite
		}
		next := cur
		next.Status = req.Status
		next.ApprovedQuantity = req.ApprovedQuantity
		next.Remarks = req.Remarks
		next.ProcessedBy = req.ProcessedBy
		next.ProcessedAt = req.ProcessedAt
		next.UpdatedAt = req.UpdatedAt
		r.requests[req.ID] = next
		tx.OnRollback(func() { r.requests[req.ID] = cur })
		return nil
	})
}

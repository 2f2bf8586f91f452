package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/item"
	"github.com/fekuna/school-inventory-service/internal/item/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock"
	stockdto "github.com/fekuna/school-inventory-service/internal/stock/dto"
	"github.com/fekuna/school-inventory-service/pkg/cache"
	"github.com/fekuna/school-inventory-service/pkg/database"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/fekuna/school-inventory-service/pkg/search"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultIndexTimeout bounds a background write to the search index.
const defaultIndexTimeout = 5 * time.Second

const indexMapping = `{
	"mappings": {
		"properties": {
			"code": { "type": "keyword" },
			"name": { "type": "text" },
			"category_id": { "type": "keyword" },
			"location": { "type": "text" },
			"status": { "type": "keyword" }
		}
	}
}`

type itemDocument struct {
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	CategoryID *string          `json:"category_id,omitempty"`
	Location   *string          `json:"location,omitempty"`
	Status     model.ItemStatus `json:"status"`
}

type itemUseCase struct {
	repo     item.Repository
	stock    stock.UseCase
	txm      database.TxManager
	cache    cache.Cache
	cacheTTL time.Duration
	es       *search.Client
	index    string
	logger   logger.ZapLogger

	indexTimeout time.Duration
}

// NewItemUseCase builds the catalog. es may be nil, in which case searches go to storage.
func NewItemUseCase(
	repo item.Repository,
	stockUC stock.UseCase,
	txm database.TxManager,
	c cache.Cache,
	cacheTTL time.Duration,
	es *search.Client,
	index string,
	log logger.ZapLogger,
) item.UseCase {
	if cacheTTL <= 0 {
		cacheTTL = item.DefaultCacheTTL
	}
	return &itemUseCase{
		repo:     repo,
		stock:    stockUC,
		txm:      txm,
		cache:    c,
		cacheTTL: cacheTTL,
		es:       es,
		index:    index,
		logger:   log,

		indexTimeout: defaultIndexTimeout,
	}
}

func (uc *itemUseCase) CreateItem(ctx context.Context, actor model.Actor, input *dto.CreateItemInput) (*model.Item, error) {
	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not create items", actor.Kind, actor.ID)
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, apperror.Validation("item code is required")
	}
	if err := validateMetadata(input.Name, input.MinimumQuantity, input.UnitPrice); err != nil {
		return nil, err
	}
	if input.InitialQuantity < 0 {
		return nil, apperror.Validation("initial quantity must not be negative")
	}

	unique, err := uc.repo.IsCodeUnique(ctx, code)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperror.Validation("item code %s already exists", code)
	}

	now := time.Now().UTC()
	it := &model.Item{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Code:            code,
		Name:            strings.TrimSpace(input.Name),
		CategoryID:      optional(input.CategoryID),
		Location:        optional(input.Location),
		Quantity:        0,
		MinimumQuantity: input.MinimumQuantity,
		UnitPrice:       input.UnitPrice,
		Status:          model.ItemStatusActive,
	}

	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.Create(ctx, it); err != nil {
			return err
		}
		if input.InitialQuantity == 0 {
			return nil
		}
		res, err := uc.stock.ApplyDelta(ctx, &stockdto.MoveInput{
			ItemID:        it.ID,
			Kind:          model.MovementCredit,
			Quantity:      input.InitialQuantity,
			Reason:        fmt.Sprintf("initial stock for item %s", it.Code),
			ReferenceType: model.ReferenceInitialStock,
			ReferenceID:   it.ID,
			ActorID:       actor.ID,
		})
		if err != nil {
			return err
		}
		it = res.Item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("item created",
		zap.String("item_id", it.ID),
		zap.String("code", it.Code),
		zap.Int64("quantity", it.Quantity),
		zap.String("actor_id", actor.ID),
	)

	go uc.indexInBackground(it)

	return it, nil
}

func (uc *itemUseCase) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var cached model.Item
	hit, err := uc.cache.GetJSON(ctx, item.CacheKey(id), &cached)
	if err != nil {
		uc.logger.Warn("item cache read failed", zap.String("item_id", id), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	it, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperror.NotFound("item %s not found", id)
	}

	if err := uc.cache.SetJSON(ctx, item.CacheKey(id), it, uc.cacheTTL); err != nil {
		uc.logger.Warn("item cache write failed", zap.String("item_id", id), zap.Error(err))
	}
	return it, nil
}

func (uc *itemUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.Validation("unknown item status %q", filters.Status)
	}

	if filters.SearchQuery != "" && uc.es != nil {
		items, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return items, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.FindAll(ctx, filters)
}

func (uc *itemUseCase) searchElastic(ctx context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	filter := []map[string]any{}
	if f.CategoryID != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"category_id": f.CategoryID}})
	}
	if f.Status != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"status": f.Status}})
	}

	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{
						"query_string": map[string]any{
							"query":  fmt.Sprintf("*%s*", f.SearchQuery),
							"fields": []string{"name^3", "code", "location"},
						},
					},
				},
				"filter": filter,
			},
		},
		"track_total_hits": true,
	}
	if f.PageSize > 0 && f.Page > 1 {
		q["from"] = (f.Page - 1) * f.PageSize
	}

	size := f.PageSize
	if size <= 0 {
		size = 100
	}
	ids, total, err := uc.es.SearchIDs(ctx, uc.index, q, size)
	if err != nil {
		return nil, 0, err
	}
	items, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *itemUseCase) ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.Item, error) {
	return uc.repo.ListLowStock(ctx, filters)
}

func (uc *itemUseCase) UpdateItem(ctx context.Context, actor model.Actor, input *dto.UpdateItemInput) (*model.Item, error) {
	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not edit items", actor.Kind, actor.ID)
	}
	if err := validateMetadata(input.Name, input.MinimumQuantity, input.UnitPrice); err != nil {
		return nil, err
	}

	it, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperror.NotFound("item %s not found", input.ID)
	}

	it.Name = strings.TrimSpace(input.Name)
	it.CategoryID = optional(input.CategoryID)
	it.Location = optional(input.Location)
	it.MinimumQuantity = input.MinimumQuantity
	it.UnitPrice = input.UnitPrice
	it.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, it); err != nil {
		return nil, err
	}

	// Re-read so the returned quantity is whatever the ledger holds now.
	if fresh, err := uc.repo.FindByID(ctx, it.ID); err == nil && fresh != nil {
		it = fresh
	}

	uc.invalidate(ctx, it.ID)
	go uc.indexInBackground(it)

	uc.logger.Info("item updated", zap.String("item_id", it.ID), zap.String("actor_id", actor.ID))
	return it, nil
}

func (uc *itemUseCase) SetItemStatus(ctx context.Context, actor model.Actor, id string, status model.ItemStatus) (*model.Item, error) {
	if !actor.Kind.CanManageStock() {
		return nil, apperror.Forbidden("%s %s may not change item status", actor.Kind, actor.ID)
	}
	if !status.Valid() {
		return nil, apperror.Validation("unknown item status %q", status)
	}

	it, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperror.NotFound("item %s not found", id)
	}
	if it.Status == status {
		return it, nil
	}

	now := time.Now().UTC()
	if err := uc.repo.SetStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	it.Status = status
	it.UpdatedAt = now

	uc.invalidate(ctx, id)
	go uc.indexInBackground(it)

	uc.logger.Info("item status changed",
		zap.String("item_id", id),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.ID),
	)
	return it, nil
}

func (uc *itemUseCase) invalidate(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, item.CacheKey(id)); err != nil {
		uc.logger.Warn("failed to evict item cache", zap.String("item_id", id), zap.Error(err))
	}
}

// indexInBackground mirrors it into the search index without holding up the caller.
func (uc *itemUseCase) indexInBackground(it *model.Item) {
	if uc.es == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), uc.indexTimeout)
	defer cancel()
	uc.syncToElastic(ctx, it)
}

func (uc *itemUseCase) syncToElastic(ctx context.Context, it *model.Item) {
	if uc.es == nil {
		return
	}

	if err := uc.es.EnsureIndex(ctx, uc.index, indexMapping); err != nil {
		uc.logger.Error("failed to ensure item index", zap.Error(err))
		return
	}

	doc := itemDocument{
		Code:       it.Code,
		Name:       it.Name,
		CategoryID: it.CategoryID,
		Location:   it.Location,
		Status:     it.Status,
	}
	if err := uc.es.Index(ctx, uc.index, it.ID, doc); err != nil {
		uc.logger.Error("failed to index item", zap.String("item_id", it.ID), zap.Error(err))
	}
}

func validateMetadata(name string, minimum int64, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return apperror.Validation("item name is required")
	}
	if minimum < 0 {
		return apperror.Validation("minimum quantity must not be negative")
	}
	if price.IsNegative() {
		return apperror.Validation("unit price must not be negative")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

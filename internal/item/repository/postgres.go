package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/item/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const codeConstraint = "items_code_key"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, it *model.Item) error {
	query := `
        INSERT INTO items (
            id, code, name, category_id, location, quantity, minimum_quantity,
            unit_price, status, created_at, updated_at
        )
        VALUES (
            :id, :code, :name, :category_id, :location, :quantity, :minimum_quantity,
            :unit_price, :status, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Executor(ctx, r.DB), query, it)
	if err != nil {
		if postgres.IsUniqueViolation(err, codeConstraint) {
			return apperror.Validation("item code %s already exists", it.Code)
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &it, `SELECT * FROM items WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find item %s: %w", id, err)
	}
	return &it, nil
}

// FindByIDs returns the items in the order of ids, skipping unknown ones.
func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var found []model.Item
	if err := sqlx.SelectContext(ctx, postgres.Executor(ctx, r.DB), &found, query, args...); err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}

	byID := make(map[string]model.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	items := make([]model.Item, 0, len(found))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR code ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := postgres.Executor(ctx, r.DB)

	countQuery, countArgs, err := ext.BindNamed("SELECT count(*) FROM items"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, ext, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query := "SELECT * FROM items" + whereClause + " ORDER BY code ASC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset(f.Page, f.PageSize))
	}
	query, listArgs, err := ext.BindNamed(query, args)
	if err != nil {
		return nil, 0, err
	}

	var items []model.Item
	if err := sqlx.SelectContext(ctx, ext, &items, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.Item, error) {
	query := `SELECT * FROM items WHERE status = 'active' AND quantity <= minimum_quantity`
	args := []interface{}{}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	query += " ORDER BY (quantity - minimum_quantity) ASC, id ASC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	var items []model.Item
	if err := sqlx.SelectContext(ctx, postgres.Executor(ctx, r.DB), &items, query, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

func (r *PGRepository) IsCodeUnique(ctx context.Context, code string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &count, `SELECT count(*) FROM items WHERE code = $1`, code)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &count, `SELECT count(*) FROM items WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("count items in category: %w", err)
	}
	return count, nil
}

func (r *PGRepository) Update(ctx context.Context, it *model.Item) error {
	query := `
        UPDATE items SET
            name = :name,
            category_id = :category_id,
            location = :location,
            minimum_quantity = :minimum_quantity,
            unit_price = :unit_price,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := sqlx.NamedExecContext(ctx, postgres.Executor(ctx, r.DB), query, it)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return expectOne(res, it.ID)
}

func (r *PGRepository) SetStatus(ctx context.Context, id string, status model.ItemStatus, at time.Time) error {
	res, err := postgres.Executor(ctx, r.DB).ExecContext(ctx,
		`UPDATE items SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	if err != nil {
		return fmt.Errorf("set item status: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("item %s not found", id)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/category/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const siblingNameIndex = "categories_sibling_name_idx"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, parent_id, name, description, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :parent_id, :name, :description, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Executor(ctx, r.DB), query, c)
	if err != nil {
		if postgres.IsUniqueViolation(err, siblingNameIndex) {
			return apperror.Validation("category %s already exists at this level", c.Name)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &c, `SELECT * FROM categories WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	return &c, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := postgres.Executor(ctx, r.DB)

	countQuery, countArgs, err := ext.BindNamed("SELECT count(*) FROM categories"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, ext, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY sort_order ASC, name ASC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset(f.Page, f.PageSize))
	}
	query, listArgs, err := ext.BindNamed(query, args)
	if err != nil {
		return nil, 0, err
	}

	var categories []model.Category
	if err := sqlx.SelectContext(ctx, ext, &categories, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return categories, count, nil
}

func (r *PGRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &count, `SELECT count(*) FROM categories WHERE parent_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("count child categories: %w", err)
	}
	return count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories SET
            parent_id = :parent_id,
            name = :name,
            description = :description,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := sqlx.NamedExecContext(ctx, postgres.Executor(ctx, r.DB), query, c)
	if err != nil {
		if postgres.IsUniqueViolation(err, siblingNameIndex) {
			return apperror.Validation("category %s already exists at this level", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}
	return expectOne(res, c.ID)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := postgres.Executor(ctx, r.DB).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("category %s not found", id)
	}
	return nil
}

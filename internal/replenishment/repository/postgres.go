package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, req *model.ReplenishmentRequest) error {
	query := `
        INSERT INTO replenishment_requests (
            id, item_id, requested_quantity, approved_quantity, received_quantity, priority, reason,
            supplier_info, estimated_cost, actual_cost, notes, status, requested_by, approved_by,
            received_by, created_at, processed_at, updated_at
        )
        VALUES (
            :id, :item_id, :requested_quantity, :approved_quantity, :received_quantity, :priority, :reason,
            :supplier_info, :estimated_cost, :actual_cost, :notes, :status, :requested_by, :approved_by,
            :received_by, :created_at, :processed_at, :updated_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, postgres.Executor(ctx, r.DB), query, req); err != nil {
		return fmt.Errorf("create replenishment request: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.ReplenishmentRequest, error) {
	var req model.ReplenishmentRequest
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &req,
		`SELECT * FROM replenishment_requests WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find replenishment request %s: %w", id, err)
	}
	return &req, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.RequestFilters) ([]model.ReplenishmentRequest, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.RequestedBy != "" {
		conditions = append(conditions, "requested_by = :requested_by")
		args["requested_by"] = f.RequestedBy
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := postgres.Executor(ctx, r.DB)

	countQuery, countArgs, err := ext.BindNamed("SELECT count(*) FROM replenishment_requests"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, ext, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count replenishment requests: %w", err)
	}

	// High priority first, then oldest first within a priority.
	query := "SELECT * FROM replenishment_requests" + whereClause + `
        ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at ASC, id ASC`
	if f.PageSize > 0 {
		offset := 0
		if f.Page > 1 {
			offset = (f.Page - 1) * f.PageSize
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}
	query, listArgs, err := ext.BindNamed(query, args)
	if err != nil {
		return nil, 0, err
	}

	var items []model.ReplenishmentRequest
	if err := sqlx.SelectContext(ctx, ext, &items, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list replenishment requests: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) Transition(ctx context.Context, req *model.ReplenishmentRequest, from model.ReplenishmentStatus) error {
	res, err := postgres.Executor(ctx, r.DB).ExecContext(ctx, `
        UPDATE replenishment_requests SET
            status = $1,
            approved_quantity = $2,
            received_quantity = $3,
            actual_cost = $4,
            notes = $5,
            approved_by = $6,
            received_by = $7,
            processed_at = $8,
            updated_at = $9
        WHERE id = $10 AND status = $11`,
		req.Status, req.ApprovedQuantity, req.ReceivedQuantity, req.ActualCost, req.Notes,
		req.ApprovedBy, req.ReceivedBy, req.ProcessedAt, req.UpdatedAt,
		req.ID, from)
	if err != nil {
		return fmt.Errorf("transition replenishment request %s: %w", req.ID, err)
	}
	return expectOne(res)
}

func (r *PGRepository) Delete(ctx context.Context, id string, allowed ...model.ReplenishmentStatus) error {
	query, args, err := sqlx.In(`DELETE FROM replenishment_requests WHERE id = ? AND status IN (?)`, id, allowed)
	if err != nil {
		return err
	}
	res, err := postgres.Executor(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("delete replenishment request %s: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.ErrStaleWrite
	}
	return nil
}

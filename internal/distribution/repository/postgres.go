package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/distribution/dto"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const onePendingConstraint = "distribution_requests_one_pending_idx"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, req *model.DistributionRequest) error {
	query := `
        INSERT INTO distribution_requests (
            id, requester_id, requester_kind, item_id, requested_quantity, approved_quantity,
            purpose, urgency, status, remarks, processed_by, created_at, processed_at, updated_at
        )
        VALUES (
            :id, :requester_id, :requester_kind, :item_id, :requested_quantity, :approved_quantity,
            :purpose, :urgency, :status, :remarks, :processed_by, :created_at, :processed_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Executor(ctx, r.DB), query, req)
	if err != nil {
		if postgres.IsUniqueViolation(err, onePendingConstraint) {
			return apperror.DuplicatePending("requester %s already has a pending request for item %s", req.RequesterID, req.ItemID)
		}
		return fmt.Errorf("create distribution request: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.DistributionRequest, error) {
	var req model.DistributionRequest
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &req,
		`SELECT * FROM distribution_requests WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find distribution request %s: %w", id, err)
	}
	return &req, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.RequestFilters) ([]model.DistributionRequest, int, error) {
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
	if f.RequesterID != "" {
		conditions = append(conditions, "requester_id = :requester_id")
		args["requester_id"] = f.RequesterID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := postgres.Executor(ctx, r.DB)

	countQuery, countArgs, err := ext.BindNamed("SELECT count(*) FROM distribution_requests"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, ext, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count distribution requests: %w", err)
	}

	query := "SELECT * FROM distribution_requests" + whereClause + " ORDER BY created_at DESC, id ASC"
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

	var items []model.DistributionRequest
	if err := sqlx.SelectContext(ctx, ext, &items, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list distribution requests: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) HasPending(ctx context.Context, requesterID, itemID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &exists, `
        SELECT EXISTS (
            SELECT 1 FROM distribution_requests
            WHERE requester_id = $1 AND item_id = $2 AND status = 'pending'
        )`, requesterID, itemID)
	if err != nil {
		return false, fmt.Errorf("check pending distribution: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) Transition(ctx context.Context, req *model.DistributionRequest, from model.DistributionStatus) error {
	res, err := postgres.Executor(ctx, r.DB).ExecContext(ctx, `
        UPDATE distribution_requests SET
            status = $1,
            approved_quantity = $2,
            remarks = $3,
            processed_by = $4,
            processed_at = $5,
            updated_at = $6
        WHERE id = $7 AND status = $8`,
		req.Status, req.ApprovedQuantity, req.Remarks, req.ProcessedBy, req.ProcessedAt, req.UpdatedAt,
		req.ID, from)
	if err != nil {
		return fmt.Errorf("transition distribution request %s: %w", req.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.ErrStaleWrite
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/stock/dto"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// GetItem locks the item row for the rest of the surrounding transaction.
func (r *PGRepository) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	var it model.Item
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &it,
		`SELECT * FROM items WHERE id = $1 FOR UPDATE`, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return &it, nil
}

func (r *PGRepository) CompareAndSetQuantity(ctx context.Context, itemID string, expected, next int64, at time.Time) error {
	res, err := postgres.Executor(ctx, r.DB).ExecContext(ctx,
		`UPDATE items SET quantity = $1, updated_at = $2 WHERE id = $3 AND quantity = $4`,
		next, at, itemID, expected)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
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

func (r *PGRepository) AppendMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, item_id, kind, quantity, previous_quantity, new_quantity,
            reason, reference_type, reference_id, actor_id, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING sequence
    `
	err := sqlx.GetContext(ctx, postgres.Executor(ctx, r.DB), &m.Sequence, query,
		m.ID, m.ItemID, m.Kind, m.Quantity, m.PreviousQuantity, m.NewQuantity,
		m.Reason, m.ReferenceType, m.ReferenceID, m.ActorID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.Kind != "" {
		conditions = append(conditions, "kind = :kind")
		args["kind"] = f.Kind
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := postgres.Executor(ctx, r.DB)

	countQuery, countArgs, err := ext.BindNamed("SELECT count(*) FROM stock_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, ext, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY sequence DESC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset(f.Page, f.PageSize))
	}
	query, listArgs, err := ext.BindNamed(query, args)
	if err != nil {
		return nil, 0, err
	}

	var items []model.StockMovement
	if err := sqlx.SelectContext(ctx, ext, &items, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) ItemMovements(ctx context.Context, itemID string) ([]model.StockMovement, error) {
	var items []model.StockMovement
	err := sqlx.SelectContext(ctx, postgres.Executor(ctx, r.DB), &items,
		`SELECT * FROM stock_movements WHERE item_id = $1 ORDER BY sequence ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("item movements: %w", err)
	}
	return items, nil
}

func offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

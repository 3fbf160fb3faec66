package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batchplan-api/internal/models"
)

// BatchRepository reads batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// List returns batches with their member counts, newest year first.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.BatchSummary, error) {
	var query strings.Builder
	query.WriteString(`
SELECT b.id, b.name, b.year, b.is_active, b.created_at, COUNT(s.user_id) AS student_count
FROM batches b
LEFT JOIN students s ON s.batch_id = b.id
WHERE 1=1`)

	var args []interface{}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		fmt.Fprintf(&query, " AND b.year = $%d", len(args))
	}
	if filter.ActiveOnly {
		query.WriteString(" AND b.is_active = TRUE")
	}
	query.WriteString(`
GROUP BY b.id
ORDER BY b.year DESC, b.created_at ASC, b.name ASC`)

	var items []models.BatchSummary
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return items, nil
}

// FindByID returns sql.ErrNoRows when the batch does not exist.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, name, year, is_active, created_at FROM batches WHERE id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &batch, nil
}

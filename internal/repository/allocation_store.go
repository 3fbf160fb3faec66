package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batchplan-api/internal/models"
	"github.com/noah-isme/batchplan-api/internal/service"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/database"
)

const unassignedStudentsQuery = `
SELECT s.user_id, s.enrollment_id, u.full_name, s.course, s.year, s.batch_id, s.created_at
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.year = $1 AND s.batch_id IS NULL
ORDER BY s.created_at ASC, s.user_id ASC`

// AllocationStore is the Postgres persistence used by the batch allocator.
type AllocationStore struct {
	db *sqlx.DB
}

// NewAllocationStore constructs the store.
func NewAllocationStore(db *sqlx.DB) *AllocationStore {
	return &AllocationStore{db: db}
}

// FetchUnassignedStudents returns the pool of year in registration order.
func (r *AllocationStore) FetchUnassignedStudents(ctx context.Context, year int) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, unassignedStudentsQuery, year); err != nil {
		return nil, fmt.Errorf("fetch unassigned students: %w", err)
	}
	return students, nil
}

// CountBatchesByYear returns how many batches already exist for year.
func (r *AllocationStore) CountBatchesByYear(ctx context.Context, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM batches WHERE year = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, year); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return count, nil
}

// WithinTx runs fn against a single transaction.
func (r *AllocationStore) WithinTx(ctx context.Context, fn func(tx service.AllocationTx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&allocationTx{tx: tx})
	})
}

type allocationTx struct {
	tx *sqlx.Tx
}

func (t *allocationTx) CreateBatch(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO batches (id, name, year, is_active, created_at)
		VALUES (:id, :name, :year, :is_active, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// SetStudentBatch only claims students that are still unassigned.
func (t *allocationTx) SetStudentBatch(ctx context.Context, studentID, batchID string) error {
	const query = `UPDATE students SET batch_id = $1 WHERE user_id = $2 AND batch_id IS NULL`
	result, err := t.tx.ExecContext(ctx, query, batchID, studentID)
	if err != nil {
		return fmt.Errorf("assign student batch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check assigned student rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrStudentAlreadyAssigned, fmt.Sprintf("student %s already belongs to a batch", studentID))
	}
	return nil
}

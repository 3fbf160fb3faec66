package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

const markColumns = "id, student_id, batch_id, subject, week_number, year, score, submitted_by, submitted_at"

// MarkRepository persists weekly student marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Create stores a mark. A second mark for the same student, subject and week is a conflict.
func (r *MarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.SubmittedAt.IsZero() {
		mark.SubmittedAt = time.Now().UTC()
	}
	query := `INSERT INTO marks (` + markColumns + `)
		VALUES (:id, :student_id, :batch_id, :subject, :week_number, :year, :score, :submitted_by, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "marks already recorded for this week")
		}
		return fmt.Errorf("create mark: %w", err)
	}
	return nil
}

// ListByStudent returns the marks of a student in year ordered by week.
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID string, year int) ([]models.Mark, error) {
	query := `SELECT ` + markColumns + ` FROM marks WHERE student_id = $1 AND year = $2 ORDER BY week_number ASC, subject ASC`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, studentID, year); err != nil {
		return nil, fmt.Errorf("list student marks: %w", err)
	}
	return marks, nil
}

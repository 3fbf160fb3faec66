package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

const uniqueViolation = "23505"

// FacultyAssignmentRepository persists faculty-batch supervision links.
type FacultyAssignmentRepository struct {
	db *sqlx.DB
}

// NewFacultyAssignmentRepository constructs the repository.
func NewFacultyAssignmentRepository(db *sqlx.DB) *FacultyAssignmentRepository {
	return &FacultyAssignmentRepository{db: db}
}

// CountFacultyAssignments lists every active faculty member with their assignment count
// for year. Members without assignments report zero. Rows follow roster order.
func (r *FacultyAssignmentRepository) CountFacultyAssignments(ctx context.Context, year int) ([]models.FacultyLoad, error) {
	const query = `
SELECT f.user_id AS faculty_id, COUNT(fa.id) AS assignment_count
FROM faculty f
JOIN users u ON u.id = f.user_id AND u.active = TRUE
LEFT JOIN faculty_assignments fa ON fa.faculty_id = f.user_id AND fa.year = $1
GROUP BY f.user_id, f.created_at
ORDER BY f.created_at ASC, f.user_id ASC`
	var loads []models.FacultyLoad
	if err := r.db.SelectContext(ctx, &loads, query, year); err != nil {
		return nil, fmt.Errorf("count faculty assignments: %w", err)
	}
	return loads, nil
}

// FacultyAssignmentExists checks the (faculty, batch) pair.
func (r *FacultyAssignmentRepository) FacultyAssignmentExists(ctx context.Context, facultyID, batchID string) (bool, error) {
	const query = `SELECT 1 FROM faculty_assignments WHERE faculty_id = $1 AND batch_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, facultyID, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check faculty assignment: %w", err)
	}
	return true, nil
}

// CreateFacultyAssignment inserts the link. A unique violation on (faculty_id, batch_id)
// surfaces as ErrDuplicateAssignment.
func (r *FacultyAssignmentRepository) CreateFacultyAssignment(ctx context.Context, assignment *models.FacultyAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO faculty_assignments (id, faculty_id, batch_id, year, assigned_at)
		VALUES (:id, :faculty_id, :batch_id, :year, :assigned_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrDuplicateAssignment.Code, appErrors.ErrDuplicateAssignment.Status, appErrors.ErrDuplicateAssignment.Message)
		}
		return fmt.Errorf("create faculty assignment: %w", err)
	}
	return nil
}

const assignmentDetailSelect = `
SELECT fa.id, fa.faculty_id, fa.batch_id, fa.year, fa.assigned_at,
       u.full_name AS faculty_name, b.name AS batch_name,
       (SELECT COUNT(*) FROM students s WHERE s.batch_id = fa.batch_id) AS student_count
FROM faculty_assignments fa
JOIN users u ON u.id = fa.faculty_id
JOIN batches b ON b.id = fa.batch_id`

// ListByBatch returns the supervisors of a batch.
func (r *FacultyAssignmentRepository) ListByBatch(ctx context.Context, batchID string) ([]models.FacultyAssignmentDetail, error) {
	query := assignmentDetailSelect + `
WHERE fa.batch_id = $1
ORDER BY fa.assigned_at ASC`
	var items []models.FacultyAssignmentDetail
	if err := r.db.SelectContext(ctx, &items, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch faculty: %w", err)
	}
	return items, nil
}

// ListByFaculty returns the batches a faculty member supervises in year.
func (r *FacultyAssignmentRepository) ListByFaculty(ctx context.Context, facultyID string, year int) ([]models.FacultyAssignmentDetail, error) {
	query := assignmentDetailSelect + `
WHERE fa.faculty_id = $1 AND fa.year = $2
ORDER BY b.name ASC`
	var items []models.FacultyAssignmentDetail
	if err := r.db.SelectContext(ctx, &items, query, facultyID, year); err != nil {
		return nil, fmt.Errorf("list faculty assignments: %w", err)
	}
	return items, nil
}

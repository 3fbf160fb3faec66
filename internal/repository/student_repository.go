package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batchplan-api/internal/models"
)

// StudentRepository reads student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListUnassigned returns the students of year that are not in a batch yet.
func (r *StudentRepository) ListUnassigned(ctx context.Context, year int) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, unassignedStudentsQuery, year); err != nil {
		return nil, fmt.Errorf("list unassigned students: %w", err)
	}
	return students, nil
}

// ListByBatch returns the members of a batch ordered by name.
func (r *StudentRepository) ListByBatch(ctx context.Context, batchID string) ([]models.Student, error) {
	const query = `
SELECT s.user_id, s.enrollment_id, u.full_name, s.course, s.year, s.batch_id, s.created_at
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.batch_id = $1
ORDER BY u.full_name ASC, s.user_id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch students: %w", err)
	}
	return students, nil
}

// FindByUserID returns the student record of a user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `
SELECT s.user_id, s.enrollment_id, u.full_name, s.course, s.year, s.batch_id, s.created_at
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batchplan-api/internal/models"
	"github.com/noah-isme/batchplan-api/pkg/database"
)

const applicationColumns = `id, full_name, email, phone, role, enrollment_id, course, year, designation, department,
       status, applied_at, reviewed_at, reviewed_by, remarks`

// ApplicationRepository persists registrations and turns approved ones into users.
type ApplicationRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db, now: time.Now}
}

// Create inserts a pending application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = r.now().UTC()
	}
	const query = `INSERT INTO applications (id, full_name, email, phone, role, enrollment_id, course, year, designation, department, status, applied_at)
		VALUES (:id, :full_name, :email, :phone, :role, :enrollment_id, :course, :year, :designation, :department, :status, :applied_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// ContactTaken reports whether the email or phone belongs to a user or a pending application.
func (r *ApplicationRepository) ContactTaken(ctx context.Context, email, phone string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM users WHERE email = $1 OR phone = $2
	UNION ALL
	SELECT 1 FROM applications WHERE status = 'pending' AND (email = $1 OR phone = $2)
)`
	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, email, phone); err != nil {
		return false, fmt.Errorf("check contact: %w", err)
	}
	return taken, nil
}

// ListPending returns applications awaiting review, oldest first.
func (r *ApplicationRepository) ListPending(ctx context.Context) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = 'pending' ORDER BY applied_at ASC, id ASC`
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query); err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	return apps, nil
}

// FindByID returns sql.ErrNoRows when missing.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

// Approve creates the user with its student or faculty record and closes the
// application, all in one transaction.
func (r *ApplicationRepository) Approve(ctx context.Context, app *models.Application, reviewerID string) (*models.User, error) {
	now := r.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     app.Email,
		Phone:     app.Phone,
		FullName:  app.FullName,
		Role:      app.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertUser = `INSERT INTO users (id, email, phone, full_name, role, active, created_at, updated_at)
			VALUES (:id, :email, :phone, :full_name, :role, :active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertUser, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		switch app.Role {
		case models.RoleStudent:
			const insertStudent = `INSERT INTO students (user_id, enrollment_id, course, year, created_at) VALUES ($1, $2, $3, $4, $5)`
			if _, err := tx.ExecContext(ctx, insertStudent, user.ID, app.EnrollmentID, app.Course, app.Year, now); err != nil {
				return fmt.Errorf("insert student: %w", err)
			}
		case models.RoleFaculty:
			const insertFaculty = `INSERT INTO faculty (user_id, designation, department, created_at) VALUES ($1, $2, $3, $4)`
			if _, err := tx.ExecContext(ctx, insertFaculty, user.ID, app.Designation, app.Department, now); err != nil {
				return fmt.Errorf("insert faculty: %w", err)
			}
		default:
			return fmt.Errorf("unsupported application role %q", app.Role)
		}

		return r.close(ctx, tx, app.ID, models.ApplicationApproved, reviewerID, nil, now)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Reject closes a pending application.
func (r *ApplicationRepository) Reject(ctx context.Context, id, reviewerID string, remarks *string) error {
	return r.close(ctx, r.db, id, models.ApplicationRejected, reviewerID, remarks, r.now().UTC())
}

func (r *ApplicationRepository) close(ctx context.Context, exec sqlx.ExecerContext, id string, status models.ApplicationStatus, reviewerID string, remarks *string, at time.Time) error {
	const query = `UPDATE applications SET status = $1, reviewed_by = $2, reviewed_at = $3, remarks = $4 WHERE id = $5 AND status = 'pending'`
	result, err := exec.ExecContext(ctx, query, status, reviewerID, at, remarks, id)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check application rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

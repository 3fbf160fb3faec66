package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/batchplan-api/internal/models"
)

// AttendanceRepository persists weekly attendance sheets.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Exists reports whether the batch already has a sheet for the week.
func (r *AttendanceRepository) Exists(ctx context.Context, batchID string, week, year int) (bool, error) {
	const query = `SELECT 1 FROM attendance_sheets WHERE batch_id = $1 AND week_number = $2 AND year = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, batchID, week, year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check attendance sheet: %w", err)
	}
	return true, nil
}

// Create stores the sheet with its records as JSONB.
func (r *AttendanceRepository) Create(ctx context.Context, sheet *models.AttendanceSheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	if sheet.SubmittedAt.IsZero() {
		sheet.SubmittedAt = time.Now().UTC()
	}
	records, err := json.Marshal(sheet.Records)
	if err != nil {
		return fmt.Errorf("encode attendance records: %w", err)
	}
	const query = `INSERT INTO attendance_sheets (id, batch_id, week_number, year, records, submitted_by, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		sheet.ID, sheet.BatchID, sheet.WeekNumber, sheet.Year, types.JSONText(records), sheet.SubmittedBy, sheet.SubmittedAt,
	); err != nil {
		return fmt.Errorf("create attendance sheet: %w", err)
	}
	return nil
}

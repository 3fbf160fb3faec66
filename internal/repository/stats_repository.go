package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batchplan-api/internal/models"
)

// StatsRepository aggregates the admin overview counters.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// AdminStats computes the counters in a single round trip.
func (r *StatsRepository) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM students) AS total_students,
	(SELECT COUNT(*) FROM students WHERE batch_id IS NULL) AS pending_assignments,
	(SELECT COUNT(*) FROM batches WHERE is_active = TRUE) AS active_batches,
	(SELECT COUNT(*) FROM faculty) AS faculty_count,
	(SELECT COUNT(*) FROM applications WHERE status = 'pending') AS pending_applicants`
	var stats models.AdminStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &stats, nil
}

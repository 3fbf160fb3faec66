package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryAdminStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"total_students", "pending_assignments", "active_batches", "faculty_count", "pending_applicants"}).
		AddRow(11, 1, 2, 3, 4)
	mock.ExpectQuery("SELECT\\s+\\(SELECT COUNT\\(\\*\\) FROM students\\) AS total_students").WillReturnRows(rows)

	stats, err := repo.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, stats.TotalStudents)
	assert.Equal(t, 1, stats.PendingAssignments)
	assert.Equal(t, 2, stats.ActiveBatches)
	assert.Equal(t, 3, stats.FacultyCount)
	assert.Equal(t, 4, stats.PendingApplicants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

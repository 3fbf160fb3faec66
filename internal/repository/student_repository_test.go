package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositoryListByBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	batchID := "batch-1"
	rows := sqlmock.NewRows(studentColumns).
		AddRow("stu-1", "ENR-1", "Asha", "B.Tech", 2025, batchID, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.batch_id = $1")).
		WithArgs(batchID).
		WillReturnRows(rows)

	students, err := repo.ListByBatch(context.Background(), batchID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NotNil(t, students[0].BatchID)
	assert.Equal(t, batchID, *students[0].BatchID)
	assert.True(t, students[0].Assigned())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListUnassigned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("s.batch_id IS NULL")).
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows(studentColumns))

	students, err := repo.ListUnassigned(context.Background(), 2026)
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows(studentColumns).AddRow("stu-1", "ENR-1", "Asha", "B.Tech", 2025, nil, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(studentColumns))

	student, err := repo.FindByUserID(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "ENR-1", student.EnrollmentID)
	assert.False(t, student.Assigned())

	_, err = repo.FindByUserID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

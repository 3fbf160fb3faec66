package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/export"
)

type batchReadStub struct {
	batches     map[string]models.Batch
	members     map[string][]models.Student
	pool        []models.Student
	assignments []models.FacultyAssignmentDetail
}

func (s batchReadStub) List(context.Context, models.BatchFilter) ([]models.BatchSummary, error) {
	return nil, nil
}

func (s batchReadStub) FindByID(_ context.Context, id string) (*models.Batch, error) {
	b, ok := s.batches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (s batchReadStub) ListUnassigned(context.Context, int) ([]models.Student, error) {
	return s.pool, nil
}

func (s batchReadStub) ListByBatch(_ context.Context, batchID string) ([]models.Student, error) {
	return s.members[batchID], nil
}

type assignmentReadStub struct {
	items []models.FacultyAssignmentDetail
}

func (s assignmentReadStub) ListByBatch(_ context.Context, batchID string) ([]models.FacultyAssignmentDetail, error) {
	var out []models.FacultyAssignmentDetail
	for _, item := range s.items {
		if item.BatchID == batchID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s assignmentReadStub) ListByFaculty(_ context.Context, facultyID string, year int) ([]models.FacultyAssignmentDetail, error) {
	var out []models.FacultyAssignmentDetail
	for _, item := range s.items {
		if item.FacultyID == facultyID && item.Year == year {
			out = append(out, item)
		}
	}
	return out, nil
}

var adminViewer = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

func newBatchServiceFixture() *BatchService {
	reads := batchReadStub{
		batches: map[string]models.Batch{"B1": {ID: "B1", Name: "BT-2025-01", Year: 2025, IsActive: true}},
		members: map[string][]models.Student{"B1": {
			{UserID: "p1", EnrollmentID: "ENR-1", FullName: "Asha", Course: "B.Tech", Year: 2025},
			{UserID: "o1", EnrollmentID: "ENR-2", FullName: "Ravi", Course: "MCA", Year: 2025},
		}},
		pool: buildPool(5, 7),
	}
	assignments := assignmentReadStub{items: []models.FacultyAssignmentDetail{
		{FacultyAssignment: models.FacultyAssignment{ID: "fa-1", FacultyID: "F1", BatchID: "B1", Year: 2025}, FacultyName: "Dr. Rao", BatchName: "BT-2025-01", StudentCount: 5},
		{FacultyAssignment: models.FacultyAssignment{ID: "fa-2", FacultyID: "F1", BatchID: "B2", Year: 2025}, FacultyName: "Dr. Rao", BatchName: "BT-2025-02", StudentCount: 5},
	}}
	return NewBatchService(reads, reads, assignments, DefaultBatchComposition(), nil, export.NewCSVExporter(), export.NewPDFExporter())
}

func TestBatchServicePendingPool(t *testing.T) {
	svc := newBatchServiceFixture()

	pool, err := svc.PendingPool(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, 5, pool.PrimaryCount)
	assert.Equal(t, 7, pool.OtherCount)
	assert.Equal(t, 2, pool.PossibleBatches)
	assert.Equal(t, "B.Tech", pool.PrimaryCourse)

	_, err = svc.PendingPool(context.Background(), 0)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBatchServiceGet(t *testing.T) {
	svc := newBatchServiceFixture()

	detail, err := svc.Get(context.Background(), "B1", adminViewer)
	require.NoError(t, err)
	assert.Len(t, detail.Students, 2)
	require.Len(t, detail.Faculty, 1)
	assert.Equal(t, "Dr. Rao", detail.Faculty[0].FacultyName)

	_, err = svc.Get(context.Background(), "missing", adminViewer)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestBatchServiceFacultyAssignments(t *testing.T) {
	svc := newBatchServiceFixture()

	resp, err := svc.FacultyAssignments(context.Background(), "F1", 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalBatches)
	assert.Equal(t, 10, resp.TotalStudents)

	empty, err := svc.FacultyAssignments(context.Background(), "F9", 2025)
	require.NoError(t, err)
	assert.NotNil(t, empty.Assignments)
	assert.Equal(t, 0, empty.TotalBatches)
}

func TestBatchServiceRosterCSV(t *testing.T) {
	svc := newBatchServiceFixture()

	file, err := svc.Roster(context.Background(), "B1", "CSV", adminViewer)
	require.NoError(t, err)
	assert.Equal(t, "BT-2025-01.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Enrollment,Name,Course", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "ENR-1")
}

func TestBatchServiceRosterPDF(t *testing.T) {
	svc := newBatchServiceFixture()

	file, err := svc.Roster(context.Background(), "B1", "pdf", adminViewer)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestBatchServiceRosterUnsupportedFormat(t *testing.T) {
	svc := newBatchServiceFixture()
	_, err := svc.Roster(context.Background(), "B1", "xlsx", adminViewer)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBatchServiceRestrictsFacultyToAssignedBatches(t *testing.T) {
	svc := newBatchServiceFixture()
	ctx := context.Background()
	supervisor := &models.JWTClaims{UserID: "F1", Role: models.RoleFaculty}
	outsider := &models.JWTClaims{UserID: "F2", Role: models.RoleFaculty}

	detail, err := svc.Get(ctx, "B1", supervisor)
	require.NoError(t, err)
	assert.Equal(t, "B1", detail.ID)

	_, err = svc.Get(ctx, "B1", outsider)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Roster(ctx, "B1", "csv", outsider)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(ctx, "B1", nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

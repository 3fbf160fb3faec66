package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/export"
)

type batchReader interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.BatchSummary, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type studentReader interface {
	ListUnassigned(ctx context.Context, year int) ([]models.Student, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.Student, error)
}

type assignmentReader interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.FacultyAssignmentDetail, error)
	ListByFaculty(ctx context.Context, facultyID string, year int) ([]models.FacultyAssignmentDetail, error)
}

// RosterRenderer turns a roster document into bytes.
type RosterRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// RosterFile is a rendered batch roster ready to download.
type RosterFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// BatchService serves read models around batches and the unassigned pool.
type BatchService struct {
	batches     batchReader
	students    studentReader
	assignments assignmentReader
	composition BatchComposition
	renderers   map[string]RosterRenderer
	logger      *zap.Logger
}

// NewBatchService constructs the service. Renderers are keyed by their extension.
func NewBatchService(batches batchReader, students studentReader, assignments assignmentReader, composition BatchComposition, logger *zap.Logger, renderers ...RosterRenderer) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	byExt := make(map[string]RosterRenderer, len(renderers))
	for _, r := range renderers {
		byExt[r.Extension()] = r
	}
	return &BatchService{
		batches:     batches,
		students:    students,
		assignments: assignments,
		composition: composition,
		renderers:   byExt,
		logger:      logger,
	}
}

// List returns batches matching the filter.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.BatchSummary, error) {
	items, err := s.batches.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to list batches")
	}
	if items == nil {
		items = []models.BatchSummary{}
	}
	return items, nil
}

// Get returns a batch with its students and supervising faculty. Faculty viewers
// only see batches they are assigned to.
func (s *BatchService) Get(ctx context.Context, id string, viewer *models.JWTClaims) (*models.BatchDetail, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Repository(err, "failed to load batch")
	}
	faculty, err := s.assignments.ListByBatch(ctx, id)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to load batch faculty")
	}
	students, err := s.students.ListByBatch(ctx, id)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to load batch students")
	}
	if viewer.Role == models.RoleFaculty && !supervisedBy(faculty, viewer.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not assigned to this batch")
	}
	if students == nil {
		students = []models.Student{}
	}
	if faculty == nil {
		faculty = []models.FacultyAssignmentDetail{}
	}
	return &models.BatchDetail{Batch: *batch, Students: students, Faculty: faculty}, nil
}

// PendingPool describes the unassigned students of year and how many batches they could fill.
func (s *BatchService) PendingPool(ctx context.Context, year int) (*dto.PendingPoolResponse, error) {
	if year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year must be positive")
	}
	pool, err := s.students.ListUnassigned(ctx, year)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to load unassigned students")
	}
	if pool == nil {
		pool = []models.Student{}
	}
	resp := &dto.PendingPoolResponse{
		Year:          year,
		PrimaryCourse: s.composition.PrimaryCourse,
		Students:      pool,
	}
	for _, student := range pool {
		if models.CategoryOf(student.Course, s.composition.PrimaryCourse) == models.CategoryPrimary {
			resp.PrimaryCount++
		} else {
			resp.OtherCount++
		}
	}
	if s.composition.PrimaryPerBatch > 0 && s.composition.OtherPerBatch > 0 {
		resp.PossibleBatches = min(resp.PrimaryCount/s.composition.PrimaryPerBatch, resp.OtherCount/s.composition.OtherPerBatch)
	}
	return resp, nil
}

// FacultyAssignments lists the batches supervised by facultyID in year.
func (s *BatchService) FacultyAssignments(ctx context.Context, facultyID string, year int) (*dto.FacultyAssignmentsResponse, error) {
	items, err := s.assignments.ListByFaculty(ctx, facultyID, year)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to list faculty assignments")
	}
	if items == nil {
		items = []models.FacultyAssignmentDetail{}
	}
	resp := &dto.FacultyAssignmentsResponse{Year: year, TotalBatches: len(items), Assignments: items}
	for _, item := range items {
		resp.TotalStudents += item.StudentCount
	}
	return resp, nil
}

// Roster renders the member list of a batch in the requested format (pdf or csv).
func (s *BatchService) Roster(ctx context.Context, id, format string, viewer *models.JWTClaims) (*RosterFile, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported roster format %q", format))
	}
	detail, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	doc := export.Document{
		Title:    detail.Name,
		Captions: []string{fmt.Sprintf("Year %d - %d students", detail.Year, len(detail.Students))},
		Data: export.Dataset{
			Headers: []string{"Enrollment", "Name", "Course"},
		},
	}
	if names := facultyNames(detail.Faculty); names != "" {
		doc.Captions = append(doc.Captions, "Supervisor: "+names)
	}
	for _, student := range detail.Students {
		doc.Data.Rows = append(doc.Data.Rows, map[string]string{
			"Enrollment": student.EnrollmentID,
			"Name":       student.FullName,
			"Course":     student.Course,
		})
	}

	content, err := renderer.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return &RosterFile{
		Filename:    fmt.Sprintf("%s.%s", detail.Name, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

func facultyNames(assignments []models.FacultyAssignmentDetail) string {
	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		names = append(names, a.FacultyName)
	}
	return strings.Join(names, ", ")
}

func supervisedBy(assignments []models.FacultyAssignmentDetail, facultyID string) bool {
	for _, a := range assignments {
		if a.FacultyID == facultyID {
			return true
		}
	}
	return false
}

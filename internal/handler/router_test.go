package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	"github.com/noah-isme/batchplan-api/internal/service"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type allocatorStub struct {
	result    *service.AllocationResult
	err       error
	years     []int
	assignReq service.AssignFacultyRequest
	assignErr error
}

func (s *allocatorStub) CreateBatchesForYear(_ context.Context, year int) (*service.AllocationResult, error) {
	s.years = append(s.years, year)
	return s.result, s.err
}

func (s *allocatorStub) AssignFaculty(_ context.Context, req service.AssignFacultyRequest) (*models.FacultyAssignment, error) {
	s.assignReq = req
	if s.assignErr != nil {
		return nil, s.assignErr
	}
	return &models.FacultyAssignment{ID: "fa-1", FacultyID: req.FacultyID, BatchID: req.BatchID, Year: req.Year}, nil
}

type queriesStub struct {
	filter    models.BatchFilter
	facultyID string
	year      int
	format    string
}

func (s *queriesStub) List(_ context.Context, filter models.BatchFilter) ([]models.BatchSummary, error) {
	s.filter = filter
	return []models.BatchSummary{{Batch: models.Batch{ID: "B1", Name: "BT-2025-01"}, StudentCount: 5}}, nil
}

func (s *queriesStub) Get(_ context.Context, id string, viewer *models.JWTClaims) (*models.BatchDetail, error) {
	if id != "B1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	if viewer.Role == models.RoleFaculty && viewer.UserID != "fac-1" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not assigned to this batch")
	}
	return &models.BatchDetail{Batch: models.Batch{ID: "B1", Name: "BT-2025-01"}}, nil
}

func (s *queriesStub) PendingPool(_ context.Context, year int) (*dto.PendingPoolResponse, error) {
	s.year = year
	return &dto.PendingPoolResponse{Year: year, Students: []models.Student{}}, nil
}

func (s *queriesStub) FacultyAssignments(_ context.Context, facultyID string, year int) (*dto.FacultyAssignmentsResponse, error) {
	s.facultyID = facultyID
	s.year = year
	return &dto.FacultyAssignmentsResponse{Year: year}, nil
}

func (s *queriesStub) Roster(ctx context.Context, id, format string, viewer *models.JWTClaims) (*service.RosterFile, error) {
	if _, err := s.Get(ctx, id, viewer); err != nil {
		return nil, err
	}
	s.format = format
	return &service.RosterFile{Filename: "BT-2025-01." + format, ContentType: "text/csv", Content: []byte("Enrollment,Name,Course\n")}, nil
}

type applicationsStub struct {
	reviewer string
	rejected dto.ReviewApplicationRequest
}

func (s *applicationsStub) Submit(_ context.Context, req dto.ApplicationRequest) (*models.Application, error) {
	if req.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid application role")
	}
	return &models.Application{ID: "app-1", Role: req.Role, Status: models.ApplicationPending}, nil
}

func (s *applicationsStub) ListPending(context.Context) ([]models.Application, error) {
	return []models.Application{}, nil
}

func (s *applicationsStub) Approve(_ context.Context, _ string, reviewerID string) (*models.User, error) {
	s.reviewer = reviewerID
	return &models.User{ID: "user-1", Role: models.RoleStudent, Active: true}, nil
}

func (s *applicationsStub) Reject(_ context.Context, _ string, reviewerID string, req dto.ReviewApplicationRequest) error {
	s.reviewer = reviewerID
	s.rejected = req
	return nil
}

type attendanceStub struct {
	facultyID string
}

func (s *attendanceStub) Submit(_ context.Context, facultyID string, req dto.SubmitAttendanceRequest) (*models.AttendanceSheet, error) {
	s.facultyID = facultyID
	return &models.AttendanceSheet{ID: "sheet-1", BatchID: req.BatchID, SubmittedBy: facultyID}, nil
}

type statsStub struct{ hit bool }

func (s statsStub) Get(context.Context) (*models.AdminStats, bool, error) {
	return &models.AdminStats{TotalStudents: 11}, s.hit, nil
}

type studentStub struct {
	viewer   *models.JWTClaims
	markedBy string
	mark     dto.SubmitMarksRequest
}

func (s *studentStub) Dashboard(_ context.Context, viewer *models.JWTClaims) (*dto.StudentDashboardResponse, error) {
	s.viewer = viewer
	return &dto.StudentDashboardResponse{Student: models.Student{UserID: viewer.UserID}, Marks: []models.Mark{}}, nil
}

func (s *studentStub) Submit(_ context.Context, facultyID string, req dto.SubmitMarksRequest) (*models.Mark, error) {
	s.markedBy = facultyID
	s.mark = req
	return &models.Mark{ID: "mark-1", StudentID: req.StudentID, SubmittedBy: facultyID}, nil
}

type notificationsStub struct {
	publishedBy string
	readID      string
	reader      string
}

func (s *notificationsStub) Publish(_ context.Context, createdBy string, req dto.CreateNotificationRequest) (*models.Notification, error) {
	s.publishedBy = createdBy
	return &models.Notification{ID: "n-1", Title: req.Title, Audience: models.NotificationAudience(req.Audience)}, nil
}

func (s *notificationsStub) Feed(_ context.Context, viewer *models.JWTClaims) ([]models.Notification, error) {
	return []models.Notification{{ID: "n-1", Title: "holiday"}}, nil
}

func (s *notificationsStub) MarkRead(_ context.Context, id string, viewer *models.JWTClaims) error {
	if id != "n-1" {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	s.readID = id
	s.reader = viewer.UserID
	return nil
}

type routerFixture struct {
	engine        *gin.Engine
	allocator     *allocatorStub
	queries       *queriesStub
	applications  *applicationsStub
	attendance    *attendanceStub
	students      *studentStub
	notifications *notificationsStub
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		allocator:    &allocatorStub{result: &service.AllocationResult{Year: 2025, Batches: []service.CreatedBatchSummary{}}},
		queries:      &queriesStub{},
		applications: &applicationsStub{},
		attendance:   &attendanceStub{},
	}
	f.students = &studentStub{}
	f.notifications = &notificationsStub{}
	routes := Routes{
		Tokens: tokenStub{
			"admin-token":    {UserID: "admin-1", Role: models.RoleAdmin},
			"faculty-token":  {UserID: "fac-1", Role: models.RoleFaculty},
			"outsider-token": {UserID: "fac-2", Role: models.RoleFaculty},
			"student-token":  {UserID: "stu-1", Role: models.RoleStudent},
		},
		Batches:       NewBatchHandler(f.allocator, f.queries),
		Applications:  NewApplicationHandler(f.applications),
		Attendance:    NewAttendanceHandler(f.attendance),
		Stats:         NewStatsHandler(statsStub{hit: true}),
		Students:      NewStudentHandler(f.students, f.students),
		Notifications: NewNotificationHandler(f.notifications),
	}
	f.engine = gin.New()
	routes.Register(f.engine.Group("/api/v1"))
	return f
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateBatchesRequiresAdmin(t *testing.T) {
	f := newRouterFixture()

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/v1/admin/batches/create", "", `{"year":2025}`).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/admin/batches/create", "faculty-token", `{"year":2025}`).Code)
	assert.Empty(t, f.allocator.years)
}

func TestCreateBatchesSuccess(t *testing.T) {
	f := newRouterFixture()
	facultyID := "F1"
	f.allocator.result = &service.AllocationResult{
		Year:           2025,
		BatchesCreated: 1,
		Batches: []service.CreatedBatchSummary{{
			Batch:             models.Batch{ID: "B1", Name: "BT-2025-01", Year: 2025},
			StudentCount:      5,
			AssignedFacultyID: &facultyID,
		}},
	}

	rec := f.do(http.MethodPost, "/api/v1/admin/batches/create", "admin-token", `{"year":2025}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2025}, f.allocator.years)

	var data struct {
		BatchesCreated int `json:"batchesCreated"`
		Batches        []struct {
			AssignedFacultyID *string `json:"assignedFacultyId"`
		} `json:"batches"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, 1, data.BatchesCreated)
	require.Len(t, data.Batches, 1)
	assert.Equal(t, "F1", *data.Batches[0].AssignedFacultyID)
}

func TestCreateBatchesEmptyPoolIsNotAnError(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/admin/batches/create", "admin-token", `{"year":2025}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"batchesCreated":0`)
}

func TestCreateBatchesRejectsInvalidYear(t *testing.T) {
	f := newRouterFixture()

	for _, body := range []string{`{}`, `{"year":"2025"}`, `{"year":1999}`} {
		rec := f.do(http.MethodPost, "/api/v1/admin/batches/create", "admin-token", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, f.allocator.years)
}

func TestCreateBatchesErrors(t *testing.T) {
	f := newRouterFixture()
	f.allocator.result = nil
	f.allocator.err = appErrors.ErrAllocationInProgress

	rec := f.do(http.MethodPost, "/api/v1/admin/batches/create", "admin-token", `{"year":2025}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALLOCATION_IN_PROGRESS", decode(t, rec).Error.Code)

	f.allocator.result = &service.AllocationResult{Year: 2025, BatchesCreated: 1, Batches: []service.CreatedBatchSummary{{}}}
	f.allocator.err = appErrors.Repository(errors.New("conn reset"), "failed to persist batch")
	rec = f.do(http.MethodPost, "/api/v1/admin/batches/create", "admin-token", `{"year":2025}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "REPOSITORY_ERROR", env.Error.Code)
	assert.Contains(t, string(env.Data), `"batchesCreated":1`)
}

func TestAssignFacultyEndpoint(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/admin/faculty-assignments", "admin-token", `{"facultyId":"F1","batchId":"B1","year":2025}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, service.AssignFacultyRequest{FacultyID: "F1", BatchID: "B1", Year: 2025}, f.allocator.assignReq)

	f.allocator.assignErr = appErrors.ErrCapacityExceeded
	rec = f.do(http.MethodPost, "/api/v1/admin/faculty-assignments", "admin-token", `{"facultyId":"F1","batchId":"B2","year":2025}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", decode(t, rec).Error.Code)
}

func TestPendingPoolEndpoint(t *testing.T) {
	f := newRouterFixture()

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/admin/students/pending/2025", "admin-token", "").Code)
	assert.Equal(t, 2025, f.queries.year)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/admin/students/pending/next", "admin-token", "").Code)
}

func TestBatchReadEndpoints(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/api/v1/batches?year=2025", "faculty-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.queries.filter.Year)
	assert.Equal(t, 2025, *f.queries.filter.Year)
	assert.True(t, f.queries.filter.ActiveOnly)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/batches", "student-token", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/batches/B9", "admin-token", "").Code)

	rec = f.do(http.MethodGet, "/api/v1/batches/B1/roster.csv", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", f.queries.format)
	assert.Equal(t, `attachment; filename="BT-2025-01.csv"`, rec.Header().Get("Content-Disposition"))

	f.do(http.MethodGet, "/api/v1/batches/B1/roster.pdf", "admin-token", "")
	assert.Equal(t, "pdf", f.queries.format)
}

func TestBatchReadsForbiddenToUnassignedFaculty(t *testing.T) {
	f := newRouterFixture()

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/batches/B1", "faculty-token", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/batches/B1", "outsider-token", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/batches/B1/roster.csv", "outsider-token", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/batches/B1/roster.pdf", "outsider-token", "").Code)
	assert.Empty(t, f.queries.format)
}

func TestFacultyEndpoints(t *testing.T) {
	f := newRouterFixture()

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/faculty/assignments?year=2024", "faculty-token", "").Code)
	assert.Equal(t, "fac-1", f.queries.facultyID)
	assert.Equal(t, 2024, f.queries.year)

	rec := f.do(http.MethodPost, "/api/v1/faculty/attendance", "faculty-token", `{"batchId":"B1","weekNumber":2,"year":2025,"records":{"stu-1":"present"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fac-1", f.attendance.facultyID)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/faculty/assignments", "admin-token", "").Code)
}

func TestApplicationEndpoints(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/applications", "", `{"role":"STUDENT","fullName":"Asha"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/applications", "", `{`).Code)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/admin/applications/app-1/approve", "admin-token", "").Code)
	assert.Equal(t, "admin-1", f.applications.reviewer)

	rec = f.do(http.MethodPost, "/api/v1/admin/applications/app-2/reject", "admin-token", `{"remarks":"incomplete"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "incomplete", f.applications.rejected.Remarks)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/admin/applications", "student-token", "").Code)
}

func TestStatsEndpoint(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/api/v1/admin/stats", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, string(decode(t, rec).Data), `"total_students":11`)
}

func TestStudentDashboardEndpoint(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/api/v1/students/me", "student-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.students.viewer)
	assert.Equal(t, "stu-1", f.students.viewer.UserID)

	var dash dto.StudentDashboardResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &dash))
	assert.Equal(t, "stu-1", dash.Student.UserID)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/students/me", "faculty-token", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/students/me", "", "").Code)
}

func TestFacultyMarksEndpoint(t *testing.T) {
	f := newRouterFixture()

	body := `{"batchId":"B1","studentId":"stu-1","subject":"Networks","weekNumber":3,"year":2025,"marks":88}`
	rec := f.do(http.MethodPost, "/api/v1/faculty/marks", "faculty-token", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fac-1", f.students.markedBy)
	require.NotNil(t, f.students.mark.Score)
	assert.Equal(t, 88, *f.students.mark.Score)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/faculty/marks", "student-token", body).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/faculty/marks", "faculty-token", `{"marks":`).Code)
}

func TestNotificationEndpoints(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/admin/notifications", "admin-token", `{"title":"holiday","message":"closed","toType":"all"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "admin-1", f.notifications.publishedBy)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/v1/admin/notifications", "student-token", `{"title":"x"}`).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/notifications", "faculty-token", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/notifications", "", "").Code)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/notifications/n-1/read", "student-token", "").Code)
	assert.Equal(t, "stu-1", f.notifications.reader)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/v1/notifications/n-9/read", "student-token", "").Code)
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

type studentFinder interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type supervisorLister interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.FacultyAssignmentDetail, error)
}

type markLister interface {
	ListByStudent(ctx context.Context, studentID string, year int) ([]models.Mark, error)
}

type notificationFeed interface {
	Feed(ctx context.Context, viewer *models.JWTClaims) ([]models.Notification, error)
}

// StudentService builds the student's own dashboard.
type StudentService struct {
	students      studentFinder
	batches       batchFinder
	supervisors   supervisorLister
	marks         markLister
	notifications notificationFeed
}

// NewStudentService constructs the service.
func NewStudentService(students studentFinder, batches batchFinder, supervisors supervisorLister, marks markLister, notifications notificationFeed) *StudentService {
	return &StudentService{
		students:      students,
		batches:       batches,
		supervisors:   supervisors,
		marks:         marks,
		notifications: notifications,
	}
}

// Dashboard returns the caller's batch, its supervisors, the caller's marks for
// their cohort year and their notification feed. Unbatched students get a nil batch.
func (s *StudentService) Dashboard(ctx context.Context, viewer *models.JWTClaims) (*dto.StudentDashboardResponse, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if viewer.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students have a dashboard")
	}
	student, err := s.students.FindByUserID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Repository(err, "failed to load student")
	}

	resp := &dto.StudentDashboardResponse{
		Student:     *student,
		Supervisors: []models.FacultyAssignmentDetail{},
	}
	if student.Assigned() {
		batch, err := s.batches.FindByID(ctx, *student.BatchID)
		if err != nil {
			return nil, appErrors.Repository(err, "failed to load batch")
		}
		resp.Batch = batch
		supervisors, err := s.supervisors.ListByBatch(ctx, batch.ID)
		if err != nil {
			return nil, appErrors.Repository(err, "failed to load batch faculty")
		}
		if supervisors != nil {
			resp.Supervisors = supervisors
		}
	}

	marks, err := s.marks.ListByStudent(ctx, student.UserID, student.Year)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to load marks")
	}
	if marks == nil {
		marks = []models.Mark{}
	}
	resp.Marks = marks

	notifications, err := s.notifications.Feed(ctx, viewer)
	if err != nil {
		return nil, err
	}
	resp.Notifications = notifications
	return resp, nil
}

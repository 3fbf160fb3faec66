package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

type attendanceRepository interface {
	Exists(ctx context.Context, batchID string, week, year int) (bool, error)
	Create(ctx context.Context, sheet *models.AttendanceSheet) error
}

type supervisionChecker interface {
	FacultyAssignmentExists(ctx context.Context, facultyID, batchID string) (bool, error)
}

type batchMembers interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.Student, error)
}

// AttendanceService records weekly attendance submitted by a batch supervisor.
type AttendanceService struct {
	repo        attendanceRepository
	batches     batchFinder
	supervision supervisionChecker
	members     batchMembers
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, batches batchFinder, supervision supervisionChecker, members batchMembers, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:        repo,
		batches:     batches,
		supervision: supervision,
		members:     members,
		validator:   validate,
		logger:      logger,
	}
}

// Submit stores the sheet after checking the caller supervises the batch and every
// record refers to a member of it.
func (s *AttendanceService) Submit(ctx context.Context, facultyID string, req dto.SubmitAttendanceRequest) (*models.AttendanceSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	batch, err := s.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Repository(err, "failed to load batch")
	}
	if batch.Year != req.Year {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year does not match batch")
	}

	supervises, err := s.supervision.FacultyAssignmentExists(ctx, facultyID, req.BatchID)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to verify supervision")
	}
	if !supervises {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty does not supervise this batch")
	}

	members, err := s.members.ListByBatch(ctx, req.BatchID)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to load batch students")
	}
	inBatch := make(map[string]struct{}, len(members))
	for _, m := range members {
		inBatch[m.UserID] = struct{}{}
	}
	for studentID := range req.Records {
		if _, ok := inBatch[studentID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s is not in batch", studentID))
		}
	}

	exists, err := s.repo.Exists(ctx, req.BatchID, req.WeekNumber, req.Year)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to check attendance")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already submitted for this week")
	}

	sheet := &models.AttendanceSheet{
		BatchID:     req.BatchID,
		WeekNumber:  req.WeekNumber,
		Year:        req.Year,
		Records:     req.Records,
		SubmittedBy: facultyID,
	}
	if err := s.repo.Create(ctx, sheet); err != nil {
		return nil, appErrors.Repository(err, "failed to store attendance")
	}
	s.logger.Info("attendance submitted",
		zap.String("batch_id", req.BatchID),
		zap.Int("week", req.WeekNumber),
		zap.Int("records", len(req.Records)),
	)
	return sheet, nil
}

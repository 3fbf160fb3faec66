package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

type markRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
	ListByStudent(ctx context.Context, studentID string, year int) ([]models.Mark, error)
}

// MarkService records weekly marks entered by a batch supervisor.
type MarkService struct {
	repo        markRepository
	batches     batchFinder
	supervision supervisionChecker
	members     batchMembers
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMarkService constructs the service.
func NewMarkService(repo markRepository, batches batchFinder, supervision supervisionChecker, members batchMembers, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkService{
		repo:        repo,
		batches:     batches,
		supervision: supervision,
		members:     members,
		validator:   validate,
		logger:      logger,
	}
}

// Submit stores a mark for a member of a batch the caller supervises.
func (s *MarkService) Submit(ctx context.Context, facultyID string, req dto.SubmitMarksRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
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
	if !containsStudent(members, req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not in batch")
	}

	mark := &models.Mark{
		StudentID:   req.StudentID,
		BatchID:     req.BatchID,
		Subject:     req.Subject,
		WeekNumber:  req.WeekNumber,
		Year:        req.Year,
		Score:       *req.Score,
		SubmittedBy: facultyID,
	}
	if err := s.repo.Create(ctx, mark); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		return nil, appErrors.Repository(err, "failed to store marks")
	}
	s.logger.Info("marks recorded",
		zap.String("batch_id", req.BatchID),
		zap.String("student_id", req.StudentID),
		zap.Int("week", req.WeekNumber),
	)
	return mark, nil
}

func containsStudent(members []models.Student, userID string) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

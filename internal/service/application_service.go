package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	ContactTaken(ctx context.Context, email, phone string) (bool, error)
	ListPending(ctx context.Context) ([]models.Application, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	Approve(ctx context.Context, app *models.Application, reviewerID string) (*models.User, error)
	Reject(ctx context.Context, id, reviewerID string, remarks *string) error
}

// ApplicationService handles registration and admin review. Approved students
// join the unassigned pool of their cohort year.
type ApplicationService struct {
	repo      applicationRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(repo applicationRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ParseApplicant converts the flat request into the typed applicant variant and validates it.
func (s *ApplicationService) ParseApplicant(req dto.ApplicationRequest) (models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application role")
	}
	contact := models.ApplicantContact{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    strings.TrimSpace(req.Phone),
	}

	var applicant models.Applicant
	switch req.Role {
	case models.RoleStudent:
		applicant = models.StudentApplicant{
			ApplicantContact: contact,
			EnrollmentID:     strings.TrimSpace(req.EnrollmentID),
			Course:           req.Course,
			Year:             req.Year,
		}
	case models.RoleFaculty:
		applicant = models.FacultyApplicant{
			ApplicantContact: contact,
			Designation:      strings.TrimSpace(req.Designation),
			Department:       strings.TrimSpace(req.Department),
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported role")
	}

	if err := s.validator.Struct(applicant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	return applicant, nil
}

// Submit stores a new pending application.
func (s *ApplicationService) Submit(ctx context.Context, req dto.ApplicationRequest) (*models.Application, error) {
	applicant, err := s.ParseApplicant(req)
	if err != nil {
		return nil, err
	}
	contact := applicant.Contact()
	taken, err := s.repo.ContactTaken(ctx, contact.Email, contact.Phone)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to check existing registrations")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email or phone already registered")
	}

	app := models.NewApplication(applicant)
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Repository(err, "failed to store application")
	}
	s.logger.Info("application submitted", zap.String("application_id", app.ID), zap.String("role", string(app.Role)))
	return app, nil
}

// ListPending returns applications awaiting review, oldest first.
func (s *ApplicationService) ListPending(ctx context.Context) ([]models.Application, error) {
	apps, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to list applications")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// Approve creates the user and its student or faculty record.
func (s *ApplicationService) Approve(ctx context.Context, id, reviewerID string) (*models.User, error) {
	app, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	applicant, err := app.Applicant()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "application is incomplete")
	}
	if err := s.validator.Struct(applicant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "application is incomplete")
	}

	user, err := s.repo.Approve(ctx, app, reviewerID)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to approve application")
	}
	s.invalidate(ctx)
	s.logger.Info("application approved",
		zap.String("application_id", id),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("reviewer_id", reviewerID),
	)
	return user, nil
}

// Reject closes the application with optional remarks.
func (s *ApplicationService) Reject(ctx context.Context, id, reviewerID string, req dto.ReviewApplicationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if _, err := s.loadPending(ctx, id); err != nil {
		return err
	}
	var remarks *string
	if trimmed := strings.TrimSpace(req.Remarks); trimmed != "" {
		remarks = &trimmed
	}
	if err := s.repo.Reject(ctx, id, reviewerID, remarks); err != nil {
		return appErrors.Repository(err, "failed to reject application")
	}
	s.invalidate(ctx)
	s.logger.Info("application rejected", zap.String("application_id", id), zap.String("reviewer_id", reviewerID))
	return nil
}

func (s *ApplicationService) loadPending(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Repository(err, "failed to load application")
	}
	if app.Status != models.ApplicationPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already reviewed")
	}
	return app, nil
}

func (s *ApplicationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

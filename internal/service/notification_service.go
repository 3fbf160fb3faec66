package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

const notificationFeedLimit = 50

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, audience models.NotificationAudience, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string, audience models.NotificationAudience) (bool, error)
}

// NotificationService publishes announcements and serves each user's feed.
type NotificationService struct {
	repo      notificationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, validator: validate, logger: logger}
}

// Publish stores an announcement authored by createdBy.
func (s *NotificationService) Publish(ctx context.Context, createdBy string, req dto.CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	n := &models.Notification{
		Title:     req.Title,
		Message:   req.Message,
		Audience:  models.NotificationAudience(req.Audience),
		CreatedBy: createdBy,
	}
	if n.Audience == models.AudienceSpecific {
		n.RecipientIDs = req.RecipientIDs
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, appErrors.Repository(err, "failed to store notification")
	}
	s.logger.Info("notification published", zap.String("id", n.ID), zap.String("audience", string(n.Audience)))
	return n, nil
}

// Feed returns the newest notifications visible to the caller.
func (s *NotificationService) Feed(ctx context.Context, viewer *models.JWTClaims) ([]models.Notification, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	items, err := s.repo.ListForUser(ctx, viewer.UserID, models.AudienceFor(viewer.Role), notificationFeedLimit)
	if err != nil {
		return nil, appErrors.Repository(err, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// MarkRead records a read receipt for the caller.
func (s *NotificationService) MarkRead(ctx context.Context, id string, viewer *models.JWTClaims) error {
	if viewer == nil {
		return appErrors.ErrUnauthorized
	}
	ok, err := s.repo.MarkRead(ctx, id, viewer.UserID, models.AudienceFor(viewer.Role))
	if err != nil {
		return appErrors.Repository(err, "failed to mark notification read")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/response"
)

type notificationService interface {
	Publish(ctx context.Context, createdBy string, req dto.CreateNotificationRequest) (*models.Notification, error)
	Feed(ctx context.Context, viewer *models.JWTClaims) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, viewer *models.JWTClaims) error
}

// NotificationHandler exposes announcements.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler builds the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Publish godoc
// @Summary Publish a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.CreateNotificationRequest true "Notification"
// @Success 201 {object} response.Envelope
// @Router /admin/notifications [post]
func (h *NotificationHandler) Publish(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	n, err := h.service.Publish(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

// Feed godoc
// @Summary List the caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) Feed(c *gin.Context) {
	items, err := h.service.Feed(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

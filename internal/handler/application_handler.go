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

type applicationService interface {
	Submit(ctx context.Context, req dto.ApplicationRequest) (*models.Application, error)
	ListPending(ctx context.Context) ([]models.Application, error)
	Approve(ctx context.Context, id, reviewerID string) (*models.User, error)
	Reject(ctx context.Context, id, reviewerID string, req dto.ReviewApplicationRequest) error
}

// ApplicationHandler exposes registration and review endpoints.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler builds the handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Submit godoc
// @Summary Apply for a student or faculty account
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.ApplicationRequest true "Application"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	app, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// ListPending godoc
// @Summary List applications awaiting review
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/applications [get]
func (h *ApplicationHandler) ListPending(c *gin.Context) {
	apps, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil, map[string]interface{}{"count": len(apps)})
}

// Approve godoc
// @Summary Approve an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/approve [post]
func (h *ApplicationHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	user, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Reject godoc
// @Summary Reject an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ReviewApplicationRequest false "Remarks"
// @Success 204
// @Router /admin/applications/{id}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReviewApplicationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
			return
		}
	}
	if err := h.service.Reject(c.Request.Context(), c.Param("id"), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

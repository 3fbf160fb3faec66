package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/response"
)

type attendanceService interface {
	Submit(ctx context.Context, facultyID string, req dto.SubmitAttendanceRequest) (*models.AttendanceSheet, error)
}

// AttendanceHandler exposes weekly attendance submission for supervisors.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Submit godoc
// @Summary Submit weekly attendance for a supervised batch
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.SubmitAttendanceRequest true "Attendance sheet"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /faculty/attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	sheet, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sheet)
}

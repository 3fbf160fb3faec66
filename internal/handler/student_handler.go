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

type studentService interface {
	Dashboard(ctx context.Context, viewer *models.JWTClaims) (*dto.StudentDashboardResponse, error)
}

type markService interface {
	Submit(ctx context.Context, facultyID string, req dto.SubmitMarksRequest) (*models.Mark, error)
}

// StudentHandler serves the student dashboard and supervisor mark entry.
type StudentHandler struct {
	students studentService
	marks    markService
}

// NewStudentHandler builds the handler.
func NewStudentHandler(students studentService, marks markService) *StudentHandler {
	return &StudentHandler{students: students, marks: marks}
}

// Dashboard godoc
// @Summary Get the caller's batch, supervisors, marks and notifications
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	dash, err := h.students.Dashboard(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil)
}

// SubmitMarks godoc
// @Summary Record a weekly mark for a student in a supervised batch
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.SubmitMarksRequest true "Mark"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /faculty/marks [post]
func (h *StudentHandler) SubmitMarks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	mark, err := h.marks.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mark)
}

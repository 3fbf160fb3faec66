package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	"github.com/noah-isme/batchplan-api/internal/service"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
	"github.com/noah-isme/batchplan-api/pkg/response"
)

type batchAllocator interface {
	CreateBatchesForYear(ctx context.Context, year int) (*service.AllocationResult, error)
	AssignFaculty(ctx context.Context, req service.AssignFacultyRequest) (*models.FacultyAssignment, error)
}

type batchQueries interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.BatchSummary, error)
	Get(ctx context.Context, id string, viewer *models.JWTClaims) (*models.BatchDetail, error)
	PendingPool(ctx context.Context, year int) (*dto.PendingPoolResponse, error)
	FacultyAssignments(ctx context.Context, facultyID string, year int) (*dto.FacultyAssignmentsResponse, error)
	Roster(ctx context.Context, id, format string, viewer *models.JWTClaims) (*service.RosterFile, error)
}

// BatchHandler exposes batch allocation and batch read endpoints.
type BatchHandler struct {
	allocator batchAllocator
	queries   batchQueries
}

// NewBatchHandler builds the handler.
func NewBatchHandler(allocator batchAllocator, queries batchQueries) *BatchHandler {
	return &BatchHandler{allocator: allocator, queries: queries}
}

// CreateBatches godoc
// @Summary Create batches for a cohort year
// @Description Partitions the unassigned pool of the year into complete batches and assigns a supervisor to each.
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchesRequest true "Cohort year"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/batches/create [post]
func (h *BatchHandler) CreateBatches(c *gin.Context) {
	var req dto.CreateBatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Year < 2000 || req.Year > 2100 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be between 2000 and 2100"))
		return
	}

	result, err := h.allocator.CreateBatchesForYear(c.Request.Context(), req.Year)
	if err != nil {
		if result != nil && result.BatchesCreated > 0 {
			response.PartialError(c, err, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AssignFaculty godoc
// @Summary Assign a faculty member to a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body service.AssignFacultyRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/faculty-assignments [post]
func (h *BatchHandler) AssignFaculty(c *gin.Context) {
	var req service.AssignFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	assignment, err := h.allocator.AssignFaculty(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// PendingPool godoc
// @Summary Show the unassigned students of a year
// @Tags Batches
// @Produce json
// @Param year path int true "Cohort year"
// @Success 200 {object} response.Envelope
// @Router /admin/students/pending/{year} [get]
func (h *BatchHandler) PendingPool(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	pool, err := h.queries.PendingPool(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool, nil)
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param year query int false "Cohort year"
// @Param all query bool false "Include inactive batches"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	filter := models.BatchFilter{ActiveOnly: c.Query("all") != "true"}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
			return
		}
		filter.Year = &year
	}
	items, err := h.queries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}

// Get godoc
// @Summary Get a batch with its students and supervisors
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	detail, err := h.queries.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// RosterPDF godoc
// @Summary Download a batch roster as PDF
// @Tags Batches
// @Produce application/pdf
// @Param id path string true "Batch ID"
// @Success 200 {file} binary
// @Router /batches/{id}/roster.pdf [get]
func (h *BatchHandler) RosterPDF(c *gin.Context) {
	h.roster(c, "pdf")
}

// RosterCSV godoc
// @Summary Download a batch roster as CSV
// @Tags Batches
// @Produce text/csv
// @Param id path string true "Batch ID"
// @Success 200 {file} binary
// @Router /batches/{id}/roster.csv [get]
func (h *BatchHandler) RosterCSV(c *gin.Context) {
	h.roster(c, "csv")
}

func (h *BatchHandler) roster(c *gin.Context, format string) {
	file, err := h.queries.Roster(c.Request.Context(), c.Param("id"), format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

// FacultyAssignments godoc
// @Summary List the caller's supervised batches
// @Tags Faculty
// @Produce json
// @Param year query int false "Cohort year (defaults to the current year)"
// @Success 200 {object} response.Envelope
// @Router /faculty/assignments [get]
func (h *BatchHandler) FacultyAssignments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	year := currentYear()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
			return
		}
		year = parsed
	}
	resp, err := h.queries.FacultyAssignments(c.Request.Context(), claims.UserID, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

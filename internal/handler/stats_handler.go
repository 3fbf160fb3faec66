package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batchplan-api/internal/models"
	"github.com/noah-isme/batchplan-api/pkg/response"
)

type statsService interface {
	Get(ctx context.Context) (*models.AdminStats, bool, error)
}

// StatsHandler serves the admin overview.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler builds the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Get godoc
// @Summary Admin overview counters
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, hit, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencivic/assessing-api/internal/fiscal"
	"github.com/opencivic/assessing-api/internal/services"
)

// PhaseReporter classifies a moment into the application cycle phases.
type PhaseReporter interface {
	Report(at time.Time, year int, exemptionType fiscal.ExemptionType) services.PhaseReport
}

// PhaseHandler serves the filing-phase endpoint.
type PhaseHandler struct {
	service PhaseReporter
}

// NewPhaseHandler creates a new PhaseHandler.
func NewPhaseHandler(service PhaseReporter) *PhaseHandler {
	return &PhaseHandler{service: service}
}

type phaseQuery struct {
	Date          string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Year          int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	ExemptionType string `form:"exemptionType" binding:"omitempty,oneof=Residential Personal"`
}

// GetPhases handles GET /api/v1/phases.
func (h *PhaseHandler) GetPhases(c *gin.Context) {
	var query phaseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	at, ok := parseDateParam(c, query.Date)
	if !ok {
		return
	}

	report := h.service.Report(at, query.Year, fiscal.ExemptionType(query.ExemptionType))
	c.JSON(http.StatusOK, report)
}

package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/opencivic/assessing-api/internal/egis"
	"github.com/opencivic/assessing-api/internal/errors"
	"github.com/opencivic/assessing-api/internal/services"
)

// PropertyGetter fetches an aggregated parcel record.
type PropertyGetter interface {
	GetProperty(ctx context.Context, parcelID string, period egis.Period, asOf time.Time) (*services.PropertyResponse, error)
}

// PropertyHandler serves the aggregated parcel endpoint.
type PropertyHandler struct {
	service PropertyGetter
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(service PropertyGetter) *PropertyHandler {
	return &PropertyHandler{service: service}
}

type parcelURI struct {
	PID string `uri:"pid" binding:"required,len=10,numeric"`
}

type parcelQuery struct {
	FiscalYear int    `form:"fiscalYear" binding:"omitempty,min=2000,max=2100"`
	Quarter    string `form:"quarter" binding:"required_with=FiscalYear,omitempty,oneof=1 3"`
	BillYear   int    `form:"billYear" binding:"omitempty,min=2000,max=2100"`
	Date       string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// GetParcel handles GET /api/v1/parcels/:pid.
func (h *PropertyHandler) GetParcel(c *gin.Context) {
	var uri parcelURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	var query parcelQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	asOf, ok := parseDateParam(c, query.Date)
	if !ok {
		return
	}

	period := egis.Period{
		FiscalYear: query.FiscalYear,
		Quarter:    query.Quarter,
		BillYear:   query.BillYear,
	}

	record, err := h.service.GetProperty(c.Request.Context(), uri.PID, period, asOf)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrInvalidParcelID):
			errors.BadRequest(c, "Invalid parcel ID", nil)
		case stderrors.Is(err, services.ErrParcelNotFound):
			errors.NotFound(c, "Parcel not found")
		default:
			errors.UpstreamError(c, "Property data source unavailable", err)
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// bindError routes binding failures through the shared error envelope.
func bindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		errors.ValidationError(c, validationErrors)
		return
	}
	errors.BadRequest(c, "Invalid request parameters", nil)
}

// parseDateParam parses an optional 2006-01-02 query value. The zero time
// means "not supplied". Reports false after writing the error response.
func parseDateParam(c *gin.Context, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		errors.BadRequest(c, "Invalid date, expected YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return t.UTC(), true
}

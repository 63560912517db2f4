package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencivic/assessing-api/internal/errors"
	"github.com/opencivic/assessing-api/internal/services"
)

// FormProvider resolves and registers cached application forms.
type FormProvider interface {
	GetCachedForm(ctx context.Context, parcelID, formType string, asOf time.Time) (*services.CachedFormLink, error)
	RegisterForm(ctx context.Context, parcelID, formType string, pdf []byte, asOf time.Time) (*services.CachedFormLink, error)
}

// FormHandler serves the generated-form cache endpoints.
type FormHandler struct {
	service FormProvider
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(service FormProvider) *FormHandler {
	return &FormHandler{service: service}
}

type formURI struct {
	PID      string `uri:"pid" binding:"required,len=10,numeric"`
	FormType string `uri:"formType" binding:"required,oneof=abatement residential_exemption personal_exemption"`
}

type formQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// GetForm handles GET /api/v1/forms/:pid/:formType.
func (h *FormHandler) GetForm(c *gin.Context) {
	uri, asOf, ok := h.bind(c)
	if !ok {
		return
	}

	link, err := h.service.GetCachedForm(c.Request.Context(), uri.PID, uri.FormType, asOf)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// RegisterForm handles POST /api/v1/forms/:pid/:formType. The raw request body
// is the rendered PDF.
func (h *FormHandler) RegisterForm(c *gin.Context) {
	uri, asOf, ok := h.bind(c)
	if !ok {
		return
	}

	pdf, err := c.GetRawData()
	if err != nil || len(pdf) == 0 {
		errors.BadRequest(c, "Request body must be the PDF to cache", nil)
		return
	}

	link, err := h.service.RegisterForm(c.Request.Context(), uri.PID, uri.FormType, pdf, asOf)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (h *FormHandler) bind(c *gin.Context) (formURI, time.Time, bool) {
	var uri formURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return formURI{}, time.Time{}, false
	}
	var query formQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return formURI{}, time.Time{}, false
	}
	asOf, ok := parseDateParam(c, query.Date)
	if !ok {
		return formURI{}, time.Time{}, false
	}
	return uri, asOf, true
}

func (h *FormHandler) writeError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, services.ErrInvalidParcelID), stderrors.Is(err, services.ErrInvalidFormType):
		errors.BadRequest(c, "Invalid form request", nil)
	case stderrors.Is(err, services.ErrFormNotCached):
		errors.NotFound(c, "No form generated for this fiscal year")
	default:
		errors.InternalServerError(c, "Form cache unavailable", err)
	}
}

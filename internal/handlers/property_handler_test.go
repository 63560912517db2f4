package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivic/assessing-api/internal/egis"
	"github.com/opencivic/assessing-api/internal/fiscal"
	"github.com/opencivic/assessing-api/internal/logger"
	"github.com/opencivic/assessing-api/internal/middleware"
	"github.com/opencivic/assessing-api/internal/models"
	"github.com/opencivic/assessing-api/internal/services"
)

type stubPropertyService struct {
	response *services.PropertyResponse
	err      error

	gotParcelID string
	gotPeriod   egis.Period
	gotAsOf     time.Time
}

func (s *stubPropertyService) GetProperty(_ context.Context, parcelID string, period egis.Period, asOf time.Time) (*services.PropertyResponse, error) {
	s.gotParcelID = parcelID
	s.gotPeriod = period
	s.gotAsOf = asOf
	return s.response, s.err
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	log := logger.New("test")
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	return router
}

func propertyRouter(svc PropertyGetter) *gin.Engine {
	router := newTestRouter()
	handler := NewPropertyHandler(svc)
	router.GET("/api/v1/parcels/:pid", handler.GetParcel)
	return router
}

func TestGetParcelOK(t *testing.T) {
	svc := &stubPropertyService{
		response: &services.PropertyResponse{
			PropertyRecord: models.PropertyRecord{
				Overview: models.Overview{
					ParcelID:   "0123456789",
					Address:    "12 Milk St, Boston, 02108",
					FiscalYear: 2026,
					Quarter:    "3",
				},
			},
			TaxRates:            fiscal.TaxRates{Residential: 11.58, Commercial: 25.96},
			OwnerDisclaimerDate: "January 2026",
		},
	}
	router := propertyRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels/0123456789", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	overview := body["overview"].(map[string]interface{})
	assert.Equal(t, "0123456789", overview["parcelId"])
	rates := body["taxRates"].(map[string]interface{})
	assert.Equal(t, 11.58, rates["residential"])
	assert.Equal(t, "January 2026", body["ownerDisclaimerDate"])
}

func TestGetParcelForwardsPeriodAndDate(t *testing.T) {
	svc := &stubPropertyService{response: &services.PropertyResponse{}}
	router := propertyRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/parcels/0123456789?fiscalYear=2025&quarter=1&billYear=2025&date=2025-08-01", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, egis.Period{FiscalYear: 2025, Quarter: "1", BillYear: 2025}, svc.gotPeriod)
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), svc.gotAsOf)
}

func TestGetParcelValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"short pid", "/api/v1/parcels/012345678"},
		{"alpha pid", "/api/v1/parcels/0123W56789"},
		{"bad quarter", "/api/v1/parcels/0123456789?fiscalYear=2025&quarter=2"},
		{"quarter missing with fiscalYear", "/api/v1/parcels/0123456789?fiscalYear=2025"},
		{"bad date", "/api/v1/parcels/0123456789?date=08-01-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := propertyRouter(&stubPropertyService{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body, "error")
		})
	}
}

func TestGetParcelNotFound(t *testing.T) {
	svc := &stubPropertyService{err: services.ErrParcelNotFound}
	router := propertyRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels/9999999999", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	detail := body["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", detail["code"])
}

func TestGetParcelUpstreamFailure(t *testing.T) {
	svc := &stubPropertyService{err: context.DeadlineExceeded}
	router := propertyRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels/0123456789", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	detail := body["error"].(map[string]interface{})
	assert.Equal(t, "UPSTREAM_ERROR", detail["code"])
	assert.NotEmpty(t, detail["request_id"])
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/opencivic/assessing-api/internal/egis"
	"github.com/opencivic/assessing-api/internal/fiscal"
	"github.com/opencivic/assessing-api/internal/logger"
	"github.com/opencivic/assessing-api/internal/models"
)

// Service errors that handlers translate into HTTP status codes.
var (
	ErrInvalidParcelID = errors.New("parcel ID must be exactly 10 digits")
	ErrParcelNotFound  = errors.New("parcel not found")
)

// PropertyAggregator assembles a property record from the GIS layers.
type PropertyAggregator interface {
	Aggregate(ctx context.Context, parcelID string, period egis.Period) (*models.PropertyRecord, error)
}

// PropertyResponse is the full parcel payload: the aggregated record plus the
// rate and disclaimer context resolved for the record's fiscal year.
type PropertyResponse struct {
	models.PropertyRecord
	TaxRates            fiscal.TaxRates `json:"taxRates"`
	OwnerDisclaimerDate string          `json:"ownerDisclaimerDate"`
}

// PropertyService aggregates parcel data and attaches fiscal context.
type PropertyService struct {
	aggregator PropertyAggregator
	resolver   *fiscal.ConfigResolver
	log        *logger.Logger
	now        func() time.Time
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(aggregator PropertyAggregator, resolver *fiscal.ConfigResolver, log *logger.Logger) *PropertyService {
	return &PropertyService{
		aggregator: aggregator,
		resolver:   resolver,
		log:        log,
		now:        time.Now,
	}
}

// GetProperty returns the aggregated record for a parcel. asOf overrides "now"
// for disclaimer resolution; the zero value means the current moment.
func (s *PropertyService) GetProperty(ctx context.Context, parcelID string, period egis.Period, asOf time.Time) (*PropertyResponse, error) {
	if !ValidParcelID(parcelID) {
		return nil, ErrInvalidParcelID
	}

	record, err := s.aggregator.Aggregate(ctx, parcelID, period)
	if err != nil {
		return nil, err
	}

	// A parcel with no assessing row and no value history does not exist in
	// the source system.
	if record.Overview.FiscalYear == 0 && len(record.PropertyValue) == 0 {
		return nil, ErrParcelNotFound
	}

	if asOf.IsZero() {
		asOf = s.now()
	}

	rateYear := record.Overview.FiscalYear
	if rateYear == 0 {
		rateYear = fiscal.FiscalYear(asOf)
	}

	return &PropertyResponse{
		PropertyRecord:      *record,
		TaxRates:            s.resolver.TaxRates(rateYear),
		OwnerDisclaimerDate: s.resolver.OwnerDisclaimerDate(asOf),
	}, nil
}

// ValidParcelID reports whether id is a well-formed 10-digit parcel number.
func ValidParcelID(id string) bool {
	if len(id) != 10 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

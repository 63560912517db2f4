package fiscal

import "time"

// TaxRates holds the residential and commercial tax rates for one fiscal year,
// expressed per $1,000 of assessed value.
type TaxRates struct {
	Residential float64 `mapstructure:"residential" json:"residential"`
	Commercial  float64 `mapstructure:"commercial" json:"commercial"`
}

// DisclaimerDates holds the owner-data-as-of disclaimer date strings for the
// two billing halves of a fiscal year.
type DisclaimerDates struct {
	Q1 string `mapstructure:"q1" json:"q1"`
	Q3 string `mapstructure:"q3" json:"q3"`
}

// YearConfig is the configured data for a single fiscal year.
type YearConfig struct {
	TaxRates             TaxRates        `mapstructure:"tax_rates"`
	OwnerDisclaimerDates DisclaimerDates `mapstructure:"owner_disclaimer_dates"`
}

// Defaults supplies the values used for fiscal years the table does not cover
// and that are not beyond the latest configured year.
type Defaults struct {
	TaxRates            TaxRates `mapstructure:"tax_rates"`
	OwnerDisclaimerDate string   `mapstructure:"owner_disclaimer_date"`
}

// ConfigResolver answers rate and disclaimer lookups against an immutable
// year-keyed table. Future years forward-fill from the latest configured year
// (absent an update, current rates are assumed to persist); unconfigured past
// years fall back to the static defaults instead, since historical rates are
// knowable and must not be guessed from a later year.
type ConfigResolver struct {
	years    map[int]YearConfig
	defaults Defaults
	maxYear  int
}

// NewConfigResolver builds a resolver over the given table. The table is not
// copied; callers must treat it as read-only after construction.
func NewConfigResolver(years map[int]YearConfig, defaults Defaults) *ConfigResolver {
	max := 0
	for y := range years {
		if y > max {
			max = y
		}
	}
	return &ConfigResolver{years: years, defaults: defaults, maxYear: max}
}

// TaxRates resolves the rates for a fiscal year: exact match first, then
// forward-fill from the latest configured year for later years, then the
// static defaults.
func (r *ConfigResolver) TaxRates(fiscalYear int) TaxRates {
	if cfg, ok := r.years[fiscalYear]; ok {
		return cfg.TaxRates
	}
	if r.maxYear > 0 && fiscalYear > r.maxYear {
		return r.years[r.maxYear].TaxRates
	}
	return r.defaults.TaxRates
}

// OwnerDisclaimerDate resolves the owner-data disclaimer date for a calendar
// date. The bucket split reuses the q1/q3 naming of the billing quarters: q1
// is Jul-Dec, q3 is Jan-Jun. Beyond the latest configured year the most recent
// update wins (q3, falling back to q1); otherwise unconfigured lookups get the
// static default.
func (r *ConfigResolver) OwnerDisclaimerDate(t time.Time) string {
	fy := FiscalYear(t)
	bucket := BillingQuarter(t)

	if cfg, ok := r.years[fy]; ok {
		if v := disclaimerFor(cfg, bucket); v != "" {
			return v
		}
	} else if r.maxYear > 0 && fy > r.maxYear {
		latest := r.years[r.maxYear]
		if latest.OwnerDisclaimerDates.Q3 != "" {
			return latest.OwnerDisclaimerDates.Q3
		}
		if latest.OwnerDisclaimerDates.Q1 != "" {
			return latest.OwnerDisclaimerDates.Q1
		}
	}
	return r.defaults.OwnerDisclaimerDate
}

func disclaimerFor(cfg YearConfig, q Quarter) string {
	if q == QuarterPreliminary {
		return cfg.OwnerDisclaimerDates.Q1
	}
	return cfg.OwnerDisclaimerDates.Q3
}

package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiscalYearRoundTrip(t *testing.T) {
	// Jan 1 through Jun 30 of year Y belongs to fiscal year Y; Jul 1 through
	// Dec 31 belongs to Y+1.
	for year := 2020; year <= 2030; year++ {
		d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		for d.Year() == year {
			expected := year
			if d.Month() >= time.July {
				expected = year + 1
			}
			assert.Equal(t, expected, FiscalYear(d), "date %s", d.Format("2006-01-02"))
			d = d.AddDate(0, 0, 1)
		}
	}
}

func TestFiscalYearBoundary(t *testing.T) {
	assert.Equal(t, 2026, FiscalYear(time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 2027, FiscalYear(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBillingQuarter(t *testing.T) {
	testCases := []struct {
		month    time.Month
		expected Quarter
	}{
		{time.January, QuarterActual},
		{time.June, QuarterActual},
		{time.July, QuarterPreliminary},
		{time.December, QuarterPreliminary},
	}

	for _, tc := range testCases {
		d := time.Date(2026, tc.month, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, tc.expected, BillingQuarter(d), "month %s", tc.month)
	}
}

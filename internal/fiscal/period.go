package fiscal

import "time"

// Quarter identifies a billing half of the fiscal year. The upstream tax data
// only distinguishes the preliminary (Q1) and actual (Q3) billing runs, so "2"
// and "4" never appear.
type Quarter string

const (
	// QuarterPreliminary covers July through December.
	QuarterPreliminary Quarter = "1"
	// QuarterActual covers January through June.
	QuarterActual Quarter = "3"
)

// FiscalYear returns the fiscal year a calendar date belongs to. Fiscal years
// run July 1 through June 30 and are named after the calendar year in which
// they end, so July onward maps to the next calendar year.
func FiscalYear(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year() + 1
	}
	return t.Year()
}

// BillingQuarter returns the billing quarter for a calendar date: "1" for the
// preliminary half (Jul-Dec), "3" for the actual half (Jan-Jun).
func BillingQuarter(t time.Time) Quarter {
	if t.Month() >= time.July {
		return QuarterPreliminary
	}
	return QuarterActual
}

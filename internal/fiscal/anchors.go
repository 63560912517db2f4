package fiscal

import "time"

// Temporal anchors are the fixed milestones of the assessing calendar. Each is a
// pure function of the calendar year; callers never read the process clock here.
// All anchors are midnight UTC on the milestone date.

// NewApplicationPeriodStart returns January 1 of the given year, the opening of
// the abatement and exemption application window.
func NewApplicationPeriodStart(year int) time.Time {
	return date(year, time.January, 1)
}

// AbatementDeadline returns the abatement filing deadline for the given year:
// February 1 shifted to the following Monday when it lands on a weekend.
func AbatementDeadline(year int) time.Time {
	return nextBusinessMonday(date(year, time.February, 1))
}

// AbatementGraceDeadline returns the end of the abatement grace period,
// 28 days after the filing deadline.
func AbatementGraceDeadline(year int) time.Time {
	return AbatementDeadline(year).AddDate(0, 0, 28)
}

// ExemptionsInProgress returns March 1 of the given year, when submitted
// exemption applications enter review.
func ExemptionsInProgress(year int) time.Time {
	return date(year, time.March, 1)
}

// ExemptionDeadline returns the exemption filing deadline for the given year:
// April 1 shifted to the following Monday when it lands on a weekend.
func ExemptionDeadline(year int) time.Time {
	return nextBusinessMonday(date(year, time.April, 1))
}

// FiscalYearStart returns July 1 of the given calendar year, the first day of
// the fiscal year that ends the following June 30.
func FiscalYearStart(year int) time.Time {
	return date(year, time.July, 1)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// nextBusinessMonday shifts a weekend date forward to Monday: Saturday moves
// two days, Sunday one. Weekdays pass through unchanged. This rule applies only
// to filing deadlines, never to the fixed calendar anchors.
func nextBusinessMonday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

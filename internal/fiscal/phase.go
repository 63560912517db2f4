package fiscal

import (
	"strconv"
	"time"
)

// DeadlineFormat is how deadline dates are rendered into message parameters for
// the content layer ("February 3, 2025").
const DeadlineFormat = "January 2, 2006"

// AbatementPhase is the closed set of states the abatement application cycle
// can be in.
type AbatementPhase int

const (
	// AbatementOpen means the filing window is open (Jan 1 through the
	// deadline, inclusive on both ends).
	AbatementOpen AbatementPhase = iota
	// AbatementAfterDeadline covers the stretch between the filing deadline
	// and the start of the next fiscal year.
	AbatementAfterDeadline
	// AbatementPreliminary covers the preliminary-billing half of the fiscal
	// year (Jul 1 through Dec 31).
	AbatementPreliminary
)

// String returns the wire label for the phase.
func (p AbatementPhase) String() string {
	switch p {
	case AbatementOpen:
		return "open"
	case AbatementAfterDeadline:
		return "after_deadline"
	default:
		return "preliminary"
	}
}

// ExemptionPhase is the closed set of states the exemption application cycle
// can be in.
type ExemptionPhase int

const (
	// ExemptionBeforeJan1 means the evaluated year's window has not opened yet.
	ExemptionBeforeJan1 ExemptionPhase = iota
	// ExemptionOpen means the filing window is open (Jan 1 through the
	// deadline, inclusive on both ends).
	ExemptionOpen
	// ExemptionAfterDeadline covers the deadline through June 30.
	ExemptionAfterDeadline
	// ExemptionPreliminary covers Jul 1 through Dec 31 of the evaluated year.
	ExemptionPreliminary
)

// String returns the wire label for the phase.
func (p ExemptionPhase) String() string {
	switch p {
	case ExemptionOpen:
		return "open"
	case ExemptionAfterDeadline:
		return "after_deadline"
	case ExemptionPreliminary:
		return "preliminary"
	default:
		return "before_jan1"
	}
}

// IsPreliminary reports whether application status flags carry meaning for
// display. Outside the preliminary phase the current fiscal year's
// granted/approved flags must be suppressed by the presenter.
func (p ExemptionPhase) IsPreliminary() bool {
	return p == ExemptionPreliminary
}

// ExemptionType labels which exemption program a message describes. It never
// affects phase classification.
type ExemptionType string

const (
	ExemptionResidential ExemptionType = "Residential"
	ExemptionPersonal    ExemptionType = "Personal"
)

// AbatementResult is the outcome of classifying a moment in the abatement
// cycle, with the parameters the content layer needs to render the
// phase-specific message.
type AbatementResult struct {
	Phase    AbatementPhase
	Params   map[string]string
	Deadline *time.Time
}

// ExemptionResult is the outcome of classifying a moment in the exemption
// cycle.
type ExemptionResult struct {
	Phase    ExemptionPhase
	Params   map[string]string
	Deadline *time.Time
}

// ClassifyAbatement places now into the abatement cycle. The branch year is
// always derived from now itself; referenceYear only decides which fiscal
// year's abatement the message text talks about (its applications govern the
// following fiscal year). The three windows tile the calendar year of now
// exactly, so the trailing default is unreachable in practice and exists only
// as a safety net.
func ClassifyAbatement(now time.Time, referenceYear int) AbatementResult {
	year := now.Year()
	windowOpen := NewApplicationPeriodStart(year)
	deadline := AbatementDeadline(year)
	fyStart := FiscalYearStart(year)

	switch {
	case !now.Before(windowOpen) && !now.After(deadline):
		return AbatementResult{
			Phase: AbatementOpen,
			Params: map[string]string{
				"fiscalYear": strconv.Itoa(referenceYear + 1),
				"deadline":   deadline.Format(DeadlineFormat),
			},
			Deadline: &deadline,
		}
	case now.After(deadline) && now.Before(fyStart):
		return AbatementResult{
			Phase: AbatementAfterDeadline,
			Params: map[string]string{
				"fiscalYear":          strconv.Itoa(referenceYear + 1),
				"deadline":            deadline.Format(DeadlineFormat),
				"nextApplicationYear": strconv.Itoa(year + 1),
			},
			Deadline: &deadline,
		}
	case !now.Before(fyStart) && now.Before(NewApplicationPeriodStart(year+1)):
		return AbatementResult{
			Phase: AbatementPreliminary,
			Params: map[string]string{
				"fiscalYear": strconv.Itoa(FiscalYear(now)),
			},
		}
	default:
		return AbatementResult{Phase: AbatementPreliminary, Params: map[string]string{}}
	}
}

// ClassifyExemption places now into the exemption cycle evaluated against the
// anchors of year. Unlike the abatement classifier, year drives branch
// selection here. Branch order resolves the deadline-instant tie in favor of
// open: a filing at exactly the deadline timestamp is on time.
func ClassifyExemption(now time.Time, year int, typ ExemptionType) ExemptionResult {
	windowOpen := NewApplicationPeriodStart(year)
	deadline := ExemptionDeadline(year)
	fyStart := FiscalYearStart(year)

	base := map[string]string{
		"exemptionType": string(typ),
		"fiscalYear":    strconv.Itoa(year + 1),
	}

	switch {
	case now.Before(windowOpen):
		return ExemptionResult{Phase: ExemptionBeforeJan1, Params: base}
	case !now.After(deadline):
		base["deadline"] = deadline.Format(DeadlineFormat)
		return ExemptionResult{Phase: ExemptionOpen, Params: base, Deadline: &deadline}
	case now.Before(fyStart):
		base["deadline"] = deadline.Format(DeadlineFormat)
		return ExemptionResult{Phase: ExemptionAfterDeadline, Params: base, Deadline: &deadline}
	case now.Before(NewApplicationPeriodStart(year + 1)):
		return ExemptionResult{Phase: ExemptionPreliminary, Params: base}
	default:
		return ExemptionResult{Phase: ExemptionBeforeJan1, Params: map[string]string{}}
	}
}

// ExemptionStanding captures a parcel's current-year application status.
// Granted tracks the dollar amount, approved tracks whether an application was
// submitted; the two are independent.
type ExemptionStanding struct {
	Granted  bool
	Approved bool
}

// NewExemptionStanding derives standing from the exemption amount and the
// application flag. An exemption is granted when its amount is positive.
func NewExemptionStanding(amount float64, applied bool) ExemptionStanding {
	return ExemptionStanding{
		Granted:  amount > 0,
		Approved: applied,
	}
}

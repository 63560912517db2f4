package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestExemptionPhaseTotalityAndOrder(t *testing.T) {
	// Walk every day from Jan 1, 2025 through Dec 31, 2026 evaluating against
	// year 2026. Phases must appear in chronological order with no gaps:
	// before_jan1, open, after_deadline, preliminary.
	order := map[ExemptionPhase]int{
		ExemptionBeforeJan1:    0,
		ExemptionOpen:          1,
		ExemptionAfterDeadline: 2,
		ExemptionPreliminary:   3,
	}

	prev := -1
	for d := utc(2025, time.January, 1); d.Before(utc(2027, time.January, 1)); d = d.AddDate(0, 0, 1) {
		result := ClassifyExemption(d, 2026, ExemptionResidential)
		rank, known := order[result.Phase]
		require.True(t, known, "unknown phase %v at %s", result.Phase, d)
		require.GreaterOrEqual(t, rank, prev, "phase went backwards at %s", d)
		require.LessOrEqual(t, rank-prev, 1, "phase skipped a state at %s", d)
		prev = rank
	}
	assert.Equal(t, order[ExemptionPreliminary], prev)
}

func TestExemptionDeadlineInstantIsOpen(t *testing.T) {
	deadline := ExemptionDeadline(2026)

	// The deadline instant satisfies both the open upper bound and the
	// after_deadline lower bound; branch order must award it to open.
	atDeadline := ClassifyExemption(deadline, 2026, ExemptionResidential)
	assert.Equal(t, ExemptionOpen, atDeadline.Phase)

	oneTickLater := ClassifyExemption(deadline.Add(time.Nanosecond), 2026, ExemptionResidential)
	assert.Equal(t, ExemptionAfterDeadline, oneTickLater.Phase)
}

func TestExemptionPhaseBoundaries(t *testing.T) {
	testCases := []struct {
		name     string
		now      time.Time
		expected ExemptionPhase
	}{
		{"dec 31 previous year", utc(2025, time.December, 31), ExemptionBeforeJan1},
		{"jan 1 opens the window", utc(2026, time.January, 1), ExemptionOpen},
		{"mid window", utc(2026, time.March, 15), ExemptionOpen},
		{"day after deadline", ExemptionDeadline(2026).AddDate(0, 0, 1), ExemptionAfterDeadline},
		{"jun 30 still after deadline", utc(2026, time.June, 30), ExemptionAfterDeadline},
		{"jul 1 starts preliminary", utc(2026, time.July, 1), ExemptionPreliminary},
		{"dec 31 still preliminary", utc(2026, time.December, 31), ExemptionPreliminary},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ClassifyExemption(tc.now, 2026, ExemptionPersonal)
			assert.Equal(t, tc.expected, result.Phase)
		})
	}
}

func TestExemptionAfterEvaluatedYearFallsBack(t *testing.T) {
	result := ClassifyExemption(utc(2027, time.March, 1), 2026, ExemptionResidential)
	assert.Equal(t, ExemptionBeforeJan1, result.Phase)
	assert.Empty(t, result.Params)
}

func TestExemptionTypeIsMessageOnly(t *testing.T) {
	now := utc(2026, time.February, 10)
	residential := ClassifyExemption(now, 2026, ExemptionResidential)
	personal := ClassifyExemption(now, 2026, ExemptionPersonal)

	assert.Equal(t, residential.Phase, personal.Phase)
	assert.Equal(t, "Residential", residential.Params["exemptionType"])
	assert.Equal(t, "Personal", personal.Params["exemptionType"])
}

func TestExemptionOpenParams(t *testing.T) {
	// Worked example: March 15, 2026 precedes the Apr 1, 2026 deadline, so a
	// Personal exemption for 2026 is still open.
	result := ClassifyExemption(utc(2026, time.March, 15), 2026, ExemptionPersonal)

	require.Equal(t, ExemptionOpen, result.Phase)
	require.NotNil(t, result.Deadline)
	assert.Equal(t, utc(2026, time.April, 1), *result.Deadline)
	assert.Equal(t, "April 1, 2026", result.Params["deadline"])
	assert.Equal(t, "2027", result.Params["fiscalYear"])
}

func TestAbatementPhases(t *testing.T) {
	testCases := []struct {
		name     string
		now      time.Time
		expected AbatementPhase
	}{
		{"jan 1 opens the window", utc(2026, time.January, 1), AbatementOpen},
		{"deadline day is open", AbatementDeadline(2026), AbatementOpen},
		{"day after deadline", AbatementDeadline(2026).AddDate(0, 0, 1), AbatementAfterDeadline},
		{"spring is after deadline", utc(2026, time.May, 1), AbatementAfterDeadline},
		{"jun 30 still after deadline", utc(2026, time.June, 30), AbatementAfterDeadline},
		{"jul 1 starts preliminary", utc(2026, time.July, 1), AbatementPreliminary},
		{"dec 31 still preliminary", utc(2026, time.December, 31), AbatementPreliminary},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ClassifyAbatement(tc.now, 2026)
			assert.Equal(t, tc.expected, result.Phase)
		})
	}
}

func TestAbatementCoversEveryDay(t *testing.T) {
	// The branch year comes from now itself, so the three windows tile any
	// calendar year; no date reaches the defensive default.
	for d := utc(2024, time.January, 1); d.Before(utc(2027, time.January, 1)); d = d.AddDate(0, 0, 1) {
		result := ClassifyAbatement(d, d.Year())
		assert.NotEmpty(t, result.Params, "empty params would mean the fallback fired at %s", d)
	}
}

func TestAbatementReferenceYearIsMessageOnly(t *testing.T) {
	now := utc(2026, time.January, 20)

	a := ClassifyAbatement(now, 2026)
	b := ClassifyAbatement(now, 2024)

	assert.Equal(t, a.Phase, b.Phase)
	assert.Equal(t, "2027", a.Params["fiscalYear"])
	assert.Equal(t, "2025", b.Params["fiscalYear"])
}

func TestAbatementDeadlineParamUsesShiftedDate(t *testing.T) {
	// Feb 1, 2026 is a Sunday; the message must show the shifted Monday.
	result := ClassifyAbatement(utc(2026, time.January, 15), 2026)

	require.Equal(t, AbatementOpen, result.Phase)
	assert.Equal(t, "February 2, 2026", result.Params["deadline"])
}

func TestExemptionStanding(t *testing.T) {
	assert.Equal(t, ExemptionStanding{Granted: true, Approved: true}, NewExemptionStanding(1500, true))
	assert.Equal(t, ExemptionStanding{Granted: true, Approved: false}, NewExemptionStanding(0.01, false))
	assert.Equal(t, ExemptionStanding{Granted: false, Approved: true}, NewExemptionStanding(0, true))
	assert.Equal(t, ExemptionStanding{Granted: false, Approved: false}, NewExemptionStanding(-10, false))
}

func TestIsPreliminary(t *testing.T) {
	assert.True(t, ExemptionPreliminary.IsPreliminary())
	assert.False(t, ExemptionOpen.IsPreliminary())
	assert.False(t, ExemptionAfterDeadline.IsPreliminary())
	assert.False(t, ExemptionBeforeJan1.IsPreliminary())
}

package services

import (
	"time"

	"github.com/opencivic/assessing-api/internal/fiscal"
	"github.com/opencivic/assessing-api/internal/logger"
)

// PhaseDetail is the wire form of one classified application cycle.
type PhaseDetail struct {
	Phase    string            `json:"phase"`
	Params   map[string]string `json:"params"`
	Deadline *string           `json:"deadline,omitempty"`
}

// PhaseReport bundles everything the frontend needs to render the filing
// guidance for a moment in time.
type PhaseReport struct {
	Date                string                 `json:"date"`
	FiscalYear          int                    `json:"fiscalYear"`
	Quarter             string                 `json:"quarter"`
	TaxRates            fiscal.TaxRates        `json:"taxRates"`
	OwnerDisclaimerDate string                 `json:"ownerDisclaimerDate"`
	Abatement           PhaseDetail            `json:"abatement"`
	Exemptions          map[string]PhaseDetail `json:"exemptions"`
}

// PhaseService classifies moments into abatement and exemption cycle phases.
type PhaseService struct {
	resolver *fiscal.ConfigResolver
	log      *logger.Logger
	now      func() time.Time
}

// NewPhaseService creates a new PhaseService.
func NewPhaseService(resolver *fiscal.ConfigResolver, log *logger.Logger) *PhaseService {
	return &PhaseService{
		resolver: resolver,
		log:      log,
		now:      time.Now,
	}
}

// Report classifies at against the cycles of year. A zero at means the current
// moment; a zero year means the calendar year of at. An empty exemptionType
// reports both programs, otherwise only the requested one.
func (s *PhaseService) Report(at time.Time, year int, exemptionType fiscal.ExemptionType) PhaseReport {
	if at.IsZero() {
		at = s.now()
	}
	if year == 0 {
		year = at.Year()
	}

	report := PhaseReport{
		Date:                at.Format("2006-01-02"),
		FiscalYear:          fiscal.FiscalYear(at),
		Quarter:             string(fiscal.BillingQuarter(at)),
		TaxRates:            s.resolver.TaxRates(fiscal.FiscalYear(at)),
		OwnerDisclaimerDate: s.resolver.OwnerDisclaimerDate(at),
		Abatement:           abatementDetail(fiscal.ClassifyAbatement(at, year)),
		Exemptions:          make(map[string]PhaseDetail),
	}

	types := []fiscal.ExemptionType{fiscal.ExemptionResidential, fiscal.ExemptionPersonal}
	if exemptionType != "" {
		types = []fiscal.ExemptionType{exemptionType}
	}
	for _, typ := range types {
		result := fiscal.ClassifyExemption(at, year, typ)
		report.Exemptions[exemptionKey(typ)] = exemptionDetail(result)
	}

	return report
}

func exemptionKey(typ fiscal.ExemptionType) string {
	if typ == fiscal.ExemptionPersonal {
		return "personal"
	}
	return "residential"
}

func abatementDetail(r fiscal.AbatementResult) PhaseDetail {
	return PhaseDetail{
		Phase:    r.Phase.String(),
		Params:   r.Params,
		Deadline: formatDeadline(r.Deadline),
	}
}

func exemptionDetail(r fiscal.ExemptionResult) PhaseDetail {
	return PhaseDetail{
		Phase:    r.Phase.String(),
		Params:   r.Params,
		Deadline: formatDeadline(r.Deadline),
	}
}

func formatDeadline(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

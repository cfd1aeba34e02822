package analytics

import (
	"time"

	"github.com/wellfield/rigops/internal/domain"
)

// GatedSnapshot is the capability-trimmed view of a StatsSnapshot. Buckets
// the caller may not see are omitted entirely rather than zeroed, so a
// consumer can tell "no access" from "no data".
type GatedSnapshot struct {
	NoAccess   bool                 `json:"no_access"`
	Filter     domain.FilterContext `json:"filter"`
	AnchorDate time.Time            `json:"anchor_date"`

	Today     *domain.PeriodTotals `json:"today,omitempty"`
	ThisMonth *domain.PeriodTotals `json:"this_month,omitempty"`
	ThisYear  *domain.PeriodTotals `json:"this_year,omitempty"`
	Overall   *domain.PeriodTotals `json:"overall,omitempty"`

	FinancialHealth *domain.FinancialHealth `json:"financial_health,omitempty"`
	Growth          *domain.Growth          `json:"growth,omitempty"`
	BalanceSheet    *domain.BalanceSheet    `json:"balance_sheet,omitempty"`
	CashFlow        *domain.CashFlow        `json:"cash_flow,omitempty"`

	Operational *domain.Operational   `json:"operational,omitempty"`
	TopRigs     []domain.RankedEntity `json:"top_rigs,omitempty"`

	TopClients       []domain.RankedEntity `json:"top_clients,omitempty"`
	JobTypeBreakdown []domain.RankedEntity `json:"job_type_breakdown,omitempty"`
}

// ApplyPermissions trims a snapshot to the caller's capability set.
//
// The financial capability covers the period buckets, ratios, growth,
// balance sheet and cash flow; operational covers fleet metrics and rig
// rankings; crm covers client rankings and the job-type breakdown. The hr
// capability grants nothing here since payroll KPIs live outside this
// service, but it still counts as access for the no-access signal.
func ApplyPermissions(snap *domain.StatsSnapshot, caps domain.Capabilities) *GatedSnapshot {
	gated := &GatedSnapshot{
		Filter:     snap.Filter,
		AnchorDate: snap.AnchorDate,
	}

	if caps.None() {
		gated.NoAccess = true
		return gated
	}

	if caps.Financial {
		gated.Today = &snap.Today
		gated.ThisMonth = &snap.ThisMonth
		gated.ThisYear = &snap.ThisYear
		gated.Overall = &snap.Overall
		gated.FinancialHealth = &snap.FinancialHealth
		gated.Growth = &snap.Growth
		gated.BalanceSheet = &snap.BalanceSheet
		gated.CashFlow = &snap.CashFlow
	}

	if caps.Operational {
		gated.Operational = &snap.Operational
		gated.TopRigs = snap.TopRigs
	}

	if caps.CRM {
		gated.TopClients = snap.TopClients
		gated.JobTypeBreakdown = snap.JobTypeBreakdown
	}

	return gated
}

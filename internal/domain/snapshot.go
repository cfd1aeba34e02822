package domain

import "time"

// PeriodTotals are the summed financial fields for one time bucket.
// Every field defaults to zero; consumers never branch on a missing key.
type PeriodTotals struct {
	TotalReports       int     `json:"total_reports"`
	TotalIncome        float64 `json:"total_income"`
	DrillingIncome     float64 `json:"drilling_income"`
	ServiceIncome      float64 `json:"service_income"`
	TotalExpenses      float64 `json:"total_expenses"`
	NetProfit          float64 `json:"net_profit"`
	GrossProfit        float64 `json:"gross_profit"`
	OutstandingRigFees float64 `json:"outstanding_rig_fees"`
}

// FinancialHealth carries the derived ratios. All divisions are guarded: a
// zero denominator yields 0, never NaN or Inf.
type FinancialHealth struct {
	ProfitMargin    float64 `json:"profit_margin"`
	GrossMargin     float64 `json:"gross_margin"`
	ExpenseRatio    float64 `json:"expense_ratio"`
	AvgProfitPerJob float64 `json:"avg_profit_per_job"`
	CostEfficiency  float64 `json:"cost_efficiency"`
	ProfitToCost    float64 `json:"profit_to_cost"`
}

// Growth compares this calendar month against the exact calendar-shifted
// previous month.
type Growth struct {
	IncomeGrowthPct  float64 `json:"income_growth_pct"`
	ExpenseGrowthPct float64 `json:"expense_growth_pct"`
	ProfitGrowthPct  float64 `json:"profit_growth_pct"`
	ReportGrowthPct  float64 `json:"report_growth_pct"`
	LastMonthIncome  float64 `json:"last_month_income"`
	LastMonthProfit  float64 `json:"last_month_profit"`
}

// BalanceSheet summarizes assets against liabilities.
type BalanceSheet struct {
	TotalAssets        float64 `json:"total_assets"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	NetWorth           float64 `json:"net_worth"`
	DebtToAssetRatio   float64 `json:"debt_to_asset_ratio"`
	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	WorkingCapital     float64 `json:"working_capital"`
}

// Operational carries rig-fleet and job-cadence metrics for the filtered
// range. Durations are stored in minutes and exposed in both units.
type Operational struct {
	RigUtilizationPct       float64 `json:"rig_utilization_pct"`
	AvgJobDurationMinutes   float64 `json:"avg_job_duration_minutes"`
	AvgJobDurationHours     float64 `json:"avg_job_duration_hours"`
	AvgDepthMeters          float64 `json:"avg_depth_meters"`
	ActiveRigCount          int     `json:"active_rig_count"`
	MaintenancePendingCount int     `json:"maintenance_pending_count"`
	JobsPerDay              float64 `json:"jobs_per_day"`
}

// CashFlow summarizes money in and out over the filtered range.
type CashFlow struct {
	CashIn      float64 `json:"cash_in"`
	CashOut     float64 `json:"cash_out"`
	NetCashFlow float64 `json:"net_cash_flow"`
}

// RankedEntity is one row of a top-clients / top-rigs / job-type ranking.
type RankedEntity struct {
	ID              int64   `json:"id,omitempty"`
	Name            string  `json:"name"`
	JobCount        int     `json:"job_count"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalProfit     float64 `json:"total_profit"`
	AvgProfitPerJob float64 `json:"avg_profit_per_job"`
}

// RigPerformanceRow is the per-rig derived record. Recomputed fully on each
// call; never incrementally maintained.
type RigPerformanceRow struct {
	Rig           Rig        `json:"rig"`
	JobCount      int        `json:"job_count"`
	TotalRPM      float64    `json:"total_rpm"`
	TotalRevenue  float64    `json:"total_revenue"`
	TotalProfit   float64    `json:"total_profit"`
	TotalExpenses float64    `json:"total_expenses"`
	RevenuePerRPM float64    `json:"revenue_per_rpm"`
	ProfitPerRPM  float64    `json:"profit_per_rpm"`
	ProfitMargin  float64    `json:"profit_margin_pct"`
	RPMProgress   float64    `json:"rpm_progress_pct"`
	LastJobDate   *time.Time `json:"last_job_date,omitempty"`
}

// StatsSnapshot is the complete result of one aggregation call. It has no
// identity beyond the FilterContext and anchor it was computed for, and is
// never persisted.
type StatsSnapshot struct {
	Filter     FilterContext `json:"filter"`
	AnchorDate time.Time     `json:"anchor_date"`

	Today     PeriodTotals `json:"today"`
	ThisMonth PeriodTotals `json:"this_month"`
	ThisYear  PeriodTotals `json:"this_year"`
	Overall   PeriodTotals `json:"overall"`

	FinancialHealth FinancialHealth `json:"financial_health"`
	Growth          Growth          `json:"growth"`
	BalanceSheet    BalanceSheet    `json:"balance_sheet"`
	Operational     Operational     `json:"operational"`
	CashFlow        CashFlow        `json:"cash_flow"`

	TopClients       []RankedEntity `json:"top_clients"`
	TopRigs          []RankedEntity `json:"top_rigs"`
	JobTypeBreakdown []RankedEntity `json:"job_type_breakdown"`

	// Diagnostics records why any sub-bucket degraded to zeros. Kept out of
	// API responses; surfaced only through logs.
	Diagnostics []string `json:"-"`
}

// Degraded reports whether any sub-computation fell back to defaults.
func (s *StatsSnapshot) Degraded() bool {
	return len(s.Diagnostics) > 0
}

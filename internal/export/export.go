// Package export renders computed snapshots and rig performance tables as
// CSV and XLSX downloads. The metric names written here follow the
// snapshot's JSON field names, which are the stable contract consumers
// depend on.
package export

import (
	"strconv"

	"github.com/wellfield/rigops/internal/domain"
)

// Section selects which part of the snapshot an export includes.
type Section string

// Export sections.
const (
	SectionAll         Section = "all"
	SectionFinancial   Section = "financial"
	SectionOperational Section = "operational"
)

// ParseSection validates a section token.
func ParseSection(s string) (Section, bool) {
	switch Section(s) {
	case SectionAll, SectionFinancial, SectionOperational:
		return Section(s), true
	default:
		return "", false
	}
}

// metricRow is one exported line: bucket, metric name, value.
type metricRow struct {
	Bucket string
	Name   string
	Value  float64
}

// financialRows flattens the financial buckets in a fixed order.
func financialRows(snap *domain.StatsSnapshot) []metricRow {
	rows := []metricRow{}
	for _, b := range []struct {
		name   string
		totals domain.PeriodTotals
	}{
		{"today", snap.Today},
		{"this_month", snap.ThisMonth},
		{"this_year", snap.ThisYear},
		{"overall", snap.Overall},
	} {
		rows = append(rows,
			metricRow{b.name, "total_reports", float64(b.totals.TotalReports)},
			metricRow{b.name, "total_income", b.totals.TotalIncome},
			metricRow{b.name, "drilling_income", b.totals.DrillingIncome},
			metricRow{b.name, "service_income", b.totals.ServiceIncome},
			metricRow{b.name, "total_expenses", b.totals.TotalExpenses},
			metricRow{b.name, "net_profit", b.totals.NetProfit},
			metricRow{b.name, "gross_profit", b.totals.GrossProfit},
			metricRow{b.name, "outstanding_rig_fees", b.totals.OutstandingRigFees},
		)
	}

	fh := snap.FinancialHealth
	rows = append(rows,
		metricRow{"financial_health", "profit_margin", fh.ProfitMargin},
		metricRow{"financial_health", "gross_margin", fh.GrossMargin},
		metricRow{"financial_health", "expense_ratio", fh.ExpenseRatio},
		metricRow{"financial_health", "avg_profit_per_job", fh.AvgProfitPerJob},
		metricRow{"financial_health", "cost_efficiency", fh.CostEfficiency},
		metricRow{"financial_health", "profit_to_cost", fh.ProfitToCost},
	)

	g := snap.Growth
	rows = append(rows,
		metricRow{"growth", "income_growth_pct", g.IncomeGrowthPct},
		metricRow{"growth", "expense_growth_pct", g.ExpenseGrowthPct},
		metricRow{"growth", "profit_growth_pct", g.ProfitGrowthPct},
		metricRow{"growth", "report_growth_pct", g.ReportGrowthPct},
	)

	bs := snap.BalanceSheet
	rows = append(rows,
		metricRow{"balance_sheet", "total_assets", bs.TotalAssets},
		metricRow{"balance_sheet", "total_liabilities", bs.TotalLiabilities},
		metricRow{"balance_sheet", "net_worth", bs.NetWorth},
		metricRow{"balance_sheet", "debt_to_asset_ratio", bs.DebtToAssetRatio},
		metricRow{"balance_sheet", "current_assets", bs.CurrentAssets},
		metricRow{"balance_sheet", "current_liabilities", bs.CurrentLiabilities},
		metricRow{"balance_sheet", "working_capital", bs.WorkingCapital},
	)

	cf := snap.CashFlow
	rows = append(rows,
		metricRow{"cash_flow", "cash_in", cf.CashIn},
		metricRow{"cash_flow", "cash_out", cf.CashOut},
		metricRow{"cash_flow", "net_cash_flow", cf.NetCashFlow},
	)

	return rows
}

// operationalRows flattens the operational bucket.
func operationalRows(snap *domain.StatsSnapshot) []metricRow {
	op := snap.Operational
	return []metricRow{
		{"operational", "rig_utilization_pct", op.RigUtilizationPct},
		{"operational", "avg_job_duration_minutes", op.AvgJobDurationMinutes},
		{"operational", "avg_job_duration_hours", op.AvgJobDurationHours},
		{"operational", "avg_depth_meters", op.AvgDepthMeters},
		{"operational", "active_rig_count", float64(op.ActiveRigCount)},
		{"operational", "maintenance_pending_count", float64(op.MaintenancePendingCount)},
		{"operational", "jobs_per_day", op.JobsPerDay},
	}
}

// sectionRows selects the metric rows for a section.
func sectionRows(snap *domain.StatsSnapshot, section Section) []metricRow {
	switch section {
	case SectionFinancial:
		return financialRows(snap)
	case SectionOperational:
		return operationalRows(snap)
	default:
		return append(financialRows(snap), operationalRows(snap)...)
	}
}

// includesRigs reports whether a section carries the rig performance table.
func includesRigs(section Section) bool {
	return section == SectionAll || section == SectionOperational
}

// rigHeader is the column order of the rig performance table.
var rigHeader = []string{
	"rig_name", "rig_code", "job_count", "total_rpm", "total_revenue",
	"total_profit", "total_expenses", "revenue_per_rpm", "profit_per_rpm",
	"profit_margin_pct", "rpm_progress_pct", "last_job_date",
}

func rigCells(row *domain.RigPerformanceRow) []string {
	lastJob := ""
	if row.LastJobDate != nil {
		lastJob = row.LastJobDate.Format(domain.DateLayout)
	}
	return []string{
		row.Rig.Name,
		row.Rig.Code,
		strconv.Itoa(row.JobCount),
		formatNumber(row.TotalRPM),
		formatNumber(row.TotalRevenue),
		formatNumber(row.TotalProfit),
		formatNumber(row.TotalExpenses),
		formatNumber(row.RevenuePerRPM),
		formatNumber(row.ProfitPerRPM),
		formatNumber(row.ProfitMargin),
		formatNumber(row.RPMProgress),
		lastJob,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

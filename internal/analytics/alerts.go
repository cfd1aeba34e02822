package analytics

import (
	"fmt"

	"github.com/wellfield/rigops/internal/domain"
)

// Alert rule thresholds.
const (
	lowMarginThreshold        = 10.0
	highLeverageThreshold     = 50.0
	maintenanceBacklogMinimum = 5
)

// Alert codes, the stable contract for delivery collaborators.
const (
	AlertCodeLowMargin          = "low_profit_margin"
	AlertCodeNegativeCashFlow   = "negative_cash_flow"
	AlertCodeHighLeverage       = "high_leverage"
	AlertCodeMaintenanceBacklog = "maintenance_backlog"
)

// EvaluateAlerts runs the stateless threshold rules against a computed
// snapshot. Rules are independent and order-insensitive; all triggered
// alerts are returned, never just the first.
func EvaluateAlerts(snap *domain.StatsSnapshot) []domain.Alert {
	alerts := []domain.Alert{}

	if m := snap.FinancialHealth.ProfitMargin; m > 0 && m < lowMarginThreshold {
		alerts = append(alerts, domain.Alert{
			Severity:      domain.SeverityWarning,
			Code:          AlertCodeLowMargin,
			Message:       fmt.Sprintf("profit margin %.1f%% is below %.0f%%", m, lowMarginThreshold),
			RelatedMetric: "financial_health.profit_margin",
		})
	}

	if ncf := snap.CashFlow.NetCashFlow; ncf < 0 {
		alerts = append(alerts, domain.Alert{
			Severity:      domain.SeverityWarning,
			Code:          AlertCodeNegativeCashFlow,
			Message:       fmt.Sprintf("net cash flow is negative (%.2f)", ncf),
			RelatedMetric: "cash_flow.net_cash_flow",
		})
	}

	if d := snap.BalanceSheet.DebtToAssetRatio; d > highLeverageThreshold {
		alerts = append(alerts, domain.Alert{
			Severity:      domain.SeverityWarning,
			Code:          AlertCodeHighLeverage,
			Message:       fmt.Sprintf("debt-to-asset ratio %.1f%% exceeds %.0f%%", d, highLeverageThreshold),
			RelatedMetric: "balance_sheet.debt_to_asset_ratio",
		})
	}

	if n := snap.Operational.MaintenancePendingCount; n > maintenanceBacklogMinimum {
		alerts = append(alerts, domain.Alert{
			Severity:      domain.SeverityInfo,
			Code:          AlertCodeMaintenanceBacklog,
			Message:       fmt.Sprintf("%d rigs are approaching scheduled maintenance", n),
			RelatedMetric: "operational.maintenance_pending_count",
		})
	}

	return alerts
}

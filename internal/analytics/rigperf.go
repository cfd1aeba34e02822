package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/wellfield/rigops/internal/domain"
)

const rpmProgressCap = 100

// ComputeRigPerformance derives per-rig utilization metrics for the filter
// context. Every active rig appears in the result, including rigs with no
// jobs in range, which carry zero metrics.
func (e *Engine) ComputeRigPerformance(ctx context.Context, f domain.FilterContext) ([]domain.RigPerformanceRow, error) {
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	rigs, err := e.source.ActiveRigs(qctx)
	if err != nil {
		return nil, fmt.Errorf("list active rigs: %w", err)
	}

	qctx2, cancel2 := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel2()

	records, err := e.source.JobRecords(qctx2, f)
	if err != nil {
		return nil, fmt.Errorf("query job records: %w", err)
	}

	return rigPerformance(rigs, records), nil
}

// rigPerformance is the pure calculation over already-fetched data.
func rigPerformance(rigs []domain.Rig, records []domain.JobRecord) []domain.RigPerformanceRow {
	rows := make([]domain.RigPerformanceRow, 0, len(rigs))
	byRig := make(map[int64]*domain.RigPerformanceRow, len(rigs))

	for i := range rigs {
		rows = append(rows, domain.RigPerformanceRow{Rig: rigs[i]})
	}
	for i := range rows {
		byRig[rows[i].Rig.ID] = &rows[i]
	}

	for i := range records {
		r := &records[i]
		row, ok := byRig[r.RigID]
		if !ok {
			// Record references a rig that is no longer active; it still
			// counts toward snapshot totals but not rig performance.
			continue
		}
		row.JobCount++
		row.TotalRPM += r.RPMDelta
		row.TotalRevenue += r.TotalIncome()
		row.TotalProfit += r.NetProfit
		row.TotalExpenses += r.TotalExpenses()

		reportDate := r.ReportDate
		if row.LastJobDate == nil || reportDate.After(*row.LastJobDate) {
			d := reportDate
			row.LastJobDate = &d
		}
	}

	for i := range rows {
		row := &rows[i]
		row.RevenuePerRPM = div(row.TotalRevenue, row.TotalRPM)
		row.ProfitPerRPM = div(row.TotalProfit, row.TotalRPM)
		row.ProfitMargin = pct(row.TotalProfit, row.TotalRevenue)
		row.RPMProgress = rpmProgress(row.Rig)
	}

	// Total RPM descending, revenue breaks ties, stable beyond that.
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].TotalRPM != rows[b].TotalRPM {
			return rows[a].TotalRPM > rows[b].TotalRPM
		}
		return rows[a].TotalRevenue > rows[b].TotalRevenue
	})

	return rows
}

// rpmProgress reports how close a rig's cumulative meter is to its scheduled
// maintenance, clamped to [0, 100]. A zero due-RPM means no schedule.
func rpmProgress(rig domain.Rig) float64 {
	if rig.MaintenanceDueAtRPM <= 0 {
		return 0
	}
	p := rig.CurrentRPM / rig.MaintenanceDueAtRPM * 100
	if p < 0 {
		return 0
	}
	if p > rpmProgressCap {
		return rpmProgressCap
	}
	return p
}

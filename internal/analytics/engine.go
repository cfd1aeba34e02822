package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/logger"
	"github.com/wellfield/rigops/internal/metrics"
)

// maintenanceWarnRatio is the RPM progress at which a rig counts toward the
// maintenance backlog.
const maintenanceWarnRatio = 0.9

const hoursPerDay = 24

// Options configures an Engine.
type Options struct {
	// QueryTimeout bounds each individual read against the record source.
	QueryTimeout time.Duration
	// TopLimit caps the ranked lists embedded in a snapshot.
	TopLimit int
	// Metrics is optional; when nil nothing is recorded.
	Metrics *metrics.Metrics
}

// Engine computes StatsSnapshots for filter contexts. It is stateless and
// safe for concurrent use; every computation is anchored to the request's
// own anchor date so all buckets of one snapshot agree on "now".
type Engine struct {
	source       RecordSource
	log          logger.Logger
	met          *metrics.Metrics
	queryTimeout time.Duration
	topLimit     int
}

// NewEngine creates an aggregation engine over the given record source.
func NewEngine(source RecordSource, log logger.Logger, opts Options) *Engine {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	return &Engine{
		source:       source,
		log:          log,
		met:          opts.Metrics,
		queryTimeout: opts.QueryTimeout,
		topLimit:     opts.TopLimit,
	}
}

// recordsResult carries one subset fetch outcome.
type recordsResult struct {
	records []domain.JobRecord
	err     error
}

// ComputeSnapshot produces the full snapshot for the filter context.
//
// Individual query failures degrade their bucket to zeros and are recorded
// in snapshot diagnostics; only total source unavailability returns an
// error. The returned snapshot is always structurally complete.
func (e *Engine) ComputeSnapshot(ctx context.Context, f domain.FilterContext, anchor time.Time) (*domain.StatsSnapshot, error) {
	started := time.Now()
	defer func() {
		if e.met != nil {
			e.met.SnapshotDuration.Observe(time.Since(started).Seconds())
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	err := e.source.Ping(pingCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("record source down: %w", err)
	}

	day := domain.Midnight(anchor)
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	lastMonthStart, lastMonthEnd := previousMonthWindow(day)

	var (
		overall, today, month, year, lastMonth recordsResult

		rigs    []domain.Rig
		rigsErr error

		clients    []domain.Client
		clientsErr error

		finance    domain.FinancePosition
		financeErr error
	)

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() { overall = e.fetchFiltered(ctx, f) })
	run(func() { today = e.fetchRange(ctx, day, day) })
	run(func() { month = e.fetchRange(ctx, monthStart, day) })
	run(func() { year = e.fetchRange(ctx, yearStart, day) })
	run(func() { lastMonth = e.fetchRange(ctx, lastMonthStart, lastMonthEnd) })
	run(func() {
		qctx, qcancel := context.WithTimeout(ctx, e.queryTimeout)
		defer qcancel()
		rigs, rigsErr = e.source.ActiveRigs(qctx)
	})
	run(func() {
		qctx, qcancel := context.WithTimeout(ctx, e.queryTimeout)
		defer qcancel()
		clients, clientsErr = e.source.Clients(qctx, 0)
	})
	run(func() {
		qctx, qcancel := context.WithTimeout(ctx, e.queryTimeout)
		defer qcancel()
		finance, financeErr = e.source.FinancePosition(qctx)
	})
	wg.Wait()

	snap := &domain.StatsSnapshot{
		Filter:           f,
		AnchorDate:       day,
		TopClients:       []domain.RankedEntity{},
		TopRigs:          []domain.RankedEntity{},
		JobTypeBreakdown: []domain.RankedEntity{},
	}

	snap.Today = e.bucketTotals(snap, "today", today)
	snap.ThisMonth = e.bucketTotals(snap, "this_month", month)
	snap.ThisYear = e.bucketTotals(snap, "this_year", year)
	snap.Overall = e.bucketTotals(snap, "overall", overall)
	lastMonthTotals := e.bucketTotals(snap, "last_month", lastMonth)

	snap.FinancialHealth = financialHealth(snap.Overall)
	snap.Growth = growth(snap.ThisMonth, lastMonthTotals)
	snap.CashFlow = cashFlow(snap.Overall)

	if financeErr != nil {
		e.degrade(snap, "balance_sheet", financeErr)
		finance = domain.FinancePosition{}
	}
	snap.BalanceSheet = balanceSheet(finance, snap.Overall.OutstandingRigFees)

	if rigsErr != nil {
		e.degrade(snap, "operational", rigsErr)
		rigs = nil
	}
	snap.Operational = operational(overall.records, rigs, f)

	if clientsErr != nil {
		e.degrade(snap, "top_clients", clientsErr)
		clients = nil
	}
	snap.TopClients = RankClients(overall.records, clients, e.topLimit)
	snap.TopRigs = RankRigs(overall.records, rigs, e.topLimit)
	snap.JobTypeBreakdown = RankJobTypes(overall.records)

	if snap.Degraded() {
		e.log.Warn("Snapshot computed with degraded buckets",
			logger.Strings("diagnostics", snap.Diagnostics),
		)
	}

	return snap, nil
}

// fetchFiltered pulls the filter-respecting "overall" subset.
func (e *Engine) fetchFiltered(ctx context.Context, f domain.FilterContext) recordsResult {
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	records, err := e.source.JobRecords(qctx, f)
	return recordsResult{records: records, err: err}
}

// fetchRange pulls a calendar-anchored subset that ignores selector filters.
func (e *Engine) fetchRange(ctx context.Context, start, end time.Time) recordsResult {
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	records, err := e.source.JobRecordsBetween(qctx, start, end)
	return recordsResult{records: records, err: err}
}

// bucketTotals folds a fetch result into period totals, degrading to zeros
// on failure.
func (e *Engine) bucketTotals(snap *domain.StatsSnapshot, name string, res recordsResult) domain.PeriodTotals {
	if res.err != nil {
		e.degrade(snap, name, res.err)
		return domain.PeriodTotals{}
	}
	return sumRecords(res.records)
}

// degrade records a sub-bucket failure without failing the computation.
func (e *Engine) degrade(snap *domain.StatsSnapshot, bucket string, err error) {
	snap.Diagnostics = append(snap.Diagnostics, fmt.Sprintf("%s: %v", bucket, err))
	if e.met != nil {
		e.met.DegradedBuckets.Inc()
	}
}

// previousMonthWindow shifts the this-month window [1st, anchor] back one
// calendar month, capping the end at the last day of that month so a
// March 31 anchor compares against all of February rather than a
// normalized date in March.
func previousMonthWindow(day time.Time) (start, end time.Time) {
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	start = monthStart.AddDate(0, -1, 0)
	lastDay := monthStart.AddDate(0, 0, -1)

	end = start.AddDate(0, 0, day.Day()-1)
	if end.After(lastDay) {
		end = lastDay
	}
	return start, end
}

// sumRecords folds a record subset into period totals.
func sumRecords(records []domain.JobRecord) domain.PeriodTotals {
	var t domain.PeriodTotals
	for i := range records {
		r := &records[i]
		t.TotalReports++
		t.TotalIncome += r.TotalIncome()
		t.DrillingIncome += r.DrillingIncome
		t.ServiceIncome += r.ServiceIncome
		t.TotalExpenses += r.TotalExpenses()
		t.NetProfit += r.NetProfit
		t.GrossProfit += r.GrossProfit()
		t.OutstandingRigFees += r.OutstandingRigFee
	}
	return t
}

// financialHealth derives the ratio bucket from the overall totals.
func financialHealth(t domain.PeriodTotals) domain.FinancialHealth {
	return domain.FinancialHealth{
		ProfitMargin:    pct(t.NetProfit, t.TotalIncome),
		GrossMargin:     pct(t.GrossProfit, t.TotalIncome),
		ExpenseRatio:    pct(t.TotalExpenses, t.TotalIncome),
		AvgProfitPerJob: div(t.NetProfit, float64(t.TotalReports)),
		CostEfficiency:  div(t.TotalIncome, t.TotalExpenses),
		ProfitToCost:    pct(t.NetProfit, t.TotalExpenses),
	}
}

// growth compares this month against the calendar-shifted previous month.
func growth(this, last domain.PeriodTotals) domain.Growth {
	return domain.Growth{
		IncomeGrowthPct:  growthPct(last.TotalIncome, this.TotalIncome),
		ExpenseGrowthPct: growthPct(last.TotalExpenses, this.TotalExpenses),
		ProfitGrowthPct:  growthPct(last.NetProfit, this.NetProfit),
		ReportGrowthPct:  growthPct(float64(last.TotalReports), float64(this.TotalReports)),
		LastMonthIncome:  last.TotalIncome,
		LastMonthProfit:  last.NetProfit,
	}
}

// balanceSheet decomposes assets and liabilities. Outstanding rig fees are
// derived from records; the rest comes from the accounting position.
// Working capital restricts both sides to current items: cash positions and
// short-term debts, excluding fixed assets.
func balanceSheet(pos domain.FinancePosition, rigFees float64) domain.BalanceSheet {
	assets := pos.CashOnHand + pos.CashReserves + pos.MaterialsValue
	liabilities := pos.OutstandingLoans + rigFees
	currentAssets := pos.CashOnHand + pos.CashReserves
	currentLiabilities := pos.ShortTermDebts + rigFees

	return domain.BalanceSheet{
		TotalAssets:        assets,
		TotalLiabilities:   liabilities,
		NetWorth:           assets - liabilities,
		DebtToAssetRatio:   pct(liabilities, assets),
		CurrentAssets:      currentAssets,
		CurrentLiabilities: currentLiabilities,
		WorkingCapital:     currentAssets - currentLiabilities,
	}
}

// operational derives fleet metrics from the filtered record set.
func operational(records []domain.JobRecord, rigs []domain.Rig, f domain.FilterContext) domain.Operational {
	op := domain.Operational{ActiveRigCount: len(rigs)}

	rigsWithJobs := make(map[int64]struct{})
	var totalMinutes, totalDepth float64
	for i := range records {
		rigsWithJobs[records[i].RigID] = struct{}{}
		totalMinutes += float64(records[i].DurationMinutes)
		totalDepth += records[i].DepthMeters
	}

	jobCount := float64(len(records))
	op.RigUtilizationPct = pct(float64(len(rigsWithJobs)), float64(len(rigs)))
	op.AvgJobDurationMinutes = div(totalMinutes, jobCount)
	op.AvgJobDurationHours = op.AvgJobDurationMinutes / 60
	op.AvgDepthMeters = div(totalDepth, jobCount)

	days := f.EndDate.Sub(f.StartDate).Hours()/hoursPerDay + 1
	op.JobsPerDay = div(jobCount, days)

	for i := range rigs {
		r := &rigs[i]
		if r.MaintenanceDueAtRPM > 0 && r.CurrentRPM >= r.MaintenanceDueAtRPM*maintenanceWarnRatio {
			op.MaintenancePendingCount++
		}
	}
	return op
}

// cashFlow summarizes the filtered range.
func cashFlow(t domain.PeriodTotals) domain.CashFlow {
	return domain.CashFlow{
		CashIn:      t.TotalIncome,
		CashOut:     t.TotalExpenses,
		NetCashFlow: t.TotalIncome - t.TotalExpenses,
	}
}

// div is division guarded against a zero denominator: it returns 0 instead
// of dividing, so no ratio ever propagates NaN or Inf.
func div(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// pct is div scaled to a percentage.
func pct(num, den float64) float64 {
	return div(num, den) * 100
}

// growthPct implements the month-over-month ratio with its zero-base rule:
// growth from nothing is +100 for a gain, -100 for a loss, 0 when both
// periods are zero.
func growthPct(last, this float64) float64 {
	if last == 0 {
		switch {
		case this > 0:
			return 100
		case this < 0:
			return -100
		default:
			return 0
		}
	}
	diff := this - last
	base := last
	if base < 0 {
		base = -base
	}
	return diff / base * 100
}

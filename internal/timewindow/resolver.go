// Package timewindow resolves preset date-range tokens against an anchor
// date. Every window is recomputed from the anchor on each call: "today"
// moves, so nothing here may be cached across calendar days.
package timewindow

import (
	"fmt"
	"time"

	"github.com/wellfield/rigops/internal/domain"
)

// Preset tokens accepted by Resolve.
const (
	PresetYTD          = "ytd"
	PresetQTD          = "qtd"
	PresetMonth        = "month"
	PresetSixtyDays    = "60days"
	PresetNinetyDays   = "90days"
	PresetSixMonths    = "6months"
	PresetTwelveMonths = "12months"
)

const monthsPerQuarter = 3

// Window is a resolved inclusive date range with its default grouping.
type Window struct {
	Start   time.Time      `json:"start"`
	End     time.Time      `json:"end"`
	GroupBy domain.GroupBy `json:"group_by"`
}

// Preset describes one quick-range token for UI selectors.
type Preset struct {
	Token   string         `json:"token"`
	Label   string         `json:"label"`
	GroupBy domain.GroupBy `json:"group_by"`
}

// Catalog returns the quick-preset catalog in display order.
func Catalog() []Preset {
	return []Preset{
		{Token: PresetMonth, Label: "This month", GroupBy: domain.GroupByDay},
		{Token: PresetSixtyDays, Label: "Last 60 days", GroupBy: domain.GroupByWeek},
		{Token: PresetNinetyDays, Label: "Last 90 days", GroupBy: domain.GroupByWeek},
		{Token: PresetQTD, Label: "Quarter to date", GroupBy: domain.GroupByMonth},
		{Token: PresetSixMonths, Label: "Last 6 months", GroupBy: domain.GroupByMonth},
		{Token: PresetYTD, Label: "Year to date", GroupBy: domain.GroupByMonth},
		{Token: PresetTwelveMonths, Label: "Last 12 months", GroupBy: domain.GroupByMonth},
	}
}

// Resolve converts a preset token and anchor date into a concrete window.
// The anchor is truncated to its calendar day and always forms the window
// end. Custom ranges bypass presets entirely and never reach this function.
func Resolve(preset string, anchor time.Time) (Window, error) {
	day := domain.Midnight(anchor)

	switch preset {
	case PresetYTD:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		return Window{Start: start, End: day, GroupBy: domain.GroupByMonth}, nil

	case PresetQTD:
		quarterStart := (int(day.Month())-1)/monthsPerQuarter*monthsPerQuarter + 1
		start := time.Date(day.Year(), time.Month(quarterStart), 1, 0, 0, 0, 0, day.Location())
		return Window{Start: start, End: day, GroupBy: domain.GroupByMonth}, nil

	case PresetMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end := day
		if last := start.AddDate(0, 1, -1); end.After(last) {
			end = last
		}
		return Window{Start: start, End: end, GroupBy: domain.GroupByDay}, nil

	case PresetSixtyDays:
		return rollingDays(day, 60), nil

	case PresetNinetyDays:
		return rollingDays(day, 90), nil

	case PresetSixMonths:
		return trailingMonths(day, 6), nil

	case PresetTwelveMonths:
		return trailingMonths(day, 12), nil

	default:
		return Window{}, fmt.Errorf("unknown preset %q", preset)
	}
}

// rollingDays builds an n-day window ending at the anchor day, inclusive on
// both ends: a 60-day window starts 59 days back.
func rollingDays(day time.Time, n int) Window {
	return Window{
		Start:   day.AddDate(0, 0, -(n - 1)),
		End:     day,
		GroupBy: domain.GroupByWeek,
	}
}

// trailingMonths starts at the first day of the month n-1 months before the
// anchor's month, so the anchor's own month is the n-th.
func trailingMonths(day time.Time, n int) Window {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, -(n - 1), 0)
	return Window{Start: start, End: day, GroupBy: domain.GroupByMonth}
}

// ActivePreset reports which preset token, if any, the supplied range matches
// for the given anchor. Used for UI highlighting only; the match compares
// calendar dates against freshly resolved windows.
func ActivePreset(start, end, anchor time.Time) string {
	for _, p := range Catalog() {
		w, err := Resolve(p.Token, anchor)
		if err != nil {
			continue
		}
		if sameDay(w.Start, start) && sameDay(w.End, end) {
			return p.Token
		}
	}
	return ""
}

// sameDay compares calendar dates, ignoring location. Caller-supplied dates
// may arrive parsed in UTC while the anchor carries the server location; an
// instant comparison would never match on a non-UTC server.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package timewindow

import (
	"testing"
	"time"

	"github.com/wellfield/rigops/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	// Mid-August anchor: Q3, no month-boundary edge cases.
	anchor := date(2025, time.August, 14)

	tests := []struct {
		preset    string
		wantStart time.Time
		wantEnd   time.Time
		wantGroup domain.GroupBy
	}{
		{PresetYTD, date(2025, time.January, 1), anchor, domain.GroupByMonth},
		{PresetQTD, date(2025, time.July, 1), anchor, domain.GroupByMonth},
		{PresetMonth, date(2025, time.August, 1), anchor, domain.GroupByDay},
		{PresetSixtyDays, date(2025, time.June, 16), anchor, domain.GroupByWeek},
		{PresetNinetyDays, date(2025, time.May, 17), anchor, domain.GroupByWeek},
		{PresetSixMonths, date(2025, time.March, 1), anchor, domain.GroupByMonth},
		{PresetTwelveMonths, date(2024, time.September, 1), anchor, domain.GroupByMonth},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			w, err := Resolve(tt.preset, anchor)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.preset, err)
			}
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", w.End, tt.wantEnd)
			}
			if w.GroupBy != tt.wantGroup {
				t.Errorf("group_by = %v, want %v", w.GroupBy, tt.wantGroup)
			}
		})
	}
}

func TestResolve_QuarterBoundaries(t *testing.T) {
	tests := []struct {
		anchor    time.Time
		wantStart time.Time
	}{
		{date(2025, time.January, 1), date(2025, time.January, 1)},
		{date(2025, time.March, 31), date(2025, time.January, 1)},
		{date(2025, time.April, 1), date(2025, time.April, 1)},
		{date(2025, time.October, 2), date(2025, time.October, 1)},
		{date(2025, time.December, 31), date(2025, time.October, 1)},
	}

	for _, tt := range tests {
		w, err := Resolve(PresetQTD, tt.anchor)
		if err != nil {
			t.Fatalf("Resolve(qtd, %v) error = %v", tt.anchor, err)
		}
		if !w.Start.Equal(tt.wantStart) {
			t.Errorf("qtd start for %v = %v, want %v", tt.anchor, w.Start, tt.wantStart)
		}
	}
}

func TestResolve_UnknownPreset(t *testing.T) {
	if _, err := Resolve("last_fortnight", time.Now()); err == nil {
		t.Error("Resolve() with unknown preset should fail")
	}
}

func TestResolve_AnchorTimeOfDayIgnored(t *testing.T) {
	late := time.Date(2025, time.August, 14, 23, 59, 58, 0, time.UTC)
	w, err := Resolve(PresetMonth, late)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !w.End.Equal(date(2025, time.August, 14)) {
		t.Errorf("end = %v, want midnight of the anchor day", w.End)
	}
}

func TestResolve_StartNeverAfterEnd(t *testing.T) {
	// Sweep anchors across boundary-heavy dates for every preset.
	anchors := []time.Time{
		date(2024, time.February, 29),
		date(2025, time.January, 1),
		date(2025, time.March, 31),
		date(2025, time.December, 31),
	}
	for _, p := range Catalog() {
		for _, anchor := range anchors {
			w, err := Resolve(p.Token, anchor)
			if err != nil {
				t.Fatalf("Resolve(%q, %v) error = %v", p.Token, anchor, err)
			}
			if w.Start.After(w.End) {
				t.Errorf("Resolve(%q, %v): start %v after end %v", p.Token, anchor, w.Start, w.End)
			}
		}
	}
}

func TestActivePreset(t *testing.T) {
	anchor := date(2025, time.August, 14)

	if got := ActivePreset(date(2025, time.January, 1), anchor, anchor); got != PresetYTD {
		t.Errorf("ActivePreset() = %q, want %q", got, PresetYTD)
	}

	// Arbitrary custom range matches nothing.
	if got := ActivePreset(date(2025, time.March, 3), date(2025, time.April, 4), anchor); got != "" {
		t.Errorf("ActivePreset() = %q, want empty", got)
	}

	// Yesterday's ytd window is no longer active today.
	yesterdayEnd := date(2025, time.August, 13)
	if got := ActivePreset(date(2025, time.January, 1), yesterdayEnd, anchor); got != "" {
		t.Errorf("ActivePreset() for stale window = %q, want empty", got)
	}
}

func TestActivePreset_AnchorLocationIndependent(t *testing.T) {
	// Caller dates arrive parsed in UTC; the anchor carries the server's
	// location. Matching must work on calendar dates, not instants.
	central := time.FixedZone("UTC-5", -5*60*60)
	anchor := time.Date(2025, time.August, 14, 9, 30, 0, 0, central)

	if got := ActivePreset(date(2025, time.January, 1), date(2025, time.August, 14), anchor); got != PresetYTD {
		t.Errorf("ActivePreset() with UTC dates and UTC-5 anchor = %q, want %q", got, PresetYTD)
	}

	// Same mismatch in the other direction.
	utcAnchor := date(2025, time.August, 14)
	localStart := time.Date(2025, time.August, 1, 0, 0, 0, 0, central)
	localEnd := time.Date(2025, time.August, 14, 0, 0, 0, 0, central)
	if got := ActivePreset(localStart, localEnd, utcAnchor); got != PresetMonth {
		t.Errorf("ActivePreset() with UTC-5 dates and UTC anchor = %q, want %q", got, PresetMonth)
	}

	// A real off-by-one day must still not match across locations.
	if got := ActivePreset(date(2025, time.January, 2), date(2025, time.August, 14), anchor); got != "" {
		t.Errorf("ActivePreset() for shifted start = %q, want empty", got)
	}
}

func TestCatalog_CoversAllPresets(t *testing.T) {
	tokens := map[string]bool{}
	for _, p := range Catalog() {
		tokens[p.Token] = true
	}
	for _, want := range []string{
		PresetYTD, PresetQTD, PresetMonth, PresetSixtyDays,
		PresetNinetyDays, PresetSixMonths, PresetTwelveMonths,
	} {
		if !tokens[want] {
			t.Errorf("Catalog() missing preset %q", want)
		}
	}
}

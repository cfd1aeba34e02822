package domain

import (
	"fmt"
	"strconv"
	"time"
)

// GroupBy is the bucketing granularity for time-series output.
type GroupBy string

// Grouping granularities.
const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// ParseGroupBy validates a grouping token.
func ParseGroupBy(s string) (GroupBy, bool) {
	switch GroupBy(s) {
	case GroupByDay, GroupByWeek, GroupByMonth:
		return GroupBy(s), true
	default:
		return "", false
	}
}

// FilterParams is the raw caller input a FilterContext is built from.
// String fields keep whatever the UI sent; normalization happens in
// NewFilterContext.
type FilterParams struct {
	StartDate time.Time
	EndDate   time.Time
	RigID     string
	ClientID  string
	JobType   string
	GroupBy   string
}

// FilterContext is the validated, immutable filter a single aggregation
// request runs under. Nil selectors mean "all". Constructed once per request
// and never mutated.
type FilterContext struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	RigID     *int64    `json:"rig_id,omitempty"`
	ClientID  *int64    `json:"client_id,omitempty"`
	JobType   *JobType  `json:"job_type,omitempty"`
	GroupBy   GroupBy   `json:"group_by"`
}

// NewFilterContext validates and normalizes caller input.
//
// The date range and grouping are strict: an inverted range or an unknown
// group_by token is a validation error. The optional selectors are
// permissive: values that don't parse are coerced to "all" rather than
// rejected, so a stale UI selection degrades to an unfiltered view.
func NewFilterContext(p FilterParams) (FilterContext, error) {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return FilterContext{}, &ValidationError{Field: "date_range", Message: "start and end dates are required"}
	}

	start := Midnight(p.StartDate)
	end := Midnight(p.EndDate)
	if start.After(end) {
		return FilterContext{}, &ValidationError{
			Field:   "date_range",
			Message: fmt.Sprintf("start %s is after end %s", start.Format(DateLayout), end.Format(DateLayout)),
		}
	}

	groupBy := GroupByDay
	if p.GroupBy != "" {
		parsed, ok := ParseGroupBy(p.GroupBy)
		if !ok {
			return FilterContext{}, &ValidationError{
				Field:   "group_by",
				Message: fmt.Sprintf("unknown grouping %q", p.GroupBy),
			}
		}
		groupBy = parsed
	}

	fc := FilterContext{
		StartDate: start,
		EndDate:   end,
		GroupBy:   groupBy,
	}
	fc.RigID = parseOptionalID(p.RigID)
	fc.ClientID = parseOptionalID(p.ClientID)
	if jt, ok := ParseJobType(p.JobType); ok {
		fc.JobType = &jt
	}

	return fc, nil
}

// parseOptionalID turns caller input into an ID selector. Empty, "all",
// non-numeric and non-positive values all mean "no filter".
func parseOptionalID(raw string) *int64 {
	if raw == "" || raw == "all" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// Fingerprint returns a stable key for this filter, used for cache lookups.
func (f FilterContext) Fingerprint() string {
	rig, client, jobType := "all", "all", "all"
	if f.RigID != nil {
		rig = strconv.FormatInt(*f.RigID, 10)
	}
	if f.ClientID != nil {
		client = strconv.FormatInt(*f.ClientID, 10)
	}
	if f.JobType != nil {
		jobType = string(*f.JobType)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		f.StartDate.Format(DateLayout), f.EndDate.Format(DateLayout),
		rig, client, jobType, f.GroupBy,
	)
}

// DateLayout is the wire format for dashboard dates.
const DateLayout = "2006-01-02"

// Midnight truncates t to the start of its calendar day, keeping location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ValidationError reports invalid caller input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

package domain

// AlertSeverity grades how urgently an alert should be surfaced.
type AlertSeverity string

// Alert severities.
const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeverityDanger  AlertSeverity = "danger"
)

// Alert is an ephemeral threshold finding derived from one snapshot. Alerts
// are never stored; delivery is a collaborator's concern.
type Alert struct {
	Severity      AlertSeverity `json:"severity"`
	Code          string        `json:"code"`
	Message       string        `json:"message"`
	RelatedMetric string        `json:"related_metric"`
}

// Capabilities is the caller's resolved KPI access set. Resolution happens
// externally (JWT claims here); the permission gate only consumes it.
type Capabilities struct {
	Financial   bool `json:"financial"`
	Operational bool `json:"operational"`
	CRM         bool `json:"crm"`
	HR          bool `json:"hr"`
}

// None reports whether the caller holds no KPI capability at all.
func (c Capabilities) None() bool {
	return !c.Financial && !c.Operational && !c.CRM && !c.HR
}

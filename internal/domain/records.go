// Package domain holds the core data model of the rigops analytics service:
// job/financial records, rig and client reference data, request filters, and
// the computed snapshot types served to dashboards.
package domain

import "time"

// JobType classifies how a job was contracted.
type JobType string

// Job type values.
const (
	JobTypeDirect      JobType = "direct"
	JobTypeSubcontract JobType = "subcontract"
)

// ParseJobType maps caller input to a known job type. Unknown values return
// false, which filter construction treats as "all job types".
func ParseJobType(s string) (JobType, bool) {
	switch JobType(s) {
	case JobTypeDirect, JobTypeSubcontract:
		return JobType(s), true
	default:
		return "", false
	}
}

// RigStatus is the service state of a rig.
type RigStatus string

// Rig status values.
const (
	RigStatusActive      RigStatus = "active"
	RigStatusInactive    RigStatus = "inactive"
	RigStatusMaintenance RigStatus = "maintenance"
)

// JobRecord is one synced field-job entry. Records are created by the
// external reporting workflow and never mutated here.
type JobRecord struct {
	ID         int64     `db:"id"          json:"id"`
	RigID      int64     `db:"rig_id"      json:"rig_id"`
	ClientID   int64     `db:"client_id"   json:"client_id"`
	JobType    JobType   `db:"job_type"    json:"job_type"`
	ReportDate time.Time `db:"report_date" json:"report_date"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`

	DrillingIncome  float64 `db:"drilling_income"  json:"drilling_income"`
	ServiceIncome   float64 `db:"service_income"   json:"service_income"`
	FuelExpense     float64 `db:"fuel_expense"     json:"fuel_expense"`
	MaterialExpense float64 `db:"material_expense" json:"material_expense"`
	WageExpense     float64 `db:"wage_expense"     json:"wage_expense"`
	OtherExpense    float64 `db:"other_expense"    json:"other_expense"`
	NetProfit       float64 `db:"net_profit"       json:"net_profit"`

	OutstandingRigFee float64 `db:"outstanding_rig_fee" json:"outstanding_rig_fee"`

	DurationMinutes int     `db:"duration_minutes" json:"duration_minutes"`
	DepthMeters     float64 `db:"depth_meters"     json:"depth_meters"`
	RPMDelta        float64 `db:"rpm_delta"        json:"rpm_delta"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// TotalIncome is the sum of the record's income components.
func (r *JobRecord) TotalIncome() float64 {
	return r.DrillingIncome + r.ServiceIncome
}

// TotalExpenses is the sum of the record's expense components.
func (r *JobRecord) TotalExpenses() float64 {
	return r.FuelExpense + r.MaterialExpense + r.WageExpense + r.OtherExpense
}

// GrossProfit is income minus direct job costs (fuel and materials). Wages
// and overheads are excluded, mirroring how net vs gross margin is reported.
func (r *JobRecord) GrossProfit() float64 {
	return r.TotalIncome() - r.FuelExpense - r.MaterialExpense
}

// Rig is configuration-managed reference data, read-only here.
// CurrentRPM and MaintenanceDueAtRPM are cumulative meter readings; they are
// point-in-time values and must never be summed across records.
type Rig struct {
	ID                  int64     `db:"id"                     json:"id"`
	Name                string    `db:"name"                   json:"name"`
	Code                string    `db:"code"                   json:"code"`
	Status              RigStatus `db:"status"                 json:"status"`
	CurrentRPM          float64   `db:"current_rpm"            json:"current_rpm"`
	MaintenanceDueAtRPM float64   `db:"maintenance_due_at_rpm" json:"maintenance_due_at_rpm"`
}

// Client is externally owned reference data, read-only here.
type Client struct {
	ID   int64  `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}

// FinancePosition is the company-level balance snapshot maintained by the
// accounting workflow. Loans and cash positions live here; outstanding rig
// fees are derived from job records instead.
type FinancePosition struct {
	CashOnHand       float64 `db:"cash_on_hand"      json:"cash_on_hand"`
	CashReserves     float64 `db:"cash_reserves"     json:"cash_reserves"`
	MaterialsValue   float64 `db:"materials_value"   json:"materials_value"`
	OutstandingLoans float64 `db:"outstanding_loans" json:"outstanding_loans"`
	ShortTermDebts   float64 `db:"short_term_debts"  json:"short_term_debts"`
}

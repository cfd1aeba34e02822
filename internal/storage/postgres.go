// Package storage implements read-only access to the job/financial record
// store. Every query is an independent read; no transactions or locks are
// held across calls.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/logger"
)

// Connection pool settings.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 5 * time.Second
)

// ErrSourceUnavailable marks total record-store unavailability, as opposed
// to a single failed query. Callers use it to distinguish "system is down"
// from "business is at zero".
var ErrSourceUnavailable = errors.New("record store unavailable")

// jobRecordColumns is the stable column list for job record scans.
const jobRecordColumns = `id, rig_id, client_id, job_type, report_date, created_at,
	drilling_income, service_income, fuel_expense, material_expense,
	wage_expense, other_expense, net_profit, outstanding_rig_fee,
	duration_minutes, depth_meters, rpm_delta, notes`

// Connect opens a pooled connection to the record store and verifies it.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return db, nil
}

// RecordStore provides filtered, read-only access to job records and
// rig/client reference data.
type RecordStore struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewRecordStore creates a RecordStore over an established connection pool.
func NewRecordStore(db *sqlx.DB, log logger.Logger) *RecordStore {
	return &RecordStore{db: db, log: log}
}

// Ping verifies connectivity. A failure here is fatal for the request,
// unlike individual query failures which degrade per bucket.
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, err)
	}
	return nil
}

// JobRecords returns the records matching the filter context. The end date
// is inclusive: records dated any time on the end day are included.
func (s *RecordStore) JobRecords(ctx context.Context, f domain.FilterContext) ([]domain.JobRecord, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + jobRecordColumns + " FROM job_records")
	sb.WriteString(" WHERE report_date >= $1 AND report_date < $2")

	args := []any{f.StartDate, f.EndDate.AddDate(0, 0, 1)}

	if f.RigID != nil {
		args = append(args, *f.RigID)
		sb.WriteString(" AND rig_id = $" + strconv.Itoa(len(args)))
	}
	if f.ClientID != nil {
		args = append(args, *f.ClientID)
		sb.WriteString(" AND client_id = $" + strconv.Itoa(len(args)))
	}
	if f.JobType != nil {
		args = append(args, string(*f.JobType))
		sb.WriteString(" AND job_type = $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY report_date ASC, id ASC")

	records := []domain.JobRecord{}
	if err := s.db.SelectContext(ctx, &records, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("query job records: %w", err)
	}
	return records, nil
}

// JobRecordsBetween returns all records in the inclusive calendar range,
// ignoring any selector filters. Used for the calendar-anchored buckets
// (today, this month, this year) which always reflect the whole business.
func (s *RecordStore) JobRecordsBetween(ctx context.Context, start, end time.Time) ([]domain.JobRecord, error) {
	query := "SELECT " + jobRecordColumns + ` FROM job_records
		WHERE report_date >= $1 AND report_date < $2
		ORDER BY report_date ASC, id ASC`

	records := []domain.JobRecord{}
	if err := s.db.SelectContext(ctx, &records, query, start, end.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("query job records between: %w", err)
	}
	return records, nil
}

// ActiveRigs returns every rig currently in service, ordered by name for
// deterministic output. Rigs without jobs in any range still appear.
func (s *RecordStore) ActiveRigs(ctx context.Context) ([]domain.Rig, error) {
	query := `SELECT id, name, code, status, current_rpm, maintenance_due_at_rpm
		FROM rigs WHERE status = $1 ORDER BY name ASC`

	rigs := []domain.Rig{}
	if err := s.db.SelectContext(ctx, &rigs, query, string(domain.RigStatusActive)); err != nil {
		return nil, fmt.Errorf("query active rigs: %w", err)
	}
	return rigs, nil
}

// Clients returns client reference data ordered by name. A non-positive
// limit returns all clients.
func (s *RecordStore) Clients(ctx context.Context, limit int) ([]domain.Client, error) {
	query := "SELECT id, name FROM clients ORDER BY name ASC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	clients := []domain.Client{}
	if err := s.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	return clients, nil
}

// FinancePosition returns the company balance snapshot maintained by the
// accounting workflow. A missing row means the books are empty, not an
// error.
func (s *RecordStore) FinancePosition(ctx context.Context) (domain.FinancePosition, error) {
	query := `SELECT cash_on_hand, cash_reserves, materials_value,
		outstanding_loans, short_term_debts
		FROM finance_positions ORDER BY updated_at DESC LIMIT 1`

	var pos domain.FinancePosition
	if err := s.db.GetContext(ctx, &pos, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FinancePosition{}, nil
		}
		return domain.FinancePosition{}, fmt.Errorf("query finance position: %w", err)
	}
	return pos, nil
}

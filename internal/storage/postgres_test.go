package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/logger"
)

func newMockStore(t *testing.T) (*RecordStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewRecordStore(db, logger.NewNop()), mock
}

func jobRecordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "rig_id", "client_id", "job_type", "report_date", "created_at",
		"drilling_income", "service_income", "fuel_expense", "material_expense",
		"wage_expense", "other_expense", "net_profit", "outstanding_rig_fee",
		"duration_minutes", "depth_meters", "rpm_delta", "notes",
	})
}

func testFilter(t *testing.T, params domain.FilterParams) domain.FilterContext {
	t.Helper()
	f, err := domain.NewFilterContext(params)
	require.NoError(t, err)
	return f
}

func TestJobRecords(t *testing.T) {
	store, mock := newMockStore(t)

	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)
	f := testFilter(t, domain.FilterParams{StartDate: start, EndDate: end})

	rows := jobRecordRows().
		AddRow(1, 2, 3, "direct", start, start, 1000.0, 200.0, 150.0, 50.0, 100.0, 25.0, 875.0, 0.0, 480, 120.5, 8.0, "").
		AddRow(2, 2, 3, "subcontract", end, end, 500.0, 0.0, 80.0, 0.0, 60.0, 0.0, 360.0, 100.0, 240, 60.0, 4.0, "note")

	mock.ExpectQuery(`(?s)SELECT .+ FROM job_records WHERE report_date >= \$1 AND report_date < \$2 ORDER BY report_date ASC, id ASC`).
		WithArgs(start, end.AddDate(0, 0, 1)).
		WillReturnRows(rows)

	records, err := store.JobRecords(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, domain.JobTypeDirect, records[0].JobType)
	assert.InDelta(t, 1200, records[0].TotalIncome(), 1e-9)
	assert.Equal(t, "note", records[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRecords_SelectorFilters(t *testing.T) {
	store, mock := newMockStore(t)

	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)
	f := testFilter(t, domain.FilterParams{
		StartDate: start, EndDate: end,
		RigID: "4", ClientID: "9", JobType: "direct",
	})

	mock.ExpectQuery(`(?s)SELECT .+ FROM job_records WHERE report_date >= \$1 AND report_date < \$2 AND rig_id = \$3 AND client_id = \$4 AND job_type = \$5 ORDER BY`).
		WithArgs(start, end.AddDate(0, 0, 1), int64(4), int64(9), "direct").
		WillReturnRows(jobRecordRows())

	records, err := store.JobRecords(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRecordsBetween(t *testing.T) {
	store, mock := newMockStore(t)

	start := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .+ FROM job_records\s+WHERE report_date >= \$1 AND report_date < \$2`).
		WithArgs(start, end.AddDate(0, 0, 1)).
		WillReturnRows(jobRecordRows().
			AddRow(7, 1, 1, "direct", start, start, 900.0, 0.0, 0.0, 0.0, 0.0, 0.0, 900.0, 0.0, 0, 0.0, 0.0, ""))

	records, err := store.JobRecordsBetween(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveRigs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .+\s+FROM rigs WHERE status = \$1 ORDER BY name ASC`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "status", "current_rpm", "maintenance_due_at_rpm",
		}).
			AddRow(1, "Alpha", "RG-01", "active", 50.0, 100.0).
			AddRow(2, "Bravo", "RG-02", "active", 0.0, 100.0))

	rigs, err := store.ActiveRigs(context.Background())
	require.NoError(t, err)
	require.Len(t, rigs, 2)
	assert.Equal(t, "Alpha", rigs[0].Name)
	assert.Equal(t, domain.RigStatusActive, rigs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClients_Limit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name FROM clients ORDER BY name ASC LIMIT \\$1").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Acme"))

	clients, err := store.Clients(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme", clients[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinancePosition(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .+\s+FROM finance_positions ORDER BY updated_at DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"cash_on_hand", "cash_reserves", "materials_value", "outstanding_loans", "short_term_debts",
		}).AddRow(5000.0, 10000.0, 2500.0, 3000.0, 800.0))

	pos, err := store.FinancePosition(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5000, pos.CashOnHand, 1e-9)
	assert.InDelta(t, 800, pos.ShortTermDebts, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinancePosition_NoRowsIsZero(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM finance_positions`).
		WillReturnError(sql.ErrNoRows)

	pos, err := store.FinancePosition(context.Background())
	require.NoError(t, err, "empty books are not an error")
	assert.Equal(t, domain.FinancePosition{}, pos)
}

func TestPing_WrapsSourceUnavailable(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	db := sqlx.NewDb(mockDB, "sqlmock")
	store := NewRecordStore(db, logger.NewNop())

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	pingErr := store.Ping(context.Background())
	require.Error(t, pingErr)
	assert.ErrorIs(t, pingErr, ErrSourceUnavailable)
}

func TestJobRecords_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	f := testFilter(t, domain.FilterParams{
		StartDate: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
	})

	mock.ExpectQuery(`(?s)SELECT .+ FROM job_records`).
		WillReturnError(errors.New("relation does not exist"))

	_, err := store.JobRecords(context.Background(), f)
	assert.Error(t, err)
}

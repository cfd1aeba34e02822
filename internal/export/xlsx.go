package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/wellfield/rigops/internal/domain"
)

// Sheet names in the workbook.
const (
	sheetMetrics = "Metrics"
	sheetRigs    = "Rig Performance"
)

// WriteXLSX renders the selected section as an XLSX workbook with a metrics
// sheet and, when the section includes it, a rig performance sheet.
func WriteXLSX(w io.Writer, snap *domain.StatsSnapshot, rigs []domain.RigPerformanceRow, section Section) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes the metrics sheet.
	if err := f.SetSheetName("Sheet1", sheetMetrics); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeMetricsSheet(f, snap, section); err != nil {
		return err
	}

	if includesRigs(section) {
		if err := writeRigSheet(f, rigs); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeMetricsSheet(f *excelize.File, snap *domain.StatsSnapshot, section Section) error {
	if err := f.SetSheetRow(sheetMetrics, "A1", &[]any{"bucket", "metric", "value"}); err != nil {
		return fmt.Errorf("write metrics header: %w", err)
	}

	for i, row := range sectionRows(snap, section) {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetMetrics, cell, &[]any{row.Bucket, row.Name, row.Value}); err != nil {
			return fmt.Errorf("write metrics row: %w", err)
		}
	}
	return nil
}

func writeRigSheet(f *excelize.File, rigs []domain.RigPerformanceRow) error {
	if _, err := f.NewSheet(sheetRigs); err != nil {
		return fmt.Errorf("create rig sheet: %w", err)
	}

	header := make([]any, len(rigHeader))
	for i, h := range rigHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetRigs, "A1", &header); err != nil {
		return fmt.Errorf("write rig header: %w", err)
	}

	for i := range rigs {
		row := &rigs[i]
		lastJob := ""
		if row.LastJobDate != nil {
			lastJob = row.LastJobDate.Format(domain.DateLayout)
		}
		cells := []any{
			row.Rig.Name, row.Rig.Code, row.JobCount, row.TotalRPM,
			row.TotalRevenue, row.TotalProfit, row.TotalExpenses,
			row.RevenuePerRPM, row.ProfitPerRPM, row.ProfitMargin,
			row.RPMProgress, lastJob,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetRigs, cell, &cells); err != nil {
			return fmt.Errorf("write rig row: %w", err)
		}
	}
	return nil
}

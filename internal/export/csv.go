package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wellfield/rigops/internal/domain"
)

// WriteCSV renders the selected section as CSV: a metric block followed by
// the rig performance table when the section includes it.
func WriteCSV(w io.Writer, snap *domain.StatsSnapshot, rigs []domain.RigPerformanceRow, section Section) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"bucket", "metric", "value"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range sectionRows(snap, section) {
		record := []string{row.Bucket, row.Name, formatNumber(row.Value)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if includesRigs(section) {
		// Blank separator line between the two tables.
		if err := cw.Write([]string{}); err != nil {
			return fmt.Errorf("write csv separator: %w", err)
		}
		if err := cw.Write(rigHeader); err != nil {
			return fmt.Errorf("write rig header: %w", err)
		}
		for i := range rigs {
			if err := cw.Write(rigCells(&rigs[i])); err != nil {
				return fmt.Errorf("write rig row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Package report writes the per-driver summary table and renders the ranked
// hours chart.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"driverstats/internal/model"
)

// SummaryHeader is the roster header followed by model.SummaryColumns.
func SummaryHeader(roster []string) []string {
	h := make([]string, 0, len(roster)+len(model.SummaryColumns))
	h = append(h, roster...)
	return append(h, model.SummaryColumns...)
}

// WriteSummaryCSV writes one comma-delimited row per summary, preceded by
// SummaryHeader(roster). There is no index column.
func WriteSummaryCSV(w io.Writer, roster []string, rows []model.DriverSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader(roster)); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}

	rec := make([]string, 0, len(roster)+len(model.SummaryColumns))
	for _, s := range rows {
		if len(s.Fields) != len(roster) {
			return fmt.Errorf("driver %s: %d roster cells, header has %d", s.ID, len(s.Fields), len(roster))
		}
		rec = append(rec[:0], s.Fields...)
		for i, v := range s.Aggregates() {
			if model.SummaryColumns[i] == "weeks_worked" {
				rec = append(rec, strconv.Itoa(s.WeeksWorked))
				continue
			}
			rec = append(rec, FormatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write summary row for driver %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatFloat renders v in the shortest form that reads back exactly:
// 30, 15.5, 13.33.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

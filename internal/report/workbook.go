package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"driverstats/internal/model"
)

// SummarySheet is the worksheet name used by WriteSummaryXLSX.
const SummarySheet = "summary"

// WriteSummaryXLSX writes the same table as WriteSummaryCSV as a single-sheet
// workbook. Aggregates are stored as numeric cells, roster cells as text.
func WriteSummaryXLSX(w io.Writer, roster []string, rows []model.DriverSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SummarySheet)
	if err != nil {
		return fmt.Errorf("xlsx: stream writer: %w", err)
	}

	header := SummaryHeader(roster)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}

	for r, s := range rows {
		cells = make([]any, 0, len(header))
		for _, v := range s.Fields {
			cells = append(cells, v)
		}
		for i, v := range s.Aggregates() {
			if model.SummaryColumns[i] == "weeks_worked" {
				cells = append(cells, s.WeeksWorked)
				continue
			}
			cells = append(cells, v)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("xlsx: row for driver %s: %w", s.ID, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

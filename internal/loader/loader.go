// Package loader reads the roster and timesheet files and maps them onto the
// typed rows the aggregator consumes. Any missing file, malformed row or
// unparsable number is returned as an error; nothing is skipped.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"driverstats/internal/datasource"
	"driverstats/internal/model"
	pcsv "driverstats/internal/parser/csv"
)

// ErrMissingColumn is returned when a required column is absent from a header.
var ErrMissingColumn = errors.New("missing required column")

// ReadTable opens src and parses it with p. name labels errors and the
// resulting Table.
func ReadTable(ctx context.Context, src datasource.Source, p *pcsv.Parser, name string) (*model.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := p.Parse(name, rc)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return t, nil
}

// Drivers maps a roster table onto DriverRecords in file order. Every roster
// cell is kept in Fields so extra columns reach the summary unchanged.
func Drivers(t *model.Table) ([]model.DriverRecord, error) {
	cols, err := columnIndexes(t, model.ColDriverID, model.ColName)
	if err != nil {
		return nil, err
	}
	idIx, nameIx := cols[0], cols[1]

	out := make([]model.DriverRecord, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, model.DriverRecord{
			ID:     model.CanonicalID(row[idIx]),
			Name:   row[nameIx],
			Fields: row,
		})
	}
	return out, nil
}

// Timesheet maps a timesheet table onto entries in file order. Empty hours or
// miles cells become missing values; any other non-numeric value is an error.
func Timesheet(t *model.Table) ([]model.TimesheetEntry, error) {
	cols, err := columnIndexes(t, model.ColDriverID, model.ColWeek, model.ColHours, model.ColMiles)
	if err != nil {
		return nil, err
	}
	idIx, weekIx, hoursIx, milesIx := cols[0], cols[1], cols[2], cols[3]

	out := make([]model.TimesheetEntry, 0, t.Len())
	for i, row := range t.Rows {
		hours, err := parseMeasure(row[hoursIx])
		if err != nil {
			return nil, cellError(t, i, model.ColHours, err)
		}
		miles, err := parseMeasure(row[milesIx])
		if err != nil {
			return nil, cellError(t, i, model.ColMiles, err)
		}
		out = append(out, model.TimesheetEntry{
			DriverID: model.CanonicalID(row[idIx]),
			Week:     strings.TrimSpace(row[weekIx]),
			Hours:    hours,
			Miles:    miles,
		})
	}
	return out, nil
}

// columnIndexes returns the header index of each named column, in order.
func columnIndexes(t *model.Table, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = t.Index(n)
		if idx[i] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", t.Source, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// naTokens are the cell values read as missing, matched case-sensitively.
// They follow the usual spreadsheet and dataframe export conventions.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func parseMeasure(s string) (model.NullFloat, error) {
	s = strings.TrimSpace(s)
	if _, ok := naTokens[s]; ok {
		return model.NullFloat{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.NullFloat{}, err
	}
	switch {
	case math.IsNaN(v):
		return model.NullFloat{}, nil
	case math.IsInf(v, 0):
		return model.NullFloat{}, fmt.Errorf("value %q is not finite", s)
	}
	return model.Float(v), nil
}

func cellError(t *model.Table, row int, col string, err error) error {
	line := 0
	if row < len(t.Lines) {
		line = t.Lines[row]
	}
	return &pcsv.RowError{
		Source: t.Source,
		Line:   line,
		Err:    fmt.Errorf("column %s: %w", col, err),
	}
}

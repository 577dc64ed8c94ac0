// Package model holds the in-memory shapes the pipeline passes between stages:
// the raw tables produced by the loader, the typed roster and timesheet rows,
// and the per-driver summary produced by the aggregator.
package model

import (
	"strconv"
	"strings"
)

// Column names the input files must carry.
const (
	ColDriverID = "driverId"
	ColName     = "name"
	ColWeek     = "week"
	ColHours    = "hours-logged"
	ColMiles    = "miles-logged"
)

// SummaryColumns are appended to the roster header in the summary output, in
// this order.
var SummaryColumns = []string{
	"total_hours",
	"avg_hours_per_week",
	"max_hours_week",
	"total_miles",
	"avg_miles_per_week",
	"max_miles_week",
	"weeks_worked",
	"miles_per_hour",
}

// Table is a header row plus data rows, exactly as read from a delimited file.
// Every row has len(Header) cells.
type Table struct {
	// Source is the path or name the table was read from. Used in errors.
	Source string
	Header []string
	Rows   [][]string
	// Lines holds the 1-based physical line number of each row, parallel to Rows.
	Lines []int
}

// Index returns the position of column name in the header, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Len reports the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// NullFloat is a float cell that may be empty in the source file.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps v as a present value.
func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// DriverRecord is one roster row. Fields keeps every roster cell in header
// order so unknown columns pass through to the summary untouched.
type DriverRecord struct {
	ID     string
	Name   string
	Fields []string
}

// TimesheetEntry is one week's logged hours and miles for one driver.
type TimesheetEntry struct {
	DriverID string
	Week     string
	Hours    NullFloat
	Miles    NullFloat
}

// DriverSummary is the per-driver aggregate row. All numeric aggregates are
// zero when WeeksWorked is zero.
type DriverSummary struct {
	DriverRecord

	TotalHours      float64
	AvgHoursPerWeek float64
	MaxHoursWeek    float64
	TotalMiles      float64
	AvgMilesPerWeek float64
	MaxMilesWeek    float64
	WeeksWorked     int
	MilesPerHour    float64
}

// Aggregates returns the derived values in SummaryColumns order.
func (s DriverSummary) Aggregates() []float64 {
	return []float64{
		s.TotalHours,
		s.AvgHoursPerWeek,
		s.MaxHoursWeek,
		s.TotalMiles,
		s.AvgMilesPerWeek,
		s.MaxMilesWeek,
		float64(s.WeeksWorked),
		s.MilesPerHour,
	}
}

// CanonicalID trims s and, when it is an integer, re-renders it in plain
// decimal form so "007" and "7" refer to the same driver.
func CanonicalID(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// Package aggregate turns the roster and timesheet rows into one summary row
// per driver.
package aggregate

import (
	"math"

	"driverstats/internal/model"
)

// Result is the output of Summarize.
type Result struct {
	// Summaries has one entry per roster row, in roster order.
	Summaries []model.DriverSummary

	// Orphans counts timesheet rows whose driver is not on the roster,
	// including rows with an empty driver id. They take no part in the output.
	Orphans int
}

// stat accumulates sum, count and max over the present values of one column.
type stat struct {
	sum   float64
	max   float64
	count int
}

func (s *stat) add(v model.NullFloat) {
	if !v.Valid {
		return
	}
	if s.count == 0 || v.Float64 > s.max {
		s.max = v.Float64
	}
	s.sum += v.Float64
	s.count++
}

func (s stat) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

type group struct {
	hours   stat
	miles   stat
	entries int
}

// Summarize groups entries by driver, computes sum/mean/max of hours and miles
// plus the entry count, and left-joins the result onto drivers. Drivers without
// entries get all-zero aggregates. It does not modify its inputs.
func Summarize(drivers []model.DriverRecord, entries []model.TimesheetEntry) Result {
	groups := make(map[string]*group, len(drivers))
	for _, e := range entries {
		if e.DriverID == "" {
			continue
		}
		g, ok := groups[e.DriverID]
		if !ok {
			g = &group{}
			groups[e.DriverID] = g
		}
		g.hours.add(e.Hours)
		g.miles.add(e.Miles)
		g.entries++
	}

	onRoster := make(map[string]struct{}, len(drivers))
	out := make([]model.DriverSummary, 0, len(drivers))
	for _, d := range drivers {
		onRoster[d.ID] = struct{}{}

		s := model.DriverSummary{DriverRecord: d}
		if g, ok := groups[d.ID]; ok {
			s.TotalHours = Round2(g.hours.sum)
			s.AvgHoursPerWeek = Round2(g.hours.mean())
			s.MaxHoursWeek = Round2(g.hours.max)
			s.TotalMiles = Round2(g.miles.sum)
			s.AvgMilesPerWeek = Round2(g.miles.mean())
			s.MaxMilesWeek = Round2(g.miles.max)
			s.WeeksWorked = g.entries
		}
		s.MilesPerHour = MilesPerHour(s.TotalMiles, s.TotalHours)
		out = append(out, s)
	}

	orphans := 0
	for _, e := range entries {
		if _, ok := onRoster[e.DriverID]; !ok || e.DriverID == "" {
			orphans++
		}
	}

	return Result{Summaries: out, Orphans: orphans}
}

// MilesPerHour returns miles/hours rounded to two decimals, or 0 when hours is 0.
func MilesPerHour(miles, hours float64) float64 {
	if hours == 0 {
		return 0
	}
	return Round2(miles / hours)
}

// Round2 rounds v to two decimals, halves to even on the scaled value.
func Round2(v float64) float64 {
	r := math.RoundToEven(v*100) / 100
	if r == 0 {
		// normalise -0
		return 0
	}
	return r
}

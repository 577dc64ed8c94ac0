// Package pipeline runs a complete driver statistics job: load the roster and
// timesheet, summarise per driver, write the summary table and render the
// ranked hours chart.
//
// Stages run in order on the calling goroutine:
//
//	load → transform → aggregate → write_summary [→ write_workbook] → render_chart
//
// Every stage is timed and reported through the metrics package. The context
// is checked before each stage and when files are opened, so an interrupt
// stops the run between stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"driverstats/internal/aggregate"
	"driverstats/internal/config"
	"driverstats/internal/datasource"
	"driverstats/internal/datasource/file"
	"driverstats/internal/loader"
	"driverstats/internal/metrics"
	"driverstats/internal/model"
	pcsv "driverstats/internal/parser/csv"
	"driverstats/internal/probe"
	"driverstats/internal/report"
	"driverstats/internal/transformer"
	"driverstats/internal/transformer/builtin"
)

// thisMany caps the duplicate rows logged one by one.
const thisMany = 3

// Stats describes a finished run.
type Stats struct {
	Drivers       int
	TimesheetRows int
	// Orphans are timesheet rows whose driver is not on the roster.
	Orphans int
	// Duplicates are timesheet rows that exactly repeat an earlier row.
	Duplicates int

	Summaries []model.DriverSummary
	Top       []model.DriverSummary

	SummaryPath  string
	WorkbookPath string
	ChartPath    string
}

// TotalHours is the sum of every driver's total hours.
func (s *Stats) TotalHours() float64 {
	var sum float64
	for _, d := range s.Summaries {
		sum += d.TotalHours
	}
	return sum
}

// TotalMiles is the sum of every driver's total miles.
func (s *Stats) TotalMiles() float64 {
	var sum float64
	for _, d := range s.Summaries {
		sum += d.TotalMiles
	}
	return sum
}

// MeanHours is the mean of total hours over all drivers, 0 without drivers.
func (s *Stats) MeanHours() float64 {
	if len(s.Summaries) == 0 {
		return 0
	}
	return s.TotalHours() / float64(len(s.Summaries))
}

// Busiest returns the first driver, in roster order, with the most total
// hours. ok is false when there are no drivers.
func (s *Stats) Busiest() (d model.DriverSummary, ok bool) {
	for i, cur := range s.Summaries {
		if i == 0 || cur.TotalHours > d.TotalHours {
			d = cur
		}
	}
	return d, len(s.Summaries) > 0
}

type runner struct {
	cfg config.Config
	log log.FieldLogger
	out io.Writer

	// lines maps timesheet entries to their source line numbers.
	lines []int
}

// Run executes the job described by cfg. Progress lines are written to out;
// diagnostics go to logger. The first failing stage aborts the run; files
// written by earlier stages are left in place.
func Run(ctx context.Context, cfg config.Config, logger log.FieldLogger, out io.Writer) (*Stats, error) {
	r := &runner{cfg: cfg, log: logger.WithField("job", cfg.Job), out: out}
	st := &Stats{
		SummaryPath:  cfg.Output.Summary,
		WorkbookPath: cfg.Output.Workbook,
		ChartPath:    cfg.Output.Chart,
	}

	var (
		roster  *model.Table
		drivers []model.DriverRecord
		entries []model.TimesheetEntry
	)

	r.progress("Loading data...")
	err := r.step(ctx, "load", func() error {
		var err error
		roster, drivers, entries, err = r.load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	st.Drivers, st.TimesheetRows = len(drivers), len(entries)
	metrics.RecordRow(cfg.Job, "drivers", int64(st.Drivers))
	metrics.RecordRow(cfg.Job, "timesheet_rows", int64(st.TimesheetRows))
	r.progress("Loaded %d drivers and %d timesheet entries", st.Drivers, st.TimesheetRows)

	err = r.step(ctx, "transform", func() error {
		drivers, entries, st.Duplicates = r.transform(drivers, entries)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.step(ctx, "aggregate", func() error {
		res := aggregate.Summarize(drivers, entries)
		st.Summaries, st.Orphans = res.Summaries, res.Orphans
		st.Top = report.TopN(res.Summaries, cfg.Chart.TopN)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if st.Orphans > 0 {
		metrics.RecordRow(cfg.Job, "orphan_rows", int64(st.Orphans))
		r.log.WithField("rows", st.Orphans).Warn("timesheet rows reference drivers missing from the roster; ignored")
	}

	err = r.step(ctx, "write_summary", func() error {
		return writeTo(ctx, file.NewTarget(cfg.Output.Summary), func(w io.Writer) error {
			return report.WriteSummaryCSV(w, roster.Header, st.Summaries)
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordArtifact(cfg.Job, "summary_csv")
	r.progress("Summary saved to %s", cfg.Output.Summary)

	if cfg.Output.Workbook != "" {
		err = r.step(ctx, "write_workbook", func() error {
			return writeTo(ctx, file.NewTarget(cfg.Output.Workbook), func(w io.Writer) error {
				return report.WriteSummaryXLSX(w, roster.Header, st.Summaries)
			})
		})
		if err != nil {
			return nil, err
		}
		metrics.RecordArtifact(cfg.Job, "summary_xlsx")
		r.progress("Workbook saved to %s", cfg.Output.Workbook)
	}

	err = r.step(ctx, "render_chart", func() error {
		return r.renderChart(ctx, st.Top)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordArtifact(cfg.Job, "chart")
	r.progress("Chart saved to %s", cfg.Output.Chart)

	return st, nil
}

// step runs fn as the named stage, recording its outcome and duration.
func (r *runner) step(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStep(r.cfg.Job, name, err, elapsed)

	entry := r.log.WithFields(log.Fields{"step": name, "elapsed": elapsed.Truncate(time.Microsecond)})
	if err != nil {
		entry.WithError(err).Debug("step failed")
		return err
	}
	entry.Debug("step done")
	return nil
}

func (r *runner) progress(format string, a ...any) {
	fmt.Fprintf(r.out, format+"\n", a...)
}

// parser returns the CSV parser for src, detecting the delimiter from a
// sample when the configured one is CommaAuto.
func (r *runner) parser(ctx context.Context, src datasource.Source, name string) (*pcsv.Parser, error) {
	comma, _ := utf8.DecodeRuneInString(r.cfg.Input.Comma)
	if strings.EqualFold(r.cfg.Input.Comma, config.CommaAuto) {
		sample, err := probe.Sample(ctx, src, probe.DefaultSampleBytes)
		if err != nil {
			return nil, err
		}
		comma = probe.DetectDelimiter(sample)
		r.log.WithFields(log.Fields{"file": name, "delimiter": string(comma)}).Debug("delimiter detected")
	}
	return pcsv.NewParser(pcsv.Options{
		Comma:      comma,
		TrimSpace:  r.cfg.Input.TrimSpace,
		LazyQuotes: r.cfg.Input.LazyQuotes,
		Encoding:   r.cfg.Input.Encoding,
	}), nil
}

func (r *runner) readTable(ctx context.Context, path string) (*model.Table, error) {
	src := file.NewLocal(path)
	p, err := r.parser(ctx, src, path)
	if err != nil {
		return nil, err
	}
	return loader.ReadTable(ctx, src, p, path)
}

func (r *runner) load(ctx context.Context) (*model.Table, []model.DriverRecord, []model.TimesheetEntry, error) {
	roster, err := r.readTable(ctx, r.cfg.Input.Drivers)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load drivers: %w", err)
	}
	drivers, err := loader.Drivers(roster)
	if err != nil {
		r.hintColumns(roster, model.ColDriverID, model.ColName)
		return nil, nil, nil, fmt.Errorf("load drivers: %w", err)
	}

	sheet, err := r.readTable(ctx, r.cfg.Input.Timesheet)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load timesheet: %w", err)
	}
	entries, err := loader.Timesheet(sheet)
	if err != nil {
		if errors.Is(err, loader.ErrMissingColumn) {
			r.hintColumns(sheet, model.ColDriverID, model.ColWeek, model.ColHours, model.ColMiles)
		}
		return nil, nil, nil, fmt.Errorf("load timesheet: %w", err)
	}

	r.lines = sheet.Lines
	return roster, drivers, entries, nil
}

// hintColumns logs, for each missing required column, the header that looks
// like a misspelling of it.
func (r *runner) hintColumns(t *model.Table, required ...string) {
	for want, got := range probe.Missing(t.Header, required) {
		if got == "" {
			continue
		}
		r.log.WithFields(log.Fields{"file": t.Source, "column": want, "found": got}).
			Warn("required column missing; a header with a similar name exists")
	}
}

func (r *runner) transform(drivers []model.DriverRecord, entries []model.TimesheetEntry) ([]model.DriverRecord, []model.TimesheetEntry, int) {
	drivers = transformer.Chain[model.DriverRecord]{builtin.NormalizeNames{}}.Apply(drivers)

	reported := 0
	scan := &builtin.DuplicateScan{OnDuplicate: func(dup, first int) {
		reported++
		switch {
		case reported <= thisMany:
			r.log.WithFields(log.Fields{
				"line":       r.lineOf(dup),
				"first_line": r.lineOf(first),
				"driver":     entries[dup].DriverID,
				"week":       entries[dup].Week,
			}).Warn("duplicate timesheet row; counted again")
		case reported == thisMany+1:
			r.log.Warn("... additional duplicate rows suppressed ...")
		}
	}}
	entries = transformer.Chain[model.TimesheetEntry]{scan}.Apply(entries)

	if scan.Found > 0 {
		metrics.RecordRow(r.cfg.Job, "duplicate_rows", int64(scan.Found))
		r.log.WithField("rows", scan.Found).Info("duplicate timesheet rows found")
	}
	return drivers, entries, scan.Found
}

func (r *runner) lineOf(i int) int {
	if i < len(r.lines) {
		return r.lines[i]
	}
	return 0
}

func (r *runner) renderChart(ctx context.Context, top []model.DriverSummary) (err error) {
	fig, err := report.NewFigure(report.FigureOptions{
		WidthIn:  r.cfg.Chart.WidthIn,
		HeightIn: r.cfg.Chart.HeightIn,
		DPI:      r.cfg.Chart.DPI,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fig.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := report.RenderTopChart(fig, top, report.DefaultChartText(r.cfg.Chart.TopN)); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return writeTo(ctx, file.NewTarget(r.cfg.Output.Chart), fig.WritePNG)
}

// writeTo creates sink, hands it to write and closes it. A failed close is
// reported when write itself succeeded.
func writeTo(ctx context.Context, sink datasource.Sink, write func(io.Writer) error) error {
	w, err := sink.Create(ctx)
	if err != nil {
		return err
	}
	return errors.Join(write(w), w.Close())
}

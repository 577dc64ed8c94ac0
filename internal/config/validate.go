package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	pcsv "driverstats/internal/parser/csv"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path names the environment
// variable the finding is about.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints cfg without touching the filesystem.
func Validate(cfg Config) []Issue {
	var issues []Issue
	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, errorf("JOB", "job must not be empty; it labels metrics and logs"))
	}
	issues = append(issues, validateInput(cfg.Input)...)
	issues = append(issues, validateOutput(cfg.Input, cfg.Output)...)
	issues = append(issues, validateChart(cfg.Chart)...)
	issues = append(issues, validateLogging(cfg.Logging)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

func validateInput(in InputConfig) []Issue {
	var issues []Issue
	if strings.TrimSpace(in.Drivers) == "" {
		issues = append(issues, errorf("INPUT_DRIVERS", "driver roster path must not be empty"))
	}
	if strings.TrimSpace(in.Timesheet) == "" {
		issues = append(issues, errorf("INPUT_TIMESHEET", "timesheet path must not be empty"))
	}
	if !pcsv.Supported(in.Encoding) {
		issues = append(issues, errorf("INPUT_ENCODING", "unsupported encoding %q", in.Encoding))
	}
	switch r, _ := utf8.DecodeRuneInString(in.Comma); {
	case strings.EqualFold(in.Comma, CommaAuto):
	case in.Comma == "":
		issues = append(issues, errorf("INPUT_COMMA", "delimiter must not be empty"))
	case r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError:
		issues = append(issues, errorf("INPUT_COMMA", "invalid delimiter %q", in.Comma))
	case utf8.RuneCountInString(in.Comma) > 1:
		issues = append(issues, warnf("INPUT_COMMA", "only the first character of %q is used", in.Comma))
	}
	return issues
}

func validateOutput(in InputConfig, out OutputConfig) []Issue {
	var issues []Issue
	if strings.TrimSpace(out.Summary) == "" {
		issues = append(issues, errorf("OUTPUT_SUMMARY", "summary path must not be empty"))
	}
	if strings.TrimSpace(out.Chart) == "" {
		issues = append(issues, errorf("OUTPUT_CHART", "chart path must not be empty"))
	} else if ext := strings.ToLower(filepath.Ext(out.Chart)); ext != ".png" {
		issues = append(issues, warnf("OUTPUT_CHART", "chart is written as PNG but the path ends in %q", ext))
	}
	if out.Workbook != "" && strings.ToLower(filepath.Ext(out.Workbook)) != ".xlsx" {
		issues = append(issues, warnf("OUTPUT_WORKBOOK", "workbook is written as XLSX but the path is %q", out.Workbook))
	}

	inputs := map[string]string{
		filepath.Clean(in.Drivers):   "INPUT_DRIVERS",
		filepath.Clean(in.Timesheet): "INPUT_TIMESHEET",
	}
	for key, p := range map[string]string{"OUTPUT_SUMMARY": out.Summary, "OUTPUT_CHART": out.Chart, "OUTPUT_WORKBOOK": out.Workbook} {
		if p == "" {
			continue
		}
		if src, ok := inputs[filepath.Clean(p)]; ok {
			issues = append(issues, errorf(key, "output would overwrite the %s input", src))
		}
	}
	return issues
}

func validateChart(c ChartConfig) []Issue {
	var issues []Issue
	switch {
	case c.TopN < 1:
		issues = append(issues, errorf("CHART_TOP_N", "top-n must be at least 1, got %d", c.TopN))
	case c.TopN > 50:
		issues = append(issues, warnf("CHART_TOP_N", "%d bars will make the driver labels unreadable", c.TopN))
	}
	if c.WidthIn <= 0 || c.HeightIn <= 0 {
		issues = append(issues, errorf("CHART_WIDTH_IN", "chart size must be positive, got %vx%v", c.WidthIn, c.HeightIn))
	}
	switch {
	case c.DPI <= 0:
		issues = append(issues, errorf("CHART_DPI", "dpi must be positive, got %v", c.DPI))
	case c.DPI < 50 || c.DPI > 1200:
		issues = append(issues, warnf("CHART_DPI", "dpi %v is outside the usual 50-1200 range", c.DPI))
	}
	return issues
}

func validateLogging(l LoggingConfig) []Issue {
	var issues []Issue
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		issues = append(issues, errorf("LOG_LEVEL", "%v", err))
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		issues = append(issues, errorf("LOG_FORMAT", "log format must be text or json, got %q", l.Format))
	}
	return issues
}

func validateMetrics(m MetricsConfig) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, errorf("METRICS_PUSHGATEWAY_URL", "pushgateway backend requires a URL"))
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, errorf("METRICS_DATADOG_ADDR", "datadog backend requires a DogStatsD address"))
		}
	default:
		issues = append(issues, warnf("METRICS_BACKEND", "unknown metrics backend %q; metrics disabled", m.Backend))
	}
	return issues
}

func errorf(key, format string, a ...any) Issue {
	return Issue{Severity: SeverityError, Path: Prefix + "_" + key, Message: fmt.Sprintf(format, a...)}
}

func warnf(key, format string, a ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: Prefix + "_" + key, Message: fmt.Sprintf(format, a...)}
}

// Package config loads the run configuration from the environment.
//
// Every setting has a default, so a bare run needs no configuration at all and
// reads files/input/{drivers,timesheet}.csv, writing files/output/summary.csv
// and files/plots/top10_drivers.png. Variables use the DRIVERSTATS_ prefix,
// e.g. DRIVERSTATS_INPUT_DRIVERS or DRIVERSTATS_CHART_DPI. A .env file in the
// working directory is read first when present; real environment variables
// win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "DRIVERSTATS"

// CommaAuto as InputConfig.Comma asks for delimiter detection.
const CommaAuto = "auto"

// Config is the complete run configuration.
type Config struct {
	// Job labels metrics and log lines.
	Job string `envconfig:"JOB" default:"driverstats"`

	Input   InputConfig   `envconfig:"INPUT"`
	Output  OutputConfig  `envconfig:"OUTPUT"`
	Chart   ChartConfig   `envconfig:"CHART"`
	Logging LoggingConfig `envconfig:"LOG"`
	Metrics MetricsConfig `envconfig:"METRICS"`
}

// InputConfig locates and describes the two source files.
type InputConfig struct {
	Drivers   string `envconfig:"DRIVERS" default:"files/input/drivers.csv"`
	Timesheet string `envconfig:"TIMESHEET" default:"files/input/timesheet.csv"`
	// Encoding is the source charset, e.g. utf-8 or windows-1250.
	Encoding string `envconfig:"ENCODING" default:"utf-8"`
	// Comma is the field delimiter; only its first rune is used. CommaAuto
	// detects it per file from a sample.
	Comma     string `envconfig:"COMMA" default:","`
	TrimSpace bool   `envconfig:"TRIM_SPACE" default:"false"`
	// LazyQuotes accepts quotes inside unquoted fields, e.g. Dwayne "The Rock" Johnson.
	LazyQuotes bool `envconfig:"LAZY_QUOTES" default:"true"`
}

// OutputConfig locates the report files. Workbook is optional.
type OutputConfig struct {
	Summary  string `envconfig:"SUMMARY" default:"files/output/summary.csv"`
	Workbook string `envconfig:"WORKBOOK"`
	Chart    string `envconfig:"CHART" default:"files/plots/top10_drivers.png"`
}

// ChartConfig sizes the ranked chart.
type ChartConfig struct {
	TopN     int     `envconfig:"TOP_N" default:"10"`
	WidthIn  float64 `envconfig:"WIDTH_IN" default:"12"`
	HeightIn float64 `envconfig:"HEIGHT_IN" default:"8"`
	DPI      float64 `envconfig:"DPI" default:"300"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

// MetricsConfig selects the metrics backend: none, pushgateway or datadog.
type MetricsConfig struct {
	Backend        string `envconfig:"BACKEND" default:"none"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" default:"http://localhost:9091"`
	DatadogAddr    string `envconfig:"DATADOG_ADDR" default:"127.0.0.1:8125"`
	DatadogPrefix  string `envconfig:"DATADOG_NAMESPACE" default:"driverstats."`
}

// Load reads the optional env files (".env" when none are given) and then the
// process environment into a Config. Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

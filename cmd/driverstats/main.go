// Command driverstats summarises driver timesheets.
//
// It reads files/input/drivers.csv and files/input/timesheet.csv, writes one
// summary row per driver to files/output/summary.csv and renders the ten
// drivers with the most hours to files/plots/top10_drivers.png. It takes no
// arguments; every path and option can be changed through DRIVERSTATS_*
// environment variables or a .env file (see internal/config).
//
// Progress and the final statistics go to stdout, diagnostics to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"driverstats/internal/config"
	"driverstats/internal/logging"
	"driverstats/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one job and returns the process exit code.
func run(ctx context.Context, stdout, stderr io.Writer, envFiles ...string) int {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	issues := config.Validate(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "configuration is invalid")
		return 1
	}

	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return 1
	}

	flush := setupMetrics(cfg, logger)
	defer flush()

	logger.WithFields(log.Fields{
		"drivers":   cfg.Input.Drivers,
		"timesheet": cfg.Input.Timesheet,
		"summary":   cfg.Output.Summary,
		"chart":     cfg.Output.Chart,
	}).Debug("starting run")

	start := time.Now()
	st, err := pipeline.Run(ctx, *cfg, logger, stdout)
	if err != nil {
		logger.WithError(err).Error("run failed")
		return 1
	}

	printStats(stdout, st)
	logger.WithField("elapsed", time.Since(start).Truncate(time.Millisecond)).Debug("completed")
	return 0
}

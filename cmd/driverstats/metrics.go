package main

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"driverstats/internal/config"
	"driverstats/internal/metrics"
	"driverstats/internal/metrics/datadog"
	"driverstats/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at exit. A backend that fails to initialise is
// logged and metrics stay disabled.
func setupMetrics(cfg *config.Config, logger log.FieldLogger) (flush func()) {
	var (
		b   metrics.Backend
		err error
	)

	switch name := strings.ToLower(cfg.Metrics.Backend); name {
	case "pushgateway":
		b, err = newPushgateway(cfg)
	case "datadog":
		b, err = newDatadog(cfg)
	case "", "none":
		logger.Debug("metrics: disabled")
		return func() {}
	default:
		logger.Warnf("metrics: unknown backend %q; metrics disabled", name)
		return func() {}
	}
	if err != nil {
		logger.WithError(err).Warn("metrics: backend init failed; using nop")
		return func() {}
	}

	metrics.SetBackend(b)
	logger.WithField("backend", cfg.Metrics.Backend).Debug("metrics: enabled")
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.WithError(err).Warn("metrics: flush failed")
		}
	}
}

func newPushgateway(cfg *config.Config) (metrics.Backend, error) {
	b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newDatadog(cfg *config.Config) (metrics.Backend, error) {
	b, err := datadog.NewBackend(datadog.Config{
		Addr:       cfg.Metrics.DatadogAddr,
		Namespace:  cfg.Metrics.DatadogPrefix,
		GlobalTags: []string{"job:" + cfg.Job},
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

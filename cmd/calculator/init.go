package main

import (
	"context"
	"errors"

	"advanced-calculator/internal/calculator"
	"advanced-calculator/internal/config"
	"advanced-calculator/internal/observability"
	"advanced-calculator/internal/repl"
)

// initTelemetry installs tracing, metrics and, when exporting, the OTLP log
// bridge, then registers every domain's instruments. The returned func
// shuts down whatever was started.
func initTelemetry(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	traceShutdown, err := observability.InitTracing(ctx, cfg.OTLPEnabled)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, traceShutdown)

	metricShutdown, err := initMetrics(ctx, cfg.OTLPEnabled)
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	shutdowns = append(shutdowns, metricShutdown)

	if cfg.OTLPEnabled {
		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	return shutdown, nil
}

// initMetrics initialises the meter provider and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context, export bool) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, export)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	if err := repl.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

package calculator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics(). Until then the
// engine records nothing.
var (
	opsCounter   metric.Int64Counter
	opsHistogram metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge
	historyGauge metric.Int64Gauge
)

// InitMetrics registers the engine's OTel instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of failed calculations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last calculation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	historyGauge, err = meter.Int64Gauge("calculator.history.size",
		metric.WithDescription("Number of calculations currently held in history"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return fmt.Errorf("creating history gauge: %w", err)
	}

	return nil
}

func recordCalculation(calc Calculation, elapsed time.Duration, historySize int) {
	if opsCounter == nil {
		return
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("operation", calc.Operation))
	ms := float64(elapsed.Microseconds()) / 1000.0

	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, ms, attrs)
	resultGauge.Record(ctx, calc.Result.InexactFloat64(), attrs)
	historyGauge.Record(ctx, int64(historySize))
}

func recordFailure(operation, kind string) {
	if errorCounter == nil {
		return
	}

	errorCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("kind", kind),
	))
}

func recordHistorySize(size int) {
	if historyGauge == nil {
		return
	}
	historyGauge.Record(context.Background(), int64(size))
}

package repl

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	commandCounter metric.Int64Counter
	errorCounter   metric.Int64Counter
)

// InitMetrics registers the REPL's OTel instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("repl")

	var err error

	commandCounter, err = meter.Int64Counter("repl.commands.total",
		metric.WithDescription("Total number of commands entered"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return fmt.Errorf("creating command counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("repl.errors.total",
		metric.WithDescription("Total number of commands that reported an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}

func recordCommand(ctx context.Context, command string) {
	if commandCounter == nil {
		return
	}
	commandCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("command", command)))
}

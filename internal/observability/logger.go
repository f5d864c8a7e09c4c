package observability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"advanced-calculator/internal/config"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until InitLogger
// runs, so packages may log unconditionally.
var Logger = zap.NewNop()

// InitLogger points Logger at the configured log file. The REPL owns stdout,
// so log output never goes to the terminal.
func InitLogger(cfg *config.Config) error {
	logFile := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{logFile}
	zcfg.ErrorOutputPaths = []string{logFile}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	Logger = logger
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger enriched with the session id and,
// when ctx carries a valid span, trace_id and span_id.
//
// ctx itself is attached as a zap.Any("context", ctx) field: the otelzap
// bridge picks up any field implementing context.Context and emits the OTLP
// log record with it, so exported records carry native trace correlation.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	logger := Logger
	if id := SessionIDFromContext(ctx); id != "" {
		logger = logger.With(zap.String("session_id", id))
	}

	span := trace.SpanContextFromContext(ctx)
	if !span.IsValid() {
		return logger
	}

	return logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"advanced-calculator/internal/calculator"
	"advanced-calculator/internal/config"
	"advanced-calculator/internal/observability"
	"advanced-calculator/internal/repl"
	"advanced-calculator/internal/server"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, exitMessage(err))
		os.Exit(1)
	}
}

// sessionError marks a failure after the REPL started, as opposed to one
// during startup.
type sessionError struct {
	err error
}

func (e *sessionError) Error() string { return e.err.Error() }

func (e *sessionError) Unwrap() error { return e.err }

func exitMessage(err error) string {
	var sErr *sessionError
	if errors.As(err, &sErr) {
		return fmt.Sprintf("The calculator stopped unexpectedly: %v", sErr.err)
	}
	return fmt.Sprintf("An error occurred while starting the calculator: %v", err)
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadDotEnv(); err != nil {
		return err
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logger
	if err := observability.InitLogger(cfg); err != nil {
		return err
	}
	defer observability.SyncLogger()

	// Telemetry
	shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			observability.Logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	// Engine
	calc, err := calculator.New(cfg)
	if err != nil {
		observability.Logger.Error("calculator initialization failed", zap.Error(err))
		return err
	}

	autoSave, err := calculator.NewAutoSaveObserver(calc, observability.Logger)
	if err != nil {
		return err
	}
	calc.AddObserver(calculator.NewLoggingObserver(observability.Logger))
	calc.AddObserver(autoSave)

	// Diagnostics
	if cfg.DiagnosticsAddr != "" {
		diag := server.NewDiagnostics(cfg.DiagnosticsAddr)
		diag.Start()
		defer func() {
			if err := diag.Shutdown(context.Background()); err != nil {
				observability.Logger.Warn("diagnostics shutdown failed", zap.Error(err))
			}
		}()
	}

	// REPL
	r, restore, err := repl.NewTerminal(calc, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer restore()

	// A signal cancels ctx while the REPL is blocked reading stdin; closing
	// stdin unblocks the read so Run can return.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			restore()
			_ = os.Stdin.Close()
		case <-done:
		}
	}()

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		observability.Logger.Error("repl session failed", zap.Error(err))
		return &sessionError{err: err}
	}
	return nil
}

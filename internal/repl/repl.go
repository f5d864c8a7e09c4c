package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"advanced-calculator/internal/calculator"
	"advanced-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var tracer = otel.Tracer("repl")

const cancelWord = "cancel"

// errCancelled reports that the user typed cancel at an operand prompt.
var errCancelled = errors.New("operation cancelled")

// builtinCommands are the non-arithmetic commands, in help order.
var builtinCommands = []string{"help", "history", "undo", "redo", "clear", "save", "load", "exit"}

// REPL reads commands, drives the calculator and prints the outcome.
type REPL struct {
	calc      *calculator.Calculator
	in        lineReader
	out       io.Writer
	sessionID string
}

// New returns a REPL reading newline-separated commands from in.
func New(calc *calculator.Calculator, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		calc:      calc,
		in:        newScanReader(in, out),
		out:       out,
		sessionID: observability.NewID(),
	}
}

// NewTerminal returns a REPL with line editing when stdin is a terminal and
// falls back to New otherwise. The returned restore func puts the terminal
// back into its previous mode; it must always be called and is safe to call
// more than once.
func NewTerminal(calc *calculator.Calculator, stdin *os.File, stdout io.Writer) (*REPL, func(), error) {
	if !isTerminal(stdin) {
		return New(calc, stdin, stdout), func() {}, nil
	}

	fd := int(stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("entering raw mode: %w", err)
	}
	var once sync.Once
	restore := func() { once.Do(func() { _ = term.Restore(fd, state) }) }

	r := &REPL{calc: calc, sessionID: observability.NewID()}
	tr := newTermReader(struct {
		io.Reader
		io.Writer
	}{stdin, stdout}, r.commands)
	r.in = tr
	r.out = tr.t

	return r, restore, nil
}

// SessionID identifies this REPL run in logs and traces.
func (r *REPL) SessionID() string {
	return r.sessionID
}

// Run loops until exit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	ctx = observability.ContextWithSessionID(ctx, r.sessionID)
	logger := observability.LoggerWithTrace(ctx)
	logger.Info("repl session started")

	r.println("Welcome to the Advanced Calculator REPL!")
	r.println("Type 'help' for a list of commands")

	for {
		if err := ctx.Err(); err != nil {
			logger.Info("repl session interrupted", zap.Error(err))
			return err
		}

		r.println()
		line, err := r.in.ReadLine("Enter command: ")
		if err != nil && ctx.Err() != nil {
			logger.Info("repl session interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			r.endOfInput(logger)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}

		command := strings.ToLower(strings.TrimSpace(line))
		if command == "" {
			continue
		}

		stop, err := r.execute(ctx, command)
		if err != nil && ctx.Err() != nil {
			logger.Info("repl session interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			r.endOfInput(logger)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading operand: %w", err)
		}
		if stop {
			logger.Info("repl session ended", zap.String("reason", "exit"))
			return nil
		}
	}
}

func (r *REPL) endOfInput(logger *zap.Logger) {
	r.println()
	r.println("Input terminated. Exiting the calculator REPL.")
	logger.Info("repl session ended", zap.String("reason", "eof"))
}

// execute runs one command inside its own span. It reports stop once the
// session should end; a non-nil error means input could not be read.
func (r *REPL) execute(ctx context.Context, command string) (bool, error) {
	ctx, span := tracer.Start(ctx, "repl."+command,
		trace.WithAttributes(
			attribute.String("repl.command", command),
			attribute.String("session.id", r.sessionID),
		),
	)
	defer span.End()

	recordCommand(ctx, command)
	logger := observability.LoggerWithTrace(ctx)

	switch command {
	case "help":
		r.help()
	case "history":
		r.history()
	case "undo":
		if r.calc.Undo() {
			r.println("Last operation undone.")
		} else {
			r.println("No operation to undo.")
		}
	case "redo":
		if r.calc.Redo() {
			r.println("Last operation redone.")
		} else {
			r.println("No operation to redo.")
		}
	case "clear":
		r.calc.ClearHistory()
		r.println("History cleared.")
	case "save":
		if err := r.calc.SaveHistory(); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, command, "saving history failed", err)
			r.printf("Error saving history: %v\n", err)
			return false, nil
		}
		r.println("History saved successfully.")
	case "load":
		if err := r.calc.LoadHistory(); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, command, "loading history failed", err)
			r.printf("Error loading history: %v\n", err)
			return false, nil
		}
		r.println("History loaded successfully.")
	case "exit":
		if err := r.calc.SaveHistory(); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, command, "saving history on exit failed", err)
			r.printf("Warning: Could not save history before exiting: %v\n", err)
		} else {
			r.println("History saved successfully.")
		}
		r.println("Exiting the calculator REPL. Goodbye!")
		return true, nil
	default:
		if !r.calc.Registry().Has(command) {
			r.printf("Unknown command: %s. Type 'help' for a list of commands.\n", command)
			return false, nil
		}
		return false, r.calculate(ctx, span, logger, command)
	}

	return false, nil
}

func (r *REPL) calculate(ctx context.Context, span trace.Span, logger *zap.Logger, command string) error {
	r.println()
	r.println("Enter numbers (or 'cancel' to abort):")

	a, err := r.operand("First number: ")
	if err != nil {
		return r.operandError(span, err)
	}
	b, err := r.operand("Second number: ")
	if err != nil {
		return r.operandError(span, err)
	}

	if err := r.calc.SetOperationByName(command); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, command, "selecting operation failed", err)
		r.printf("Error: %v\n", err)
		return nil
	}

	result, err := r.calc.PerformCalculation(a, b)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, command, "calculation failed", err)

		var vErr *calculator.ValidationError
		var opErr *calculator.OperationError
		if errors.As(err, &vErr) || errors.As(err, &opErr) {
			r.printf("Error: %v\n", err)
		} else {
			r.printf("An unexpected error occurred: %v\n", err)
		}
		return nil
	}

	formatted := result.Round(int32(r.calc.Config().Precision)).String()
	span.SetAttributes(attribute.String("calculator.result", formatted))
	r.println()
	r.printf("Result: %s\n", formatted)
	return nil
}

func (r *REPL) operand(prompt string) (string, error) {
	line, err := r.in.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(line), cancelWord) {
		return "", errCancelled
	}
	return line, nil
}

// operandError turns a cancelled prompt into a message; other read errors
// end the session.
func (r *REPL) operandError(span trace.Span, err error) error {
	if errors.Is(err, errCancelled) {
		span.AddEvent("cancelled")
		r.println("Operation cancelled.")
		return nil
	}
	return err
}

func (r *REPL) help() {
	r.println()
	r.println("Available commands:")
	r.printf("  %s - Perform arithmetic operations\n", strings.Join(r.calc.Registry().Names(), ", "))
	r.println("  history - Show calculation history")
	r.println("  undo - Undo the last operation")
	r.println("  redo - Redo the last undone operation")
	r.println("  clear - Clear the history")
	r.println("  save - Save the current history to a file")
	r.println("  load - Load history from a file")
	r.println("  exit - Exit the calculator REPL")
}

func (r *REPL) history() {
	entries := r.calc.ShowHistory()
	if len(entries) == 0 {
		r.println("No calculations in history.")
		return
	}

	r.println()
	r.println("Calculation History:")
	for i, entry := range entries {
		r.printf("%d: %s\n", i+1, entry)
	}
}

// commands lists every command name, used for tab completion.
func (r *REPL) commands() []string {
	names := slices.Concat(builtinCommands, r.calc.Registry().Names())
	slices.Sort(names)
	return names
}

func (r *REPL) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *REPL) printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

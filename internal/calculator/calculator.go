package calculator

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"time"

	"advanced-calculator/internal/config"
	"advanced-calculator/internal/observability"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Calculator owns the selected operation, the bounded history with its
// undo/redo snapshots, and the observers notified on each calculation.
// It is not safe for concurrent use.
type Calculator struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *Registry

	strategy  Operation
	history   []Calculation
	undoStack [][]Calculation
	redoStack [][]Calculation
	observers []HistoryObserver
}

// Option customises a Calculator at construction.
type Option func(*Calculator)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

func WithRegistry(registry *Registry) Option {
	return func(c *Calculator) { c.registry = registry }
}

// New validates cfg, prepares the history directory and loads any saved
// history. A failed load is logged and otherwise ignored.
func New(cfg *config.Config, opts ...Option) (*Calculator, error) {
	if cfg == nil {
		return nil, &config.ConfigurationError{Field: "config", Msg: "configuration is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Calculator{
		cfg:      cfg,
		logger:   observability.Logger,
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := os.MkdirAll(cfg.HistoryDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	c.logger.Info("calculator initialized",
		zap.String("history_file", cfg.HistoryFile()),
		zap.Int("max_history_size", cfg.MaxHistorySize),
		zap.Bool("auto_save", cfg.AutoSave),
		zap.Int("precision", cfg.Precision),
	)

	if err := c.LoadHistory(); err != nil {
		c.logger.Warn("could not load existing history", zap.Error(err))
	}

	return c, nil
}

// Config returns the configuration the calculator was built with.
func (c *Calculator) Config() *config.Config {
	return c.cfg
}

// Registry returns the operation registry used to resolve command names.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

// SetOperation selects the strategy for the next calculation.
func (c *Calculator) SetOperation(op Operation) {
	c.strategy = op
	if op != nil {
		c.logger.Debug("operation set", zap.String("operation", op.Name()))
	}
}

// SetOperationByName resolves name through the registry and selects it.
func (c *Calculator) SetOperationByName(name string) error {
	op, err := c.registry.Create(name)
	if err != nil {
		return err
	}
	c.SetOperation(op)
	return nil
}

func (c *Calculator) Operation() Operation {
	return c.strategy
}

func (c *Calculator) AddObserver(o HistoryObserver) {
	c.observers = append(c.observers, o)
}

// RemoveObserver drops the first observer equal to o; removing an unknown
// observer does nothing. Observers of non-comparable types are matched with
// reflect.DeepEqual.
func (c *Calculator) RemoveObserver(o HistoryObserver) {
	if i := slices.IndexFunc(c.observers, func(x HistoryObserver) bool { return sameObserver(x, o) }); i >= 0 {
		c.observers = slices.Delete(c.observers, i, i+1)
	}
}

func sameObserver(a, b HistoryObserver) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil || !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func (c *Calculator) Observers() []HistoryObserver {
	return slices.Clone(c.observers)
}

// PerformCalculation validates a and b, runs the selected operation and
// commits the result to history before notifying observers. An observer
// error is returned after the calculation has been committed.
func (c *Calculator) PerformCalculation(a, b any) (decimal.Decimal, error) {
	if c.strategy == nil {
		recordFailure("none", "operation")
		return decimal.Decimal{}, operationError("No operation set", nil)
	}
	name := c.strategy.Name()

	x, err := ValidateNumber(a, c.cfg)
	if err != nil {
		recordFailure(name, "validation")
		return decimal.Decimal{}, err
	}
	y, err := ValidateNumber(b, c.cfg)
	if err != nil {
		recordFailure(name, "validation")
		return decimal.Decimal{}, err
	}

	start := time.Now()
	result, err := c.strategy.Execute(x, y)
	elapsed := time.Since(start)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			recordFailure(name, "validation")
			return decimal.Decimal{}, err
		}

		c.logger.Error("calculation failed",
			zap.String("operation", name),
			zap.String("operand1", x.String()),
			zap.String("operand2", y.String()),
			zap.Error(err),
		)
		recordFailure(name, "operation")
		return decimal.Decimal{}, operationError("Operation failed", err)
	}

	calc := newRecord(name, x, y, result)
	c.commit(calc)
	recordCalculation(calc, elapsed, len(c.history))

	for _, o := range c.observers {
		if err := o.Update(&calc); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (c *Calculator) commit(calc Calculation) {
	c.undoStack = append(c.undoStack, slices.Clone(c.history))

	c.history = append(c.history, calc)
	if excess := len(c.history) - c.cfg.MaxHistorySize; excess > 0 {
		c.history = slices.Delete(c.history, 0, excess)
	}

	c.redoStack = nil
}

// Undo restores the history as it was before the last change.
func (c *Calculator) Undo() bool {
	if len(c.undoStack) == 0 {
		return false
	}

	last := len(c.undoStack) - 1
	snapshot := c.undoStack[last]
	c.undoStack = c.undoStack[:last]

	c.redoStack = append(c.redoStack, c.history)
	c.history = snapshot
	recordHistorySize(len(c.history))
	return true
}

// Redo reapplies the last undone change.
func (c *Calculator) Redo() bool {
	if len(c.redoStack) == 0 {
		return false
	}

	last := len(c.redoStack) - 1
	snapshot := c.redoStack[last]
	c.redoStack = c.redoStack[:last]

	c.undoStack = append(c.undoStack, c.history)
	c.history = snapshot
	recordHistorySize(len(c.history))
	return true
}

func (c *Calculator) CanUndo() bool { return len(c.undoStack) > 0 }

func (c *Calculator) CanRedo() bool { return len(c.redoStack) > 0 }

// ClearHistory drops the history and both undo and redo stacks.
func (c *Calculator) ClearHistory() {
	c.history = nil
	c.undoStack = nil
	c.redoStack = nil
	recordHistorySize(0)
	c.logger.Info("history cleared")
}

// History returns a copy of the history, oldest first.
func (c *Calculator) History() []Calculation {
	return slices.Clone(c.history)
}

// ShowHistory renders each calculation, oldest first.
func (c *Calculator) ShowHistory() []string {
	out := make([]string, len(c.history))
	for i, calc := range c.history {
		out[i] = calc.String()
	}
	return out
}

// Table is history laid out as display text under fixed column names.
type Table struct {
	Columns []string
	Rows    [][]string
}

// HistoryTable returns the history as a Table with the file's columns.
func (c *Calculator) HistoryTable() Table {
	t := Table{Columns: slices.Clone(Columns), Rows: make([][]string, 0, len(c.history))}
	for _, calc := range c.history {
		t.Rows = append(t.Rows, calcRow(calc))
	}
	return t
}

// SaveHistory writes the history to the configured CSV file. An empty
// history produces a header-only file.
func (c *Calculator) SaveHistory() error {
	path := c.cfg.HistoryFile()

	if err := writeHistoryFile(path, c.cfg.DefaultEncoding, c.history); err != nil {
		c.logger.Error("failed to save history", zap.String("path", path), zap.Error(err))
		return operationError("Failed to save history", err)
	}

	if len(c.history) == 0 {
		c.logger.Info("empty history file created", zap.String("path", path))
		return nil
	}

	c.logger.Info("history saved", zap.String("path", path), zap.Int("records", len(c.history)))
	return nil
}

// LoadHistory replaces the history with the configured CSV file's contents
// and resets undo and redo. A missing file leaves everything untouched.
func (c *Calculator) LoadHistory() error {
	path := c.cfg.HistoryFile()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c.logger.Info("no history file found", zap.String("path", path))
		return nil
	}

	calcs, err := readHistoryFile(path, c.cfg.DefaultEncoding)
	if err != nil {
		c.logger.Error("failed to load history", zap.String("path", path), zap.Error(err))
		return operationError("Failed to load history", err)
	}

	if excess := len(calcs) - c.cfg.MaxHistorySize; excess > 0 {
		calcs = calcs[excess:]
	}

	c.history = calcs
	c.undoStack = nil
	c.redoStack = nil
	recordHistorySize(len(c.history))

	c.logger.Info("history loaded", zap.String("path", path), zap.Int("records", len(calcs)))
	return nil
}

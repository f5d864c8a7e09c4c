package calculator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"advanced-calculator/internal/config"
	"advanced-calculator/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestCalculator(t *testing.T, edit func(*config.Config)) *Calculator {
	t.Helper()

	cfg := testutil.NewConfig(t)
	if edit != nil {
		edit(cfg)
	}

	calc, err := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return calc
}

func mustCompute(t *testing.T, c *Calculator, op string, a, b any) {
	t.Helper()
	require.NoError(t, c.SetOperationByName(op))
	_, err := c.PerformCalculation(a, b)
	require.NoError(t, err)
}

type failingObserver struct{ err error }

func (o failingObserver) Update(*Calculation) error { return o.err }

type countingObserver struct{ calls int }

func (o *countingObserver) Update(*Calculation) error {
	o.calls++
	return nil
}

func TestNewStartsEmpty(t *testing.T) {
	c := newTestCalculator(t, nil)

	assert.Empty(t, c.History())
	assert.Nil(t, c.Operation())
	assert.Empty(t, c.Observers())
	assert.False(t, c.CanUndo())
	assert.False(t, c.CanRedo())
	assert.DirExists(t, c.Config().HistoryDir())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	cfg := testutil.NewConfig(t)
	cfg.MaxHistorySize = 0
	_, err = New(cfg)
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "max_history_size", cfgErr.Field)
}

type taggedObserver struct{ tags []string }

func (taggedObserver) Update(*Calculation) error { return nil }

type observerFunc func(*Calculation) error

func (f observerFunc) Update(calc *Calculation) error { return f(calc) }

func TestRemoveObserverWithNonComparableTypes(t *testing.T) {
	c := newTestCalculator(t, nil)
	c.AddObserver(taggedObserver{tags: []string{"a"}})
	c.AddObserver(observerFunc(func(*Calculation) error { return nil }))

	assert.NotPanics(t, func() {
		c.RemoveObserver(taggedObserver{tags: []string{"b"}})
		c.RemoveObserver(observerFunc(func(*Calculation) error { return nil }))
		c.RemoveObserver(&countingObserver{})
		c.RemoveObserver(nil)
	})
	assert.Len(t, c.Observers(), 2)

	c.RemoveObserver(taggedObserver{tags: []string{"a"}})
	assert.Len(t, c.Observers(), 1)
}

func TestAddAndRemoveObserver(t *testing.T) {
	c := newTestCalculator(t, nil)
	o := &countingObserver{}

	c.AddObserver(o)
	assert.Len(t, c.Observers(), 1)

	c.RemoveObserver(o)
	assert.Empty(t, c.Observers())

	c.RemoveObserver(o)
	assert.Empty(t, c.Observers())
}

func TestPerformCalculation(t *testing.T) {
	c := newTestCalculator(t, nil)
	o := &countingObserver{}
	c.AddObserver(o)

	c.SetOperation(Addition{})
	result, err := c.PerformCalculation(2, "3")

	require.NoError(t, err)
	assertDecimal(t, "5", result)
	require.Len(t, c.History(), 1)
	assert.Equal(t, OpAddition, c.History()[0].Operation)
	assert.Equal(t, 1, o.calls)
	assert.True(t, c.CanUndo())
}

func TestPerformCalculationWithoutOperation(t *testing.T) {
	c := newTestCalculator(t, nil)

	_, err := c.PerformCalculation(2, 3)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "No operation set", err.Error())
	assert.Empty(t, c.History())
}

func TestPerformCalculationRejectsInvalidInput(t *testing.T) {
	c := newTestCalculator(t, nil)
	c.SetOperation(Addition{})

	_, err := c.PerformCalculation("invalid", 3)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Invalid number format: invalid", err.Error())
	assert.Empty(t, c.History())
	assert.False(t, c.CanUndo())
}

func TestPerformCalculationDivisionByZero(t *testing.T) {
	c := newTestCalculator(t, nil)
	c.SetOperation(Division{})

	_, err := c.PerformCalculation(6, 0)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Division by zero is not allowed", err.Error())
	assert.Empty(t, c.History())
}

func TestPerformCalculationWrapsNonValidationFailure(t *testing.T) {
	c := newTestCalculator(t, func(cfg *config.Config) { cfg.MaxInputValue = d("1e400") })
	c.SetOperation(Power{})

	_, err := c.PerformCalculation("1e300", 2)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Contains(t, err.Error(), "Operation failed")
	assert.Empty(t, c.History())
}

func TestObserverErrorReturnedAfterCommit(t *testing.T) {
	c := newTestCalculator(t, nil)
	boom := errors.New("observer broke")
	c.AddObserver(failingObserver{err: boom})
	c.SetOperation(Multiplication{})

	result, err := c.PerformCalculation(4, 5)

	assert.ErrorIs(t, err, boom)
	assertDecimal(t, "20", result)
	assert.Len(t, c.History(), 1)
}

func TestHistoryKeepsMostRecent(t *testing.T) {
	c := newTestCalculator(t, func(cfg *config.Config) { cfg.MaxHistorySize = 3 })

	for i := 1; i <= 5; i++ {
		mustCompute(t, c, "add", i, 0)
	}

	history := c.History()
	require.Len(t, history, 3)
	assertDecimal(t, "3", history[0].Result)
	assertDecimal(t, "5", history[2].Result)
}

func TestUndoRedo(t *testing.T) {
	c := newTestCalculator(t, nil)
	mustCompute(t, c, "add", 1, 1)
	mustCompute(t, c, "multiply", 2, 3)
	before := c.History()

	require.True(t, c.Undo())
	require.Len(t, c.History(), 1)
	assert.True(t, c.CanRedo())

	require.True(t, c.Redo())
	assert.Equal(t, before, c.History())
	assert.False(t, c.CanRedo())

	require.True(t, c.Undo())
	require.True(t, c.Undo())
	assert.Empty(t, c.History())
	assert.False(t, c.Undo())
}

func TestNewCalculationClearsRedo(t *testing.T) {
	c := newTestCalculator(t, nil)
	mustCompute(t, c, "add", 1, 1)
	require.True(t, c.Undo())
	require.True(t, c.CanRedo())

	mustCompute(t, c, "subtract", 5, 2)

	assert.False(t, c.CanRedo())
	assert.False(t, c.Redo())
}

func TestUndoReachesEveryEarlierState(t *testing.T) {
	c := newTestCalculator(t, func(cfg *config.Config) { cfg.MaxHistorySize = 1 })
	mustCompute(t, c, "add", 1, 1)
	mustCompute(t, c, "add", 2, 2)

	require.Len(t, c.History(), 1)
	assertDecimal(t, "4", c.History()[0].Result)

	require.True(t, c.Undo())
	require.Len(t, c.History(), 1)
	assertDecimal(t, "2", c.History()[0].Result)

	require.True(t, c.Undo())
	assert.Empty(t, c.History())
	assert.False(t, c.Undo())

	require.True(t, c.Redo())
	require.True(t, c.Redo())
	assertDecimal(t, "4", c.History()[0].Result)
}

func TestUndoBackToEmptyPastCapacity(t *testing.T) {
	c := newTestCalculator(t, func(cfg *config.Config) { cfg.MaxHistorySize = 2 })
	for i := 0; i < 5; i++ {
		mustCompute(t, c, "add", i, 1)
	}

	undone := 0
	for c.Undo() {
		undone++
	}
	assert.Equal(t, 5, undone)
	assert.Empty(t, c.History())
}

func TestClearHistory(t *testing.T) {
	c := newTestCalculator(t, nil)
	mustCompute(t, c, "add", 1, 2)
	require.True(t, c.Undo())
	mustCompute(t, c, "add", 3, 4)

	c.ClearHistory()

	assert.Empty(t, c.History())
	assert.False(t, c.CanUndo())
	assert.False(t, c.CanRedo())
}

func TestShowHistoryAndTable(t *testing.T) {
	c := newTestCalculator(t, nil)
	mustCompute(t, c, "add", 2, 3)
	mustCompute(t, c, "divide", 10, 4)

	assert.Equal(t, []string{"Addition(2, 3) = 5", "Division(10, 4) = 2.5"}, c.ShowHistory())

	table := c.HistoryTable()
	assert.Equal(t, Columns, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Division", "10", "4", "2.5"}, table.Rows[1][:4])
}

func TestSaveAndLoadHistory(t *testing.T) {
	c := newTestCalculator(t, nil)
	mustCompute(t, c, "add", 2, 3)
	mustCompute(t, c, "power", 2, 10)
	mustCompute(t, c, "root", 16, 2)
	saved := c.History()

	require.NoError(t, c.SaveHistory())
	assert.FileExists(t, c.Config().HistoryFile())

	c.ClearHistory()
	require.NoError(t, c.LoadHistory())

	loaded := c.History()
	require.Len(t, loaded, len(saved))
	for i := range saved {
		assert.True(t, saved[i].Equal(loaded[i]), "record %d differs", i)
		assert.True(t, saved[i].Timestamp.Equal(loaded[i].Timestamp))
	}
	assert.False(t, c.CanUndo())
}

func TestNewLoadsExistingHistory(t *testing.T) {
	cfg := testutil.NewConfig(t)
	first, err := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	mustCompute(t, first, "subtract", 10, 4)
	require.NoError(t, first.SaveHistory())

	second, err := New(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.Len(t, second.History(), 1)
	assertDecimal(t, "6", second.History()[0].Result)
}

func TestLoadHistoryTrimsToCapacity(t *testing.T) {
	c := newTestCalculator(t, nil)
	for i := 1; i <= 4; i++ {
		mustCompute(t, c, "add", i, 0)
	}
	require.NoError(t, c.SaveHistory())

	c.cfg.MaxHistorySize = 2
	require.NoError(t, c.LoadHistory())

	history := c.History()
	require.Len(t, history, 2)
	assertDecimal(t, "3", history[0].Result)
	assertDecimal(t, "4", history[1].Result)
}

func TestSaveEmptyHistoryWritesHeader(t *testing.T) {
	c := newTestCalculator(t, nil)

	require.NoError(t, c.SaveHistory())

	raw, err := os.ReadFile(c.Config().HistoryFile())
	require.NoError(t, err)
	assert.Equal(t, "operation,operand1,operand2,result,timestamp\n", string(raw))

	require.NoError(t, c.LoadHistory())
	assert.Empty(t, c.History())
}

func TestLoadHistoryMissingFile(t *testing.T) {
	c := newTestCalculator(t, nil)
	mustCompute(t, c, "add", 1, 1)

	require.NoError(t, c.LoadHistory())
	assert.Len(t, c.History(), 1)
}

func TestLoadHistoryCorruptFile(t *testing.T) {
	c := newTestCalculator(t, nil)
	path := c.Config().HistoryFile()
	require.NoError(t, os.WriteFile(path, []byte("operation,operand1\nAddition\"broken\n"), 0o644))

	err := c.LoadHistory()

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Contains(t, err.Error(), "Failed to load history")
}

func TestNewToleratesCorruptHistory(t *testing.T) {
	cfg := testutil.NewConfig(t)
	require.NoError(t, os.MkdirAll(cfg.HistoryDir(), 0o755))
	require.NoError(t, os.WriteFile(cfg.HistoryFile(), []byte("operation,operand1,operand2,result,timestamp\nAddition,two,3,5,now\n"), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	c, err := New(cfg, WithLogger(zap.New(core)))

	require.NoError(t, err)
	assert.Empty(t, c.History())
	assert.Equal(t, 1, logs.FilterMessage("could not load existing history").Len())
}

func TestSaveHistoryFailure(t *testing.T) {
	c := newTestCalculator(t, nil)
	blocker := filepath.Join(c.Config().BaseDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	c.cfg.HistoryFilePath = filepath.Join(blocker, "history.csv")

	err := c.SaveHistory()

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Contains(t, err.Error(), "Failed to save history")
}

func TestHistoryRoundTripInUTF16(t *testing.T) {
	c := newTestCalculator(t, func(cfg *config.Config) { cfg.DefaultEncoding = "utf-16le" })
	mustCompute(t, c, "multiply", "1.5", 4)

	require.NoError(t, c.SaveHistory())
	raw, err := os.ReadFile(c.Config().HistoryFile())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "o\x00p\x00")

	c.ClearHistory()
	require.NoError(t, c.LoadHistory())
	require.Len(t, c.History(), 1)
	assertDecimal(t, "6.0", c.History()[0].Result)
}

func TestCustomOperationThroughRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("mod", func() Operation { return modulo{} }))

	cfg := testutil.NewConfig(t)
	c, err := New(cfg, WithRegistry(registry), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.NoError(t, c.SetOperationByName("mod"))
	result, err := c.PerformCalculation(7, 3)

	require.NoError(t, err)
	assertDecimal(t, "1", result)
	assert.Equal(t, "Modulo", c.History()[0].Operation)
}

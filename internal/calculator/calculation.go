package calculator

import (
	"fmt"
	"time"

	"advanced-calculator/internal/observability"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// History file columns, in order.
const (
	ColOperation = "operation"
	ColOperand1  = "operand1"
	ColOperand2  = "operand2"
	ColResult    = "result"
	ColTimestamp = "timestamp"
)

// Columns is the fixed column layout of the history file and table.
var Columns = []string{ColOperation, ColOperand1, ColOperand2, ColResult, ColTimestamp}

// timestampLayouts are tried in order when reading persisted timestamps; the
// second accepts ISO-8601 text without a zone.
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

// Calculation is one performed calculation. Treat it as immutable: Result is
// always Operation applied to the operands.
type Calculation struct {
	Operation string
	Operand1  decimal.Decimal
	Operand2  decimal.Decimal
	Result    decimal.Decimal
	Timestamp time.Time
}

// NewCalculation computes operation over a and b and stamps the record with
// the current time. operation is a canonical name such as "Division".
func NewCalculation(operation string, a, b decimal.Decimal) (Calculation, error) {
	op, ok := builtinOperation(operation)
	if !ok {
		return Calculation{}, unknownOperationError(operation)
	}

	result, err := op.Execute(a, b)
	if err != nil {
		return Calculation{}, operationError("Calculation Failed", err)
	}

	return newRecord(operation, a, b, result), nil
}

func newRecord(operation string, a, b, result decimal.Decimal) Calculation {
	return Calculation{
		Operation: operation,
		Operand1:  a,
		Operand2:  b,
		Result:    result,
		Timestamp: time.Now(),
	}
}

// ToMap serializes the record to text fields keyed by column name.
func (c Calculation) ToMap() map[string]string {
	return map[string]string{
		ColOperation: c.Operation,
		ColOperand1:  c.Operand1.String(),
		ColOperand2:  c.Operand2.String(),
		ColResult:    c.Result.String(),
		ColTimestamp: c.Timestamp.Format(time.RFC3339Nano),
	}
}

// CalculationFromMap rebuilds a record written by ToMap. The result is
// recomputed; a stored result that disagrees is logged and discarded.
func CalculationFromMap(data map[string]string) (Calculation, error) {
	fields := make(map[string]string, len(Columns))
	for _, col := range Columns {
		v, ok := data[col]
		if !ok {
			return Calculation{}, invalidData(fmt.Errorf("missing field %q", col))
		}
		fields[col] = v
	}

	a, err := parseStored(fields, ColOperand1)
	if err != nil {
		return Calculation{}, err
	}
	b, err := parseStored(fields, ColOperand2)
	if err != nil {
		return Calculation{}, err
	}
	saved, err := parseStored(fields, ColResult)
	if err != nil {
		return Calculation{}, err
	}
	ts, err := parseTimestamp(fields[ColTimestamp])
	if err != nil {
		return Calculation{}, invalidData(err)
	}

	calc, err := NewCalculation(fields[ColOperation], a, b)
	if err != nil {
		return Calculation{}, err
	}
	calc.Timestamp = ts

	if !calc.Result.Equal(saved) {
		observability.Logger.Warn("loaded calculation result differs from computed result",
			zap.String("operation", calc.Operation),
			zap.String("saved", saved.String()),
			zap.String("computed", calc.Result.String()),
		)
	}

	return calc, nil
}

// parseStored decodes a persisted decimal column, refusing values too large
// or too fine-grained to compute with.
func parseStored(fields map[string]string, col string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(fields[col])
	if err != nil {
		return decimal.Decimal{}, invalidData(fmt.Errorf("%s: %w", col, err))
	}
	v, err = boundDigits(v)
	if err != nil {
		return decimal.Decimal{}, invalidData(fmt.Errorf("%s: %w", col, err))
	}
	return v, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("timestamp: %w", lastErr)
}

func invalidData(err error) *OperationError {
	return operationError("Invalid calculation data", err)
}

// Equal compares operation, operands and result. Timestamps are ignored.
func (c Calculation) Equal(other Calculation) bool {
	return c.Operation == other.Operation &&
		c.Operand1.Equal(other.Operand1) &&
		c.Operand2.Equal(other.Operand2) &&
		c.Result.Equal(other.Result)
}

// FormatResult rounds the result to precision places and strips trailing
// zeros. A negative precision returns the unrounded result.
func (c Calculation) FormatResult(precision int) string {
	if precision < 0 {
		return c.Result.String()
	}
	return c.Result.Round(int32(precision)).String()
}

func (c Calculation) String() string {
	return fmt.Sprintf("%s(%s, %s) = %s", c.Operation, c.Operand1, c.Operand2, c.Result)
}

package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Canonical operation names, as stored in history records.
const (
	OpAddition       = "Addition"
	OpSubtraction    = "Subtraction"
	OpMultiplication = "Multiplication"
	OpDivision       = "Division"
	OpPower          = "Power"
	OpRoot           = "Root"
)

// rootSnapPlaces is the rounding applied to a float root before checking
// whether it is exact.
const (
	rootSnapPlaces = 12
	maxSnapDegree  = 64
)

var errNotFinite = errors.New("result is not a finite number")

// Operation is a binary arithmetic strategy. Implementations are stateless;
// Execute must call ValidateOperands before computing.
type Operation interface {
	Name() string
	ValidateOperands(a, b decimal.Decimal) error
	Execute(a, b decimal.Decimal) (decimal.Decimal, error)
}

type Addition struct{}

func (Addition) Name() string { return OpAddition }
func (Addition) ValidateOperands(_, _ decimal.Decimal) error { return nil }

func (op Addition) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := op.ValidateOperands(a, b); err != nil {
		return decimal.Decimal{}, err
	}
	return a.Add(b), nil
}

type Subtraction struct{}

func (Subtraction) Name() string { return OpSubtraction }
func (Subtraction) ValidateOperands(_, _ decimal.Decimal) error { return nil }

func (op Subtraction) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := op.ValidateOperands(a, b); err != nil {
		return decimal.Decimal{}, err
	}
	return a.Sub(b), nil
}

type Multiplication struct{}

func (Multiplication) Name() string { return OpMultiplication }
func (Multiplication) ValidateOperands(_, _ decimal.Decimal) error { return nil }

func (op Multiplication) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := op.ValidateOperands(a, b); err != nil {
		return decimal.Decimal{}, err
	}
	return a.Mul(b), nil
}

// divisionPlaces is the number of fractional digits a quotient keeps,
// rounded half away from zero.
const divisionPlaces = 28

// Division divides, keeping divisionPlaces fractional digits.
type Division struct{}

func (Division) Name() string { return OpDivision }

func (Division) ValidateOperands(_, b decimal.Decimal) error {
	if b.IsZero() {
		return validationErrorf("Division by zero is not allowed")
	}
	return nil
}

func (op Division) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := op.ValidateOperands(a, b); err != nil {
		return decimal.Decimal{}, err
	}
	return a.DivRound(b, divisionPlaces), nil
}

// Power raises a to b through float64 exponentiation.
type Power struct{}

func (Power) Name() string { return OpPower }

func (Power) ValidateOperands(_, b decimal.Decimal) error {
	if b.IsNegative() {
		return validationErrorf("Exponent must be non-negative.")
	}
	return nil
}

func (op Power) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := op.ValidateOperands(a, b); err != nil {
		return decimal.Decimal{}, err
	}
	return fromFloat(math.Pow(a.InexactFloat64(), b.InexactFloat64()))
}

// Root takes the b-th root of a through float64 exponentiation.
type Root struct{}

func (Root) Name() string { return OpRoot }

func (Root) ValidateOperands(a, b decimal.Decimal) error {
	if a.IsNegative() {
		return validationErrorf("cannot calculate root of a negative number.")
	}
	if b.IsZero() {
		return validationErrorf("Zero root is not defined.")
	}
	return nil
}

func (op Root) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if err := op.ValidateOperands(a, b); err != nil {
		return decimal.Decimal{}, err
	}

	result, err := fromFloat(math.Pow(a.InexactFloat64(), 1/b.InexactFloat64()))
	if err != nil {
		return decimal.Decimal{}, err
	}

	// Snap float noise away when the root is exact, e.g. 27^(1/3).
	if b.IsInteger() && b.IsPositive() && b.LessThanOrEqual(decimal.NewFromInt(maxSnapDegree)) {
		snapped := result.Round(rootSnapPlaces)
		if intPow(snapped, b.IntPart()).Equal(a) {
			return snapped, nil
		}
	}

	return result, nil
}

// intPow multiplies exactly; n is small and positive.
func intPow(d decimal.Decimal, n int64) decimal.Decimal {
	out := decimal.NewFromInt(1)
	for i := int64(0); i < n; i++ {
		out = out.Mul(d)
	}
	return out
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, errNotFinite
	}
	return decimal.NewFromFloat(f), nil
}

// builtins are the operations every registry and history record knows.
var builtins = map[string]Operation{
	OpAddition:       Addition{},
	OpSubtraction:    Subtraction{},
	OpMultiplication: Multiplication{},
	OpDivision:       Division{},
	OpPower:          Power{},
	OpRoot:           Root{},
}

func builtinOperation(name string) (Operation, bool) {
	op, ok := builtins[name]
	return op, ok
}

package calculator

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"advanced-calculator/internal/config"

	"github.com/shopspring/decimal"
)

// ValidateNumber parses raw operand input and bounds it by
// cfg.MaxInputValue. Strings are trimmed; floats keep their shortest
// representation.
func ValidateNumber(raw any, cfg *config.Config) (decimal.Decimal, error) {
	value, err := parseNumber(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}

	value, err = boundScale(value)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if exceeds(value, cfg.MaxInputValue) {
		return decimal.Decimal{}, validationErrorf("Input exceeds maximum allowed value: %s", cfg.MaxInputValue)
	}

	return value, nil
}

// maxDigits bounds the fractional digits of any operand and the integer
// digits of a persisted one. Comparing or adding decimals rescales them to a
// common exponent, so an unbounded exponent costs unbounded memory and time.
const maxDigits = 1000

// boundScale rejects values with more than maxDigits fractional digits.
// A zero with an extreme exponent is replaced by plain zero.
func boundScale(v decimal.Decimal) (decimal.Decimal, error) {
	exp := int(v.Exponent())
	if v.IsZero() {
		if exp < -maxDigits || exp > maxDigits {
			return decimal.Zero, nil
		}
		return v, nil
	}
	if exp < -maxDigits {
		return decimal.Decimal{}, validationErrorf("Input exceeds maximum allowed precision: %d decimal places", maxDigits)
	}
	return v, nil
}

// boundDigits applies boundScale and also caps the integer digits at
// maxDigits, for values that have no configured maximum to compare against.
func boundDigits(v decimal.Decimal) (decimal.Decimal, error) {
	v, err := boundScale(v)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !v.IsZero() && integerDigits(v) > maxDigits {
		return decimal.Decimal{}, validationErrorf("Input exceeds maximum allowed magnitude: %d digits", maxDigits)
	}
	return v, nil
}

// exceeds reports whether |v| > limit. Values with a different count of
// integer digits are ordered by that count alone, so no rescaling happens
// unless both are of the same order of magnitude.
func exceeds(v, limit decimal.Decimal) bool {
	if v.IsZero() {
		return false
	}

	vd, ld := integerDigits(v), integerDigits(limit)
	if vd != ld {
		return vd > ld
	}
	return v.Abs().GreaterThan(limit)
}

// integerDigits is the number of digits left of the decimal point of a
// non-zero v, which is zero or negative when |v| < 1.
func integerDigits(v decimal.Decimal) int {
	coef := new(big.Int).Abs(v.Coefficient())
	return len(coef.String()) + int(v.Exponent())
}

func parseNumber(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Decimal{}, invalidFormat("None")
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, invalidFormat("None")
		}
		return *v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0), nil
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Decimal{}, invalidFormat(fmt.Sprint(raw))
		}
		return decimal.NewFromFloat32(v), nil
	case float64:
		return parseFloat(v, raw)
	case string:
		return parseString(v)
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return decimal.Decimal{}, invalidFormat("None")
		}
		return parseString(v.String())
	default:
		return parseString(fmt.Sprint(raw))
	}
}

func parseFloat(f float64, raw any) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, invalidFormat(fmt.Sprint(raw))
	}
	return decimal.NewFromFloat(f), nil
}

func parseString(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, invalidFormat(s)
	}
	return value, nil
}

func invalidFormat(raw string) *ValidationError {
	return validationErrorf("Invalid number format: %s", raw)
}

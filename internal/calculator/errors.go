package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation is wrapped by every OperationError raised for a
	// name that no operation answers to.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrNilCalculation is returned by observers handed a nil calculation.
	ErrNilCalculation = errors.New("calculation cannot be nil")

	// ErrNilSaver is returned when an auto-save observer has nothing to save.
	ErrNilSaver = errors.New("auto-save target cannot be nil")
)

// ValidationError reports bad operand input or an operand-level rule such as
// division by zero. It is never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// OperationError reports a failure to run or persist a calculation. Err, when
// set, is the underlying cause.
type OperationError struct {
	Msg string
	Err error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func operationError(msg string, err error) *OperationError {
	return &OperationError{Msg: msg, Err: err}
}

// unknownOperation carries the offending name and matches ErrUnknownOperation.
type unknownOperation string

func (e unknownOperation) Error() string { return string(e) }

func (e unknownOperation) Is(target error) bool { return target == ErrUnknownOperation }

func unknownOperationError(name string) *OperationError {
	return operationError("Unknown operation", unknownOperation(name))
}

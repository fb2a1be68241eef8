package alu

import (
	"errors"
	"fmt"
)

// Input limits.
const (
	NumInputs = 14
	MinDigit  = 1
	MaxDigit  = 9
)

// NoTag marks an expression that is not tracked in an equality record.
const NoTag = -1

var (
	ErrMalformedInstruction = errors.New("alu: malformed instruction")
	ErrUnknownRegister      = errors.New("alu: unknown register")
	ErrDivisionByZero       = errors.New("alu: division by zero")
	ErrInvalidModulo        = errors.New("alu: invalid modulo")
	ErrTooManyInputs        = errors.New("alu: too many inputs")
	ErrEqualityConflict     = errors.New("alu: contradictory equality record")
	ErrUnboundInputs        = errors.New("alu: unbound inputs")
	ErrNoStepAvailable      = errors.New("alu: no step available")
	ErrNoSolution           = errors.New("alu: no solution")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}

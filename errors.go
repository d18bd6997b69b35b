// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"errors"
	"fmt"
)

var (
	ErrMissing              = errors.New("missing value")
	ErrUnknownType          = errors.New("unknown object type")
	ErrInvalid              = errors.New("invalid node detected")
	ErrInvalidIndex         = errors.New("invalid index referenced")
	ErrInvalidPointer       = errors.New("invalid JSON pointer")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrUnknownOp            = errors.New("unknown operation kind")
	ErrAppendIndexExhausted = errors.New("no free array index found for append")
)

// AccumulatedCopySizeError is an error type returned when the accumulated size
// increase caused by copy operations in a patch operation has exceeded the
// limit.
type AccumulatedCopySizeError struct {
	limit       int64
	accumulated int64
}

// NewAccumulatedCopySizeError returns an AccumulatedCopySizeError.
func NewAccumulatedCopySizeError(l, a int64) *AccumulatedCopySizeError {
	return &AccumulatedCopySizeError{limit: l, accumulated: a}
}

// Error implements the error interface.
func (a *AccumulatedCopySizeError) Error() string {
	return fmt.Sprintf(
		"unable to copy, the accumulated size increase of copy is %d, exceeding the limit %d",
		a.accumulated, a.limit)
}

// TestFailedError is returned when a "test" operation does not hold.
type TestFailedError struct {
	Path     Pointer
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *TestFailedError) Error() string {
	return fmt.Sprintf("test operation for path %q failed, expected %s, got %s",
		e.Path.String(), e.Expected, e.Actual)
}

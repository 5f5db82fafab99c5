package statement

import (
	"errors"
	"fmt"

	"extracto/internal/core"
)

var (
	// ErrInvalidPeriod is returned before any work when the period start is after its end.
	ErrInvalidPeriod = core.ErrInvalidPeriod
	// ErrInvalidTransaction wraps the validation error of an offending transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrNumericDrift means the running balance did not land on the closing balance.
	ErrNumericDrift = errors.New("running balance does not match closing balance")
	// ErrUnknownLayout is returned for a layout name with no preset.
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrCanvas matches every CanvasError.
	ErrCanvas = errors.New("canvas failure")
)

// CanvasError reports a drawing or paging failure. Generation stops at the
// first one and no document is returned.
type CanvasError struct {
	Op  string
	Err error
}

func (e *CanvasError) Error() string {
	return fmt.Sprintf("canvas %s: %v", e.Op, e.Err)
}

func (e *CanvasError) Unwrap() error { return e.Err }

func (e *CanvasError) Is(target error) bool { return target == ErrCanvas }

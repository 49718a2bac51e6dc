package textprep

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrStepNotFound      = errors.New("step not found")
	ErrTransformFailed   = errors.New("transform failed")
	ErrCancelled         = errors.New("pipeline cancelled")
	ErrShapeMismatch     = errors.New("unexpected record shape")
	ErrRegistryMustBeSet = errors.New("registry must be set")
)

// StepNotFoundError reports a step name that is not registered, together with
// its position in the requested step list. Position is -1 for a direct
// Registry.Resolve lookup.
type StepNotFoundError struct {
	Name     string
	Position int
}

func (e *StepNotFoundError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%q not in registry", e.Name)
	}
	return fmt.Sprintf("step %d: %q not in registry", e.Position, e.Name)
}

func (e *StepNotFoundError) Is(target error) bool { return target == ErrStepNotFound }

// TransformError locates a record that a step failed to transform.
type TransformError struct {
	Step     string
	Position int
	Index    int
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("step %d (%q): record %d: %v", e.Position, e.Step, e.Index, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransformFailed }

// CancelledError is returned when the context ends before every stage ran.
// Position is the stage that was running (or about to run), or -1 when a
// stream was cancelled between chunks.
type CancelledError struct {
	Position int
	Cause    error
}

func (e *CancelledError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("pipeline cancelled: %v", e.Cause)
	}
	return fmt.Sprintf("pipeline cancelled at step %d: %v", e.Position, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

func cancelled(ctx context.Context, position int) error {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = ctx.Err()
	}
	return &CancelledError{Position: position, Cause: cause}
}

// shapeError builds the error returned by typed adapters when a record does
// not have the representation a step expects.
func shapeError(want, got any) error {
	return errors.Wrapf(ErrShapeMismatch, "expected %T, got %T", want, got)
}

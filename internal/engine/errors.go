package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Kind classifies why an optimization run failed.
type Kind int

const (
	KindInvalidDemand Kind = iota + 1
	KindNoFeasiblePattern
	KindInfeasible
	KindSolver
	KindCancelled
)

var (
	ErrInvalidDemand     = errors.New("invalid demand")
	ErrNoFeasiblePattern = errors.New("no feasible pattern")
	ErrInfeasible        = errors.New("infeasible")
	ErrSolver            = errors.New("solver error")
	ErrCancelled         = errors.New("cancelled")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidDemand:
		return ErrInvalidDemand
	case KindNoFeasiblePattern:
		return ErrNoFeasiblePattern
	case KindInfeasible:
		return ErrInfeasible
	case KindSolver:
		return ErrSolver
	case KindCancelled:
		return ErrCancelled
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// OptimizationError is returned by every engine operation. Match it with
// errors.Is against the Err* sentinels or errors.As to read the diameter.
type OptimizationError struct {
	Kind     Kind
	Diameter model.Diameter // Empty when the failure is not tied to one diameter
	Err      error
}

func (e *OptimizationError) Error() string {
	msg := e.Kind.String()
	if e.Diameter != "" {
		msg += " (" + string(e.Diameter) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OptimizationError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *OptimizationError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, dia model.Diameter, format string, args ...any) *OptimizationError {
	return &OptimizationError{Kind: kind, Diameter: dia, Err: fmt.Errorf(format, args...)}
}

// checkContext returns a Cancelled error when ctx is done.
func checkContext(ctx context.Context, dia model.Diameter) error {
	if err := ctx.Err(); err != nil {
		return &OptimizationError{Kind: KindCancelled, Diameter: dia, Err: err}
	}
	return nil
}

// classify turns a cancellation caused by the internal time budget into a
// solver error. Cancellation of the caller's context stays Cancelled.
func classify(parent context.Context, err error) error {
	var oe *OptimizationError
	if !errors.As(err, &oe) {
		return &OptimizationError{Kind: KindSolver, Err: err}
	}
	if oe.Kind == KindCancelled && parent.Err() == nil && errors.Is(oe.Err, context.DeadlineExceeded) {
		return &OptimizationError{Kind: KindSolver, Diameter: oe.Diameter, Err: fmt.Errorf("time budget exceeded: %w", oe.Err)}
	}
	return err
}

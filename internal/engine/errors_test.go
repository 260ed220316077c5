package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimizationError_Is(t *testing.T) {
	err := newError(KindInfeasible, "#12", "stock exhausted")
	assert.ErrorIs(t, err, ErrInfeasible)
	assert.NotErrorIs(t, err, ErrSolver)
	assert.Equal(t, "infeasible (#12): stock exhausted", err.Error())
}

func TestClassify(t *testing.T) {
	parent := context.Background()

	timeout := &OptimizationError{Kind: KindCancelled, Diameter: "#10", Err: context.DeadlineExceeded}
	err := classify(parent, timeout)
	assert.ErrorIs(t, err, ErrSolver)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelled, cancel := context.WithCancel(parent)
	cancel()
	err = classify(cancelled, &OptimizationError{Kind: KindCancelled, Err: context.Canceled})
	assert.ErrorIs(t, err, ErrCancelled)

	err = classify(parent, errors.New("boom"))
	assert.ErrorIs(t, err, ErrSolver)
}

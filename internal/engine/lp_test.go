package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/piwi3910/RebarCut/internal/model"
)

type failingSolver struct{}

func (failingSolver) Minimize(c []float64, A mat.Matrix, b []float64, initialBasic []int) (float64, []float64, error) {
	return 0, nil, errors.New("numerical trouble")
}

func generated(t *testing.T, lines []model.DemandLine, stocks []model.StockOption) []model.Pattern {
	t.Helper()
	patterns, err := Generate(context.Background(), lines, stocks, testOptions())
	require.NoError(t, err)
	return patterns
}

func TestSolve_CostAndDuals(t *testing.T) {
	lines := []model.DemandLine{line(3000, 4), line(2000, 6)}
	stocks := []model.StockOption{stock("S6", "#10", 6, 10)}
	patterns := generated(t, lines, stocks)

	sol, err := Solve(context.Background(), patterns, lines, stocks)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, sol.Cost, 1e-6)

	require.Len(t, sol.Duals, 2)
	bound := 0.0
	for i, l := range lines {
		bound += float64(l.Quantity) * sol.Duals[i]
	}
	assert.InDelta(t, sol.Cost, bound, 1e-6)
	assert.InDelta(t, 5.0, sol.Duals[0], 1e-6)
	assert.InDelta(t, 10.0/3.0, sol.Duals[1], 1e-6)

	var produced [2]float64
	for j, p := range sol.Patterns {
		produced[0] += float64(p.Count(3000)) * sol.Values[j]
		produced[1] += float64(p.Count(2000)) * sol.Values[j]
	}
	assert.GreaterOrEqual(t, produced[0], 4.0-1e-9)
	assert.GreaterOrEqual(t, produced[1], 6.0-1e-9)
}

func TestSolve_PrefersFewerStockLengths(t *testing.T) {
	// Every zero-waste pattern costs 2 per metre, so several optima exist.
	lines := []model.DemandLine{line(3000, 2), line(2000, 3)}
	stocks := []model.StockOption{
		stock("S6", "#10", 6, 12),
		stock("S3", "#10", 3, 6),
		stock("S2", "#10", 2, 4),
	}
	patterns := generated(t, lines, stocks)

	sol, err := Solve(context.Background(), patterns, lines, stocks)
	require.NoError(t, err)
	assert.InDelta(t, 24.0, sol.Cost, 1e-6)
	assert.Equal(t, 1, sol.Used())
	for j, v := range sol.Values {
		if v > eps {
			assert.Equal(t, model.MM(6000), sol.Patterns[j].StockLength)
		}
	}
}

func TestSolve_AvailabilityInfeasible(t *testing.T) {
	lines := []model.DemandLine{line(3000, 3)}
	limited := stock("S6", "#10", 6, 10)
	limited.Available = 1
	stocks := []model.StockOption{limited}
	patterns := generated(t, lines, stocks)

	_, err := Solve(context.Background(), patterns, lines, stocks)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSolve_AvailabilityShiftsToOtherStock(t *testing.T) {
	lines := []model.DemandLine{line(3000, 4)}
	cheap := stock("S6", "#10", 6, 5)
	cheap.Available = 1
	stocks := []model.StockOption{cheap, stock("S6b", "#10", 6, 10)}
	patterns := generated(t, lines, stocks)

	sol, err := Solve(context.Background(), patterns, lines, stocks)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, sol.Cost, 1e-6)
	require.Len(t, sol.StockDuals, 2)
	assert.InDelta(t, 5.0, sol.StockDuals[0], 1e-6)
}

func TestSolve_SolverFailure(t *testing.T) {
	lines := []model.DemandLine{line(3000, 4)}
	stocks := []model.StockOption{stock("S6", "#10", 6, 10)}
	patterns := generated(t, lines, stocks)

	m := newMaster(testOptions(), failingSolver{}, nil)
	_, err := m.solve(context.Background(), patterns, lines, stocks)
	assert.ErrorIs(t, err, ErrSolver)
}

func TestSolve_Cancelled(t *testing.T) {
	lines := []model.DemandLine{line(3000, 4)}
	stocks := []model.StockOption{stock("S6", "#10", 6, 10)}
	patterns := generated(t, lines, stocks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, patterns, lines, stocks)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestColumnGeneration_MatchesEnumeration(t *testing.T) {
	lines := []model.DemandLine{line(3200, 4), line(2400, 7), line(1800, 5), line(1100, 9)}
	stocks := []model.StockOption{
		stock("S6", "#10", 6, 10),
		stock("S9", "#10", 9, 14.5),
		stock("S12", "#10", 12, 19),
	}

	full, err := Solve(context.Background(), generated(t, lines, stocks), lines, stocks)
	require.NoError(t, err)

	m := newMaster(testOptions(), nil, nil)
	cols, err := m.generateColumns(context.Background(), lines, stocks)
	require.NoError(t, err)
	lazy, err := m.solve(context.Background(), cols, lines, stocks)
	require.NoError(t, err)

	assert.InDelta(t, full.Cost, lazy.Cost, 1e-6)
	assert.NotEmpty(t, cols)
}

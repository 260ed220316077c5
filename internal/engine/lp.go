package engine

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/piwi3910/RebarCut/internal/model"
)

const (
	eps        = 1e-9
	simplexTol = 1e-10
	costTol    = 1e-6

	// maxDualPatterns caps the dual LP size; the dual has one row per pattern.
	maxDualPatterns = 2000
)

// lpSolver minimizes c'x subject to Ax = b, x >= 0.
type lpSolver interface {
	Minimize(c []float64, A mat.Matrix, b []float64, initialBasic []int) (float64, []float64, error)
}

type simplexSolver struct {
	tol float64
}

func (s simplexSolver) Minimize(c []float64, A mat.Matrix, b []float64, initialBasic []int) (float64, []float64, error) {
	return lp.Simplex(c, A, b, s.tol, initialBasic)
}

// LPSolution is the optimal fractional pattern mix of one diameter.
type LPSolution struct {
	Diameter   model.Diameter
	Patterns   []model.Pattern
	Values     []float64 // Multiplicity per pattern
	Cost       float64   // Optimal objective, the lower bound of any integral plan
	Duals      []float64 // Per demand line; nil when not computed
	StockDuals []float64 // Per stock option, 0 for unlimited stock
}

// Used returns the number of distinct stock lengths with a positive value.
func (s LPSolution) Used() int {
	lengths := make(map[model.MM]bool)
	for i, v := range s.Values {
		if v > eps {
			lengths[s.Patterns[i].StockLength] = true
		}
	}
	return len(lengths)
}

// Solve finds the cheapest fractional mix of the patterns covering the demand
// lines, within the availability of limited stock options. Among optimal
// mixes it prefers the one using the fewest distinct stock lengths.
func Solve(ctx context.Context, patterns []model.Pattern, lines []model.DemandLine, stocks []model.StockOption) (LPSolution, error) {
	return newMaster(model.DefaultOptions(), nil, nil).solve(ctx, patterns, lines, stocks)
}

// master builds and solves the pattern LP of one diameter.
type master struct {
	opts   model.Options
	solver lpSolver
	logger *zap.Logger
}

func newMaster(opts model.Options, solver lpSolver, logger *zap.Logger) *master {
	if solver == nil {
		solver = simplexSolver{tol: simplexTol}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &master{opts: opts.Normalize(), solver: solver, logger: logger}
}

// solve runs the primal LP, the dual LP (when small enough) and the
// fewest-stock-lengths tie-break.
func (m *master) solve(ctx context.Context, patterns []model.Pattern, lines []model.DemandLine, stocks []model.StockOption) (LPSolution, error) {
	sol, err := m.relax(ctx, patterns, lines, stocks, len(patterns) <= maxDualPatterns)
	if err != nil {
		return LPSolution{}, err
	}
	if m.opts.TieBreak == model.TieBreakFewestStocks {
		sol, err = m.breakTies(ctx, sol, lines, stocks)
		if err != nil {
			return LPSolution{}, err
		}
	}
	return sol, nil
}

// relax solves the primal LP over the patterns and, when withDuals is set,
// the dual LP as well.
func (m *master) relax(ctx context.Context, patterns []model.Pattern, lines []model.DemandLine, stocks []model.StockOption, withDuals bool) (LPSolution, error) {
	dia := diameterOf(lines)
	if err := checkContext(ctx, dia); err != nil {
		return LPSolution{}, err
	}
	if len(patterns) == 0 {
		return LPSolution{}, newError(KindNoFeasiblePattern, dia, "no cutting patterns")
	}
	for i, l := range lines {
		if !produces(patterns, l.Length) {
			return LPSolution{}, newError(KindNoFeasiblePattern, dia, "no pattern yields length %s (line %d)", l.Length, i+1)
		}
	}

	limited := limitedRows(patterns, stocks)
	c, A, b := primalProblem(patterns, lines, stocks, limited)
	cost, x, err := m.solver.Minimize(c, A, b, nil)
	if err != nil {
		return LPSolution{}, solverError(dia, err)
	}

	sol := LPSolution{Diameter: dia, Patterns: patterns, Values: cleanValues(x[:len(patterns)]), Cost: cost}
	if !withDuals {
		return sol, nil
	}

	if err := checkContext(ctx, dia); err != nil {
		return LPSolution{}, err
	}
	dc, dA, db, basic := dualProblem(patterns, lines, stocks, limited)
	dualCost, y, err := m.solver.Minimize(dc, dA, db, basic)
	if err != nil {
		return LPSolution{}, solverError(dia, err)
	}
	if gap := math.Abs(cost + dualCost); gap > costTol*math.Max(1, math.Abs(cost)) {
		return LPSolution{}, newError(KindSolver, dia, "duality gap %.6g between primal %.6g and dual %.6g", gap, cost, -dualCost)
	}

	sol.Duals = make([]float64, len(lines))
	copy(sol.Duals, y[:len(lines)])
	sol.StockDuals = make([]float64, len(stocks))
	for r, si := range limited {
		sol.StockDuals[si] = y[len(lines)+r]
	}
	return sol, nil
}

// limitedRows returns the indices of limited stock options that at least one
// pattern is cut from. Each gets an availability row.
func limitedRows(patterns []model.Pattern, stocks []model.StockOption) []int {
	var rows []int
	for si, s := range stocks {
		if !s.Limited() {
			continue
		}
		for _, p := range patterns {
			if p.StockID == s.ID {
				rows = append(rows, si)
				break
			}
		}
	}
	return rows
}

// primalProblem builds the standard form
//
//	min c'x  s.t.  P x - s = q,  S x + t = u,  x, s, t >= 0
//
// where P holds the piece counts, S marks the patterns of each limited stock
// and u its availability.
func primalProblem(patterns []model.Pattern, lines []model.DemandLine, stocks []model.StockOption, limited []int) ([]float64, *mat.Dense, []float64) {
	n, rows, k := len(patterns), len(lines), len(limited)
	cols := n + rows + k
	A := mat.NewDense(rows+k, cols, nil)
	c := make([]float64, cols)
	b := make([]float64, rows+k)

	for j, p := range patterns {
		c[j] = p.Cost
		for i, l := range lines {
			if cnt := p.Count(l.Length); cnt > 0 {
				A.Set(i, j, float64(cnt))
			}
		}
	}
	for i, l := range lines {
		A.Set(i, n+i, -1)
		b[i] = float64(l.Quantity)
	}
	for r, si := range limited {
		row := rows + r
		for j, p := range patterns {
			if p.StockID == stocks[si].ID {
				A.Set(row, j, 1)
			}
		}
		A.Set(row, n+rows+r, 1)
		b[row] = float64(stocks[si].Available)
	}
	return c, A, b
}

// dualProblem builds the dual of primalProblem in standard form
//
//	min -q'y + u'w  s.t.  P'y - S'w + r = c,  y, w, r >= 0
//
// The slack columns r form a feasible starting basis because costs are
// non-negative.
func dualProblem(patterns []model.Pattern, lines []model.DemandLine, stocks []model.StockOption, limited []int) ([]float64, *mat.Dense, []float64, []int) {
	n, rows, k := len(patterns), len(lines), len(limited)
	cols := rows + k + n
	A := mat.NewDense(n, cols, nil)
	c := make([]float64, cols)
	b := make([]float64, n)
	basic := make([]int, n)

	for i, l := range lines {
		c[i] = -float64(l.Quantity)
	}
	for r, si := range limited {
		c[rows+r] = float64(stocks[si].Available)
	}
	for j, p := range patterns {
		b[j] = p.Cost
		for i, l := range lines {
			if cnt := p.Count(l.Length); cnt > 0 {
				A.Set(j, i, float64(cnt))
			}
		}
		for r, si := range limited {
			if p.StockID == stocks[si].ID {
				A.Set(j, rows+r, -1)
			}
		}
		A.Set(j, rows+k+j, 1)
		basic[j] = rows + k + j
	}
	return c, A, b, basic
}

func produces(patterns []model.Pattern, length model.MM) bool {
	for _, p := range patterns {
		if p.Count(length) > 0 {
			return true
		}
	}
	return false
}

// cleanValues clamps tiny negatives and snaps values within eps of an integer.
func cleanValues(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if r := math.Round(v); math.Abs(v-r) < 1e-7 {
			v = r
		}
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

func solverError(dia model.Diameter, err error) error {
	if errors.Is(err, lp.ErrInfeasible) {
		return &OptimizationError{Kind: KindInfeasible, Diameter: dia, Err: err}
	}
	return &OptimizationError{Kind: KindSolver, Diameter: dia, Err: err}
}

func diameterOf(lines []model.DemandLine) model.Diameter {
	if len(lines) == 0 {
		return ""
	}
	return lines[0].Diameter
}

// breakTies looks for an optimal mix that uses fewer distinct stock lengths.
// Subsets of the available lengths are tried smallest first, shorter lengths
// first within a size, and the first restricted LP matching the optimal cost
// wins. At most Options.TieBreakBudget restricted LPs are solved.
func (m *master) breakTies(ctx context.Context, sol LPSolution, lines []model.DemandLine, stocks []model.StockOption) (LPSolution, error) {
	used := sol.Used()
	if used <= 1 {
		return sol, nil
	}
	var lengths []model.MM
	seen := make(map[model.MM]bool)
	for _, p := range sol.Patterns {
		if !seen[p.StockLength] {
			seen[p.StockLength] = true
			lengths = append(lengths, p.StockLength)
		}
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] < lengths[j] })

	solves := 0
	for size := 1; size < used; size++ {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		for {
			allowed := make(map[model.MM]bool, size)
			for _, i := range idx {
				allowed[lengths[i]] = true
			}
			var subset []int
			var restricted []model.Pattern
			for j, p := range sol.Patterns {
				if allowed[p.StockLength] {
					subset = append(subset, j)
					restricted = append(restricted, p)
				}
			}
			if coversAll(restricted, lines) {
				if solves >= m.opts.TieBreakBudget {
					return sol, nil
				}
				solves++
				alt, err := m.relax(ctx, restricted, lines, stocks, false)
				var oe *OptimizationError
				switch {
				case err == nil && alt.Cost <= sol.Cost+costTol*math.Max(1, math.Abs(sol.Cost)):
					m.logger.Debug("tie-break found a mix with fewer stock lengths",
						zap.String("op", "tie_break"),
						zap.String("diameter", string(sol.Diameter)),
						zap.Int("lengths", size),
						zap.Int("was", used))
					values := make([]float64, len(sol.Patterns))
					for r, j := range subset {
						values[j] = alt.Values[r]
					}
					sol.Values = values
					return sol, nil
				case errors.As(err, &oe) && oe.Kind == KindCancelled:
					return LPSolution{}, err
				}
			}
			if !nextCombination(idx, len(lengths)) {
				break
			}
		}
	}
	return sol, nil
}

func coversAll(patterns []model.Pattern, lines []model.DemandLine) bool {
	for _, l := range lines {
		if !produces(patterns, l.Length) {
			return false
		}
	}
	return true
}

// nextCombination advances idx to the next k-combination of 0..n-1 in
// lexicographic order. It reports false after the last one.
func nextCombination(idx []int, n int) bool {
	k := len(idx)
	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < k; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}

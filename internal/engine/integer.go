package engine

import (
	"context"
	"math"
	"sort"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Integerize turns the fractional pattern mix into whole bar counts.
//
// Every multiplicity is rounded up, which always covers the demand. When the
// surplus length produced by rounding exceeds Options.WasteThreshold of the
// demanded length, or when rounding buys more of a limited stock than is
// available, a bounded branch-and-bound repair picks floor or ceiling for each
// fractional multiplicity, minimizing cost and then surplus length.
func Integerize(ctx context.Context, sol LPSolution, lines []model.DemandLine, stocks []model.StockOption, opts model.Options) (model.Solution, error) {
	opts = opts.Normalize()
	dia := sol.Diameter
	if dia == "" {
		dia = diameterOf(lines)
	}

	var idx []int
	for i, v := range sol.Values {
		if v > eps {
			idx = append(idx, i)
		}
	}
	r := &rounding{
		patterns: make([]model.Pattern, len(idx)),
		lo:       make([]int, len(idx)),
		hi:       make([]int, len(idx)),
		frac:     make([]float64, len(idx)),
		lines:    lines,
		avail:    availability(stocks),
		demand:   demandLength(lines),
	}
	for k, i := range idx {
		v := sol.Values[i]
		r.patterns[k] = sol.Patterns[i]
		r.lo[k] = int(math.Floor(v + eps))
		r.hi[k] = int(math.Ceil(v - eps))
		r.frac[k] = v - math.Floor(v)
	}

	ceil := append([]int(nil), r.hi...)
	if !r.covers(ceil) {
		return model.Solution{}, newError(KindSolver, dia, "ceiling rounding does not cover demand")
	}
	if r.withinAvailability(ceil) && !r.overshoots(ceil, opts.WasteThreshold) {
		return r.solution(dia, ceil), nil
	}

	counts, err := r.repair(ctx, dia, opts.RepairNodeBudget)
	if err != nil {
		return model.Solution{}, err
	}
	if !r.covers(counts) {
		return model.Solution{}, newError(KindSolver, dia, "repaired rounding does not cover demand")
	}
	return r.solution(dia, counts), nil
}

// rounding holds the fractional support of an LP solution.
type rounding struct {
	patterns []model.Pattern
	lo, hi   []int
	frac     []float64
	lines    []model.DemandLine
	avail    map[string]int
	demand   model.MM
}

func availability(stocks []model.StockOption) map[string]int {
	avail := make(map[string]int)
	for _, s := range stocks {
		if s.Limited() {
			avail[s.ID] += s.Available
		}
	}
	return avail
}

func (r *rounding) produced(counts []int, length model.MM) int {
	n := 0
	for k, p := range r.patterns {
		n += p.Count(length) * counts[k]
	}
	return n
}

func (r *rounding) covers(counts []int) bool {
	for _, l := range r.lines {
		if r.produced(counts, l.Length) < l.Quantity {
			return false
		}
	}
	return true
}

func (r *rounding) withinAvailability(counts []int) bool {
	used := make(map[string]int)
	for k, p := range r.patterns {
		used[p.StockID] += counts[k]
	}
	for id, n := range used {
		if a, ok := r.avail[id]; ok && n > a {
			return false
		}
	}
	return true
}

// surplus returns the total length of pieces produced beyond demand.
func (r *rounding) surplus(counts []int) model.MM {
	var total model.MM
	for _, l := range r.lines {
		if extra := r.produced(counts, l.Length) - l.Quantity; extra > 0 {
			total += model.MM(extra) * l.Length
		}
	}
	return total
}

func (r *rounding) overshoots(counts []int, threshold float64) bool {
	if r.demand == 0 {
		return false
	}
	return float64(r.surplus(counts))/float64(r.demand) > threshold
}

func (r *rounding) cost(counts []int) float64 {
	var total float64
	for k, p := range r.patterns {
		total += p.Cost * float64(counts[k])
	}
	return total
}

func (r *rounding) solution(dia model.Diameter, counts []int) model.Solution {
	sol := model.Solution{Diameter: dia}
	for k, p := range r.patterns {
		if counts[k] > 0 {
			sol.Patterns = append(sol.Patterns, p)
			sol.Counts = append(sol.Counts, counts[k])
		}
	}
	return sol
}

// repairNode is a partial assignment: variables order[:depth] are fixed.
type repairNode struct {
	depth  int
	counts []int
}

// repair runs an explicit-stack branch-and-bound over the fractional
// variables, most fractional first. The lower bound of a node is the cost of
// its fixed variables plus the floor cost of the rest. The ceiling rounding is
// the first incumbent when it respects availability.
func (r *rounding) repair(ctx context.Context, dia model.Diameter, budget int) ([]int, error) {
	var order []int
	base := make([]int, len(r.patterns))
	for k := range r.patterns {
		base[k] = r.lo[k]
		if r.lo[k] != r.hi[k] {
			order = append(order, k)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(r.frac[order[a]]-0.5) < math.Abs(r.frac[order[b]]-0.5)
	})

	var best []int
	bestCost, bestSurplus := math.Inf(1), model.MM(math.MaxInt64)
	if ceil := append([]int(nil), r.hi...); r.withinAvailability(ceil) {
		best, bestCost, bestSurplus = ceil, r.cost(ceil), r.surplus(ceil)
	}

	// Upper counts: fixed variables plus ceilings of the free ones.
	upper := func(n repairNode) []int {
		out := append([]int(nil), n.counts...)
		for _, k := range order[n.depth:] {
			out[k] = r.hi[k]
		}
		return out
	}

	stack := []repairNode{{depth: 0, counts: base}}
	nodes := 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := checkContext(ctx, dia); err != nil {
			return nil, err
		}
		nodes++
		if nodes > budget {
			break
		}

		// n.counts holds floors for the free variables, so its cost is the bound.
		if bound := r.cost(n.counts); bound > bestCost+costTol {
			continue
		}
		if !r.covers(upper(n)) || !r.withinAvailability(n.counts) {
			continue
		}

		if n.depth == len(order) {
			if !r.covers(n.counts) {
				continue
			}
			c, s := r.cost(n.counts), r.surplus(n.counts)
			if c < bestCost-costTol || (c <= bestCost+costTol && s < bestSurplus) {
				best, bestCost, bestSurplus = n.counts, c, s
			}
			continue
		}

		k := order[n.depth]
		up := append([]int(nil), n.counts...)
		up[k] = r.hi[k]
		stack = append(stack, repairNode{depth: n.depth + 1, counts: up})
		stack = append(stack, repairNode{depth: n.depth + 1, counts: n.counts})
	}

	if best == nil {
		return nil, newError(KindInfeasible, dia, "no integral plan within stock availability")
	}
	return best, nil
}

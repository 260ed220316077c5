package engine

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/piwi3910/RebarCut/internal/model"
)

// improveResidual runs up to Options.ResidualPasses rounds of the residual
// heuristic: the floors of the LP solution are fixed, the demand they leave
// uncovered is solved again as a smaller problem, and the fixed bars plus the
// rounded residual plan form a candidate. The cheapest covering plan among
// sol and the candidates is returned.
//
// Only cancellation of ctx is reported as an error; a residual problem that
// cannot be solved ends the search and keeps the best plan so far.
func improveResidual(ctx context.Context, m *master, opts model.Options, relaxed LPSolution, lines []model.DemandLine, stocks []model.StockOption, sol model.Solution, log *zap.Logger) (model.Solution, error) {
	dia := sol.Diameter
	best := sol
	fixed := model.Solution{Diameter: dia}
	lp := relaxed

	for pass := 1; pass <= opts.ResidualPasses; pass++ {
		floors := floorSolution(lp)
		if len(floors.Patterns) == 0 {
			break
		}
		fixed = mergeSolutions(fixed, floors)

		rest := residualLines(lines, fixed)
		if len(rest) == 0 {
			best = cheaperSolution(best, fixed, lines)
			break
		}
		restStocks := residualStocks(stocks, fixed)

		if err := checkContext(ctx, dia); err != nil {
			return model.Solution{}, err
		}
		var err error
		lp, err = relaxDiameter(ctx, m, opts, rest, restStocks, log)
		if err == nil {
			var restSol model.Solution
			restSol, err = Integerize(ctx, lp, rest, restStocks, opts)
			if err == nil {
				best = cheaperSolution(best, mergeSolutions(fixed, restSol), lines)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return model.Solution{}, checkContext(ctx, dia)
			}
			log.Debug("residual pass stopped",
				zap.String("op", "residual"),
				zap.Int("pass", pass),
				zap.Error(err))
			break
		}
	}

	if best.Cost() < sol.Cost()-costTol {
		log.Debug("residual rounding improved plan",
			zap.String("op", "residual"),
			zap.Float64("rounded_cost", sol.Cost()),
			zap.Float64("cost", best.Cost()))
	}
	return best, nil
}

// floorSolution keeps the integral part of every LP value.
func floorSolution(lp LPSolution) model.Solution {
	sol := model.Solution{Diameter: lp.Diameter}
	for i, v := range lp.Values {
		if n := int(math.Floor(v + eps)); n > 0 {
			sol.Patterns = append(sol.Patterns, lp.Patterns[i])
			sol.Counts = append(sol.Counts, n)
		}
	}
	return sol
}

// mergeSolutions adds the counts of b to a, merging equal patterns.
func mergeSolutions(a, b model.Solution) model.Solution {
	out := model.Solution{
		Diameter: a.Diameter,
		Patterns: append([]model.Pattern(nil), a.Patterns...),
		Counts:   append([]int(nil), a.Counts...),
	}
	if out.Diameter == "" {
		out.Diameter = b.Diameter
	}
	index := make(map[string]int, len(out.Patterns))
	for i, p := range out.Patterns {
		index[p.Key()] = i
	}
	for i, p := range b.Patterns {
		if j, ok := index[p.Key()]; ok {
			out.Counts[j] += b.Counts[i]
			continue
		}
		index[p.Key()] = len(out.Patterns)
		out.Patterns = append(out.Patterns, p)
		out.Counts = append(out.Counts, b.Counts[i])
	}
	return out
}

// residualLines returns the demand left uncovered by sol.
func residualLines(lines []model.DemandLine, sol model.Solution) []model.DemandLine {
	var out []model.DemandLine
	for _, l := range lines {
		if left := l.Quantity - sol.Produced(l.Length); left > 0 {
			l.Quantity = left
			out = append(out, l)
		}
	}
	return out
}

// residualStocks reduces limited stock by the bars sol already uses and drops
// exhausted options.
func residualStocks(stocks []model.StockOption, sol model.Solution) []model.StockOption {
	used := make(map[string]int)
	for i, p := range sol.Patterns {
		used[p.StockID] += sol.Counts[i]
	}
	out := make([]model.StockOption, 0, len(stocks))
	for _, s := range stocks {
		if s.Limited() {
			s.Available -= used[s.ID]
			if s.Available <= 0 {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// cheaperSolution returns candidate when it covers the demand and costs less
// than best, or costs the same with less surplus.
func cheaperSolution(best, candidate model.Solution, lines []model.DemandLine) model.Solution {
	if !candidate.Covers(lines) {
		return best
	}
	bc, cc := best.Cost(), candidate.Cost()
	if cc < bc-costTol || (cc <= bc+costTol && surplusLength(candidate, lines) < surplusLength(best, lines)) {
		return candidate
	}
	return best
}

func surplusLength(sol model.Solution, lines []model.DemandLine) model.MM {
	var total model.MM
	for _, l := range lines {
		if extra := sol.Produced(l.Length) - l.Quantity; extra > 0 {
			total += model.MM(extra) * l.Length
		}
	}
	return total
}

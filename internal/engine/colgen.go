package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/piwi3910/RebarCut/internal/model"
)

// reducedCostTol is how negative a reduced cost must be before a column is
// added.
const reducedCostTol = 1e-7

// generateColumns builds a pattern set by column generation. It starts from
// one maximal pattern per (demand length, stock option), repeatedly solves the
// restricted LP, and prices every stock option with a bounded knapsack over
// the dual values. The most negative reduced-cost pattern is added until none
// is left or Options.MaxColumnIterations is reached.
func (m *master) generateColumns(ctx context.Context, lines []model.DemandLine, stocks []model.StockOption) ([]model.Pattern, error) {
	dia := diameterOf(lines)
	kerf := m.opts.Kerf()
	if err := checkFits(lines, stocks, kerf); err != nil {
		return nil, err
	}

	patterns := initialColumns(lines, stocks, kerf)
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		seen[p.Key()] = true
	}

	for iter := 0; iter < m.opts.MaxColumnIterations; iter++ {
		sol, err := m.relax(ctx, patterns, lines, stocks, true)
		if err != nil {
			return nil, err
		}

		var best model.Pattern
		bestReduced := -reducedCostTol
		found := false
		for si, s := range stocks {
			counts, value := priceStock(lines, sol.Duals, s.LengthMM(), kerf)
			reduced := s.UnitCost + sol.StockDuals[si] - value
			if reduced >= bestReduced {
				continue
			}
			counts = maximalize(lines, counts, s.LengthMM(), kerf)
			p := model.NewPattern(s, expandCounts(lines, counts), kerf)
			if len(p.Pieces) == 0 || seen[p.Key()] {
				continue
			}
			best, bestReduced, found = p, reduced, true
		}
		if !found {
			m.logger.Debug("column generation converged",
				zap.String("op", "column_generation"),
				zap.String("diameter", string(dia)),
				zap.Int("iterations", iter),
				zap.Int("patterns", len(patterns)),
				zap.Float64("lp_cost", sol.Cost))
			break
		}
		seen[best.Key()] = true
		patterns = append(patterns, best)
	}

	sortPatterns(patterns)
	return patterns, nil
}

// initialColumns returns, for every demand length and every stock option it
// fits, the pattern repeating that length as often as allowed, topped up with
// the longest other pieces that still fit.
func initialColumns(lines []model.DemandLine, stocks []model.StockOption, kerf model.MM) []model.Pattern {
	seen := make(map[string]bool)
	var patterns []model.Pattern
	for i := range lines {
		for _, s := range stocks {
			caps := pieceCaps(lines, s.LengthMM(), kerf)
			if caps[i] == 0 {
				continue
			}
			counts := make([]int, len(lines))
			counts[i] = caps[i]
			counts = maximalize(lines, counts, s.LengthMM(), kerf)
			p := model.NewPattern(s, expandCounts(lines, counts), kerf)
			if !seen[p.Key()] {
				seen[p.Key()] = true
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

package engine

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/RebarCut/internal/model"
)

// errPatternLimit is returned by Generate when enumeration would produce more
// patterns than Options.MaxPatterns allows.
var errPatternLimit = errors.New("pattern limit reached")

// nodesPerPattern bounds the search effort relative to the pattern limit.
const nodesPerPattern = 64

// contextCheckInterval is how many stack pops happen between context checks.
const contextCheckInterval = 1024

// Generate enumerates every maximal cutting pattern of the demand lines on
// each stock option. A pattern is maximal when no demand length whose count
// is below its cap still fits into the waste. The search over each stock
// length is split by first piece and run on Options.Workers goroutines.
// Stocks must carry unique IDs, as returned by PrepareCatalog.
//
// Unless the strategy is StrategyEnumerate, Generate stops with
// errPatternLimit once more than Options.MaxPatterns patterns are found.
func Generate(ctx context.Context, lines []model.DemandLine, stocks []model.StockOption, opts model.Options) ([]model.Pattern, error) {
	opts = opts.Normalize()
	if len(lines) == 0 {
		return nil, nil
	}
	dia := lines[0].Diameter
	kerf := opts.Kerf()
	if err := checkFits(lines, stocks, kerf); err != nil {
		return nil, err
	}

	lengths := stockLengths(stocks)
	var limit int64
	if opts.Strategy != model.StrategyEnumerate {
		limit = int64(opts.MaxPatterns)
	}
	s := &patternSearch{lines: lines, kerf: kerf, limit: limit}

	type task struct {
		stock model.MM
		first int
	}
	var tasks []task
	for _, l := range lengths {
		for i := range lines {
			tasks = append(tasks, task{stock: l, first: i})
		}
	}

	found := make([][][]int, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for ti, t := range tasks {
		g.Go(func() error {
			res, err := s.enumerate(gctx, dia, t.stock, t.first)
			found[ti] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byLength := make(map[model.MM][]model.StockOption)
	for _, st := range stocks {
		byLength[st.LengthMM()] = append(byLength[st.LengthMM()], st)
	}

	seen := make(map[string]bool)
	var patterns []model.Pattern
	for ti, t := range tasks {
		for _, counts := range found[ti] {
			pieces := expandCounts(lines, counts)
			for _, st := range byLength[t.stock] {
				p := model.NewPattern(st, pieces, kerf)
				if k := p.Key(); !seen[k] {
					seen[k] = true
					patterns = append(patterns, p)
				}
			}
		}
	}
	sortPatterns(patterns)
	return patterns, nil
}

type patternSearch struct {
	lines []model.DemandLine
	kerf  model.MM
	limit int64 // 0 = unlimited
	count atomic.Int64
	nodes atomic.Int64
}

type searchNode struct {
	last   int // Smallest line index that may still be added
	counts []int
	used   model.MM
	pieces int
}

// enumerate runs an explicit-stack depth-first search over the piece
// multisets of one stock length whose longest piece is lines[first].
func (s *patternSearch) enumerate(ctx context.Context, dia model.Diameter, stock model.MM, first int) ([][]int, error) {
	caps := pieceCaps(s.lines, stock, s.kerf)
	if caps[first] == 0 {
		return nil, nil
	}

	root := searchNode{last: first, counts: make([]int, len(s.lines)), used: s.lines[first].Length, pieces: 1}
	root.counts[first] = 1

	var out [][]int
	stack := []searchNode{root}
	pops := 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pops++
		if pops%contextCheckInterval == 0 {
			if err := checkContext(ctx, dia); err != nil {
				return nil, err
			}
		}
		if s.limit > 0 && s.nodes.Add(1) > s.limit*nodesPerPattern {
			return nil, errPatternLimit
		}

		remaining := stock - n.used - model.MM(n.pieces-1)*s.kerf
		for j := len(s.lines) - 1; j >= n.last; j-- {
			if n.counts[j] < caps[j] && s.lines[j].Length+s.kerf <= remaining {
				child := searchNode{
					last:   j,
					counts: append([]int(nil), n.counts...),
					used:   n.used + s.lines[j].Length,
					pieces: n.pieces + 1,
				}
				child.counts[j]++
				stack = append(stack, child)
			}
		}

		if isMaximal(s.lines, caps, n.counts, remaining, s.kerf) {
			out = append(out, n.counts)
			if s.limit > 0 && s.count.Add(1) > s.limit {
				return nil, errPatternLimit
			}
		}
	}
	return out, nil
}

// pieceCaps returns, per line, the most pieces of that length one pattern on
// a stock of the given length may hold.
func pieceCaps(lines []model.DemandLine, stock, kerf model.MM) []int {
	caps := make([]int, len(lines))
	for i, l := range lines {
		fit := int((stock + kerf) / (l.Length + kerf))
		caps[i] = min(fit, l.Quantity)
	}
	return caps
}

// isMaximal reports whether no further piece can be added to the pattern.
func isMaximal(lines []model.DemandLine, caps, counts []int, remaining, kerf model.MM) bool {
	for j, l := range lines {
		if counts[j] < caps[j] && l.Length+kerf <= remaining {
			return false
		}
	}
	return true
}

// maximalize greedily fills a pattern with the longest pieces that still fit.
func maximalize(lines []model.DemandLine, counts []int, stock, kerf model.MM) []int {
	caps := pieceCaps(lines, stock, kerf)
	used, pieces := model.MM(0), 0
	for i, c := range counts {
		used += lines[i].Length * model.MM(c)
		pieces += c
	}
	for j, l := range lines {
		for counts[j] < caps[j] {
			remaining := stock - used - model.MM(pieces-1)*kerf
			if pieces == 0 {
				remaining = stock
			}
			need := l.Length
			if pieces > 0 {
				need += kerf
			}
			if need > remaining {
				break
			}
			counts[j]++
			used += l.Length
			pieces++
		}
	}
	return counts
}

func expandCounts(lines []model.DemandLine, counts []int) []model.MM {
	var pieces []model.MM
	for i, c := range counts {
		for k := 0; k < c; k++ {
			pieces = append(pieces, lines[i].Length)
		}
	}
	return pieces
}

// checkFits fails with NoFeasiblePattern when a demand length fits no stock.
func checkFits(lines []model.DemandLine, stocks []model.StockOption, kerf model.MM) error {
	for _, l := range lines {
		fits := false
		for _, s := range stocks {
			if l.Length <= s.LengthMM() {
				fits = true
				break
			}
		}
		if !fits {
			return newError(KindNoFeasiblePattern, l.Diameter, "length %s fits no stock option", l.Length)
		}
	}
	return nil
}

// stockLengths returns the distinct stock lengths, longest first.
func stockLengths(stocks []model.StockOption) []model.MM {
	seen := make(map[model.MM]bool)
	var out []model.MM
	for _, s := range stocks {
		if l := s.LengthMM(); !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// sortPatterns orders patterns by stock length (longest first), stock ID and
// piece list, so that results do not depend on goroutine scheduling.
func sortPatterns(patterns []model.Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if a.StockLength != b.StockLength {
			return a.StockLength > b.StockLength
		}
		if a.StockID != b.StockID {
			return a.StockID < b.StockID
		}
		return lessPieces(a.Pieces, b.Pieces)
	})
}

// lessPieces orders piece lists with longer leading pieces first.
func lessPieces(a, b []model.MM) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}

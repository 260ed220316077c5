package engine

import (
	"github.com/piwi3910/RebarCut/internal/model"
)

// knapsackItem is a bundle of mult pieces of one demand line, produced by
// binary splitting of the bounded item counts.
type knapsackItem struct {
	line   int
	mult   int
	weight int
	value  float64
}

// priceStock solves the pricing problem for one stock length: choose piece
// counts (each at most its cap) maximizing the sum of the dual values while
// the pieces and kerfs fit the stock. It returns the counts and their value.
//
// With k pieces a pattern uses sum(length) + (k-1)*kerf, so giving every
// piece the weight length+kerf and the stock the capacity stock+kerf makes the
// kerf rule exact.
func priceStock(lines []model.DemandLine, duals []float64, stock, kerf model.MM) ([]int, float64) {
	caps := pieceCaps(lines, stock, kerf)
	capacity := int64(stock + kerf)

	g := capacity
	for i, l := range lines {
		if caps[i] > 0 && duals[i] > 0 {
			g = gcd(g, int64(l.Length+kerf))
		}
	}
	if g <= 0 {
		g = 1
	}

	var items []knapsackItem
	for i, l := range lines {
		if caps[i] == 0 || duals[i] <= 0 {
			continue
		}
		w := int(int64(l.Length+kerf) / g)
		for m, left := 1, caps[i]; left > 0; m *= 2 {
			take := min(m, left)
			items = append(items, knapsackItem{line: i, mult: take, weight: w * take, value: duals[i] * float64(take)})
			left -= take
		}
	}

	size := int(capacity / g)
	best := make([]float64, size+1)
	keep := make([][]bool, len(items))
	for k, it := range items {
		keep[k] = make([]bool, size+1)
		for c := size; c >= it.weight; c-- {
			if v := best[c-it.weight] + it.value; v > best[c]+eps {
				best[c] = v
				keep[k][c] = true
			}
		}
	}

	counts := make([]int, len(lines))
	c := size
	for k := len(items) - 1; k >= 0; k-- {
		if keep[k][c] {
			counts[items[k].line] += items[k].mult
			c -= items[k].weight
		}
	}
	return counts, best[size]
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

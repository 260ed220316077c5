package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RebarCut/internal/model"
)

func TestFloorSolution(t *testing.T) {
	s6 := stock("S6", "#10", 6, 10)
	a := model.NewPattern(s6, []model.MM{3000, 3000}, 0)
	b := model.NewPattern(s6, []model.MM{2000, 2000, 2000}, 0)
	c := model.NewPattern(s6, []model.MM{3000, 2000}, 0)

	got := floorSolution(LPSolution{
		Diameter: "#10",
		Patterns: []model.Pattern{a, b, c},
		Values:   []float64{2.5, 0.999999999999, 0.4},
	})
	require.Len(t, got.Patterns, 2)
	assert.Equal(t, []int{2, 1}, got.Counts)
	assert.Equal(t, a.Key(), got.Patterns[0].Key())
	assert.Equal(t, b.Key(), got.Patterns[1].Key())
}

func TestMergeSolutions(t *testing.T) {
	s6 := stock("S6", "#10", 6, 10)
	a := model.NewPattern(s6, []model.MM{3000, 3000}, 0)
	b := model.NewPattern(s6, []model.MM{2000, 2000, 2000}, 0)

	x := model.Solution{Diameter: "#10", Patterns: []model.Pattern{a}, Counts: []int{2}}
	y := model.Solution{Diameter: "#10", Patterns: []model.Pattern{b, a}, Counts: []int{1, 3}}

	got := mergeSolutions(x, y)
	assert.Equal(t, []int{5, 1}, got.Counts)
	assert.Equal(t, []int{2}, x.Counts, "inputs must not be modified")
	assert.InDelta(t, 60.0, got.Cost(), 1e-9)
}

func TestResidualLinesAndStocks(t *testing.T) {
	cheap := stock("S6", "#10", 6, 8)
	cheap.Available = 2
	regular := stock("R6", "#10", 6, 10)
	p := model.NewPattern(cheap, []model.MM{3000, 2000}, 0)
	fixed := model.Solution{Diameter: "#10", Patterns: []model.Pattern{p}, Counts: []int{2}}

	lines := []model.DemandLine{line(3000, 2), line(2000, 5)}
	rest := residualLines(lines, fixed)
	require.Len(t, rest, 1)
	assert.Equal(t, model.MM(2000), rest[0].Length)
	assert.Equal(t, 3, rest[0].Quantity)
	assert.Equal(t, 5, lines[1].Quantity, "input lines must not be modified")

	stocks := residualStocks([]model.StockOption{cheap, regular}, fixed)
	require.Len(t, stocks, 1, "exhausted limited stock is dropped")
	assert.Equal(t, "R6", stocks[0].ID)
}

func TestCheaperSolution(t *testing.T) {
	s6 := stock("S6", "#10", 6, 10)
	lines := []model.DemandLine{line(3000, 2)}
	one := model.Solution{Patterns: []model.Pattern{model.NewPattern(s6, []model.MM{3000, 3000}, 0)}, Counts: []int{1}}
	two := model.Solution{Patterns: []model.Pattern{model.NewPattern(s6, []model.MM{3000}, 0)}, Counts: []int{2}}
	short := model.Solution{Patterns: []model.Pattern{model.NewPattern(s6, []model.MM{3000}, 0)}, Counts: []int{1}}

	assert.Equal(t, one, cheaperSolution(two, one, lines))
	assert.Equal(t, one, cheaperSolution(one, two, lines))
	assert.Equal(t, two, cheaperSolution(two, short, lines), "a plan that misses demand is never taken")
}

// scheduleJob is a cut list of many distinct lengths, the kind where plain
// rounding leaves the plan well above the LP bound.
func scheduleJob() ([]model.CutRequirement, []model.StockOption) {
	var reqs []model.CutRequirement
	for i := 0; i < 25; i++ {
		length := 0.6 + float64(i)*0.37
		qty := 1 + (i*7)%9
		reqs = append(reqs, req(fmt.Sprintf("M%02d", i+1), "#16", length, qty))
	}
	return reqs, model.MarketCatalog([]model.Diameter{"#16"}, model.DefaultMarketLengths, 1.2)
}

func TestOptimize_ResidualPassesNeverCostMore(t *testing.T) {
	jobs := map[string]func() ([]model.CutRequirement, []model.StockOption){
		"mixed":    mixedJob,
		"schedule": scheduleJob,
	}
	for name, job := range jobs {
		t.Run(name, func(t *testing.T) {
			reqs, catalog := job()

			plain := testOptions()
			plain.KerfWidth = 3
			plain.ResidualPasses = 0
			withResidual := plain
			withResidual.ResidualPasses = 3

			base, err := New(plain, nil).Optimize(context.Background(), reqs, catalog)
			require.NoError(t, err)
			improved, err := New(withResidual, nil).Optimize(context.Background(), reqs, catalog)
			require.NoError(t, err)

			assert.LessOrEqual(t, improved.TotalCost(), base.TotalCost()+1e-6)
			assert.InDelta(t, base.LowerBound(), improved.LowerBound(), 1e-6)
			assert.GreaterOrEqual(t, improved.TotalCost(), improved.LowerBound()-1e-6)

			produced := make(map[model.Diameter]map[model.MM]int)
			for _, b := range improved.Bars() {
				assert.Equal(t, b.StockLength, b.UsedLength()+b.KerfLoss+b.Offcut, "bar %s", b.ID)
				if produced[b.Diameter] == nil {
					produced[b.Diameter] = make(map[model.MM]int)
				}
				for _, p := range b.Pieces {
					produced[b.Diameter][p.Length]++
				}
			}
			demand := make(map[model.Diameter]map[model.MM]int)
			for _, r := range reqs {
				if demand[r.Diameter] == nil {
					demand[r.Diameter] = make(map[model.MM]int)
				}
				demand[r.Diameter][model.ToMM(r.Length)] += r.Quantity
			}
			for dia, byLen := range demand {
				for l, q := range byLen {
					assert.GreaterOrEqual(t, produced[dia][l], q, "%s %s", dia, l)
				}
			}
		})
	}
}

func TestOptimize_ResidualRespectsAvailability(t *testing.T) {
	cheap := stock("S6", "#10", 6, 8)
	cheap.Available = 1
	catalog := []model.StockOption{cheap, stock("R6", "#10", 6, 10)}

	opts := testOptions()
	opts.WasteThreshold = 0
	plan, err := New(opts, nil).Optimize(context.Background(),
		[]model.CutRequirement{req("A", "#10", 5.0, 3)}, catalog)
	require.NoError(t, err)

	used := make(map[string]int)
	for _, b := range plan.Bars() {
		used[b.StockID]++
	}
	assert.LessOrEqual(t, used["S6"], 1)
	assert.InDelta(t, 28.0, plan.TotalCost(), 1e-9)
}

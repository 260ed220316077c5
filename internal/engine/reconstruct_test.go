package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RebarCut/internal/model"
)

func TestReconstruct_LabelsAndSurplus(t *testing.T) {
	s6 := stock("S6", "#10", 6, 10)
	s9 := stock("S9", "#10", 9, 14)
	lines := []model.DemandLine{
		{Diameter: "#10", Length: 3000, Quantity: 3, Marks: []model.Mark{{Label: "B1", Quantity: 2}, {Label: "B2", Quantity: 1}}},
	}
	sol := model.Solution{
		Diameter: "#10",
		Patterns: []model.Pattern{pattern(s6, 3000, 3000), pattern(s9, 3000, 3000, 3000)},
		Counts:   []int{1, 1},
	}
	opts := testOptions()

	plan := Reconstruct("#10", sol, lines, []model.StockOption{s6, s9}, opts)
	require.Len(t, plan.Bars, 2)

	// Longest stock first.
	first := plan.Bars[0]
	assert.Equal(t, "#10-001", first.ID)
	assert.Equal(t, model.MM(9000), first.StockLength)
	assert.Equal(t, []model.PlacedPiece{
		{Length: 3000, Label: "B1"},
		{Length: 3000, Label: "B1"},
		{Length: 3000, Label: "B2"},
	}, first.Pieces)

	second := plan.Bars[1]
	assert.Equal(t, "#10-002", second.ID)
	assert.True(t, second.Pieces[0].Surplus)
	assert.True(t, second.Pieces[1].Surplus)

	assert.Equal(t, 2, plan.SurplusPieces)
	assert.Equal(t, model.MM(6000), plan.SurplusLength)
	assert.InDelta(t, 24.0, plan.TotalCost, 1e-9)
	assert.Equal(t, model.MM(15000), plan.TotalStockLength)
	assert.Equal(t, model.MM(0), plan.TotalWaste)

	require.Len(t, plan.BuyList, 2)
	assert.Equal(t, "S9", plan.BuyList[0].Stock.ID)
	assert.Equal(t, 1, plan.BuyList[0].Count)
}

func TestReconstruct_OffcutsAndKerf(t *testing.T) {
	s12 := stock("S12", "#16", 12, 30)
	lines := []model.DemandLine{{Diameter: "#16", Length: 5000, Quantity: 4, Marks: []model.Mark{{Label: "C", Quantity: 4}}}}
	p := model.NewPattern(s12, []model.MM{5000, 5000}, 5)
	sol := model.Solution{Diameter: "#16", Patterns: []model.Pattern{p}, Counts: []int{2}}
	opts := testOptions()
	opts.KerfWidth = 5
	opts.MinReusableOffcut = 1.0

	plan := Reconstruct("#16", sol, lines, []model.StockOption{s12}, opts)
	require.Len(t, plan.Bars, 2)
	for _, b := range plan.Bars {
		assert.Equal(t, b.StockLength, b.UsedLength()+b.KerfLoss+b.Offcut)
		assert.Equal(t, model.MM(1995), b.Offcut)
	}
	require.Len(t, plan.Offcuts, 2)
	assert.Equal(t, "OC-#16-001", plan.Offcuts[0].ID)
	assert.Equal(t, model.MM(2*(1995+5)), plan.TotalWaste)
	assert.Equal(t, 2, plan.Patterns[0].Count)
}

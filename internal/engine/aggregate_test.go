package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RebarCut/internal/model"
)

func stock(id string, dia model.Diameter, length, cost float64) model.StockOption {
	return model.StockOption{ID: id, Diameter: dia, Length: length, UnitCost: cost}
}

func req(label string, dia model.Diameter, length float64, qty int) model.CutRequirement {
	return model.CutRequirement{ID: label, Label: label, Diameter: dia, Length: length, Quantity: qty}
}

func TestAggregate_MergesAndSorts(t *testing.T) {
	catalog := []model.StockOption{stock("S6", "#10", 6, 10), stock("S12", "#12", 12, 25)}
	reqs := []model.CutRequirement{
		req("A", "#10", 2.0, 3),
		req("B", "#10", 3.0, 4),
		req("C", "#10", 2.0004, 3), // rounds to the same millimetre as A
		req("D", "#12", 1.5, 2),
	}

	demand, err := Aggregate(reqs, catalog)
	require.NoError(t, err)
	require.Len(t, demand, 2)

	lines := demand["#10"]
	require.Len(t, lines, 2)
	assert.Equal(t, model.MM(3000), lines[0].Length)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, model.MM(2000), lines[1].Length)
	assert.Equal(t, 6, lines[1].Quantity)
	assert.Equal(t, []model.Mark{{Label: "A", Quantity: 3}, {Label: "C", Quantity: 3}}, lines[1].Marks)
	assert.Equal(t, []string{"A", "C"}, lines[1].Labels())

	assert.Len(t, demand["#12"], 1)
}

func TestAggregate_InvalidDemand(t *testing.T) {
	catalog := []model.StockOption{stock("S6", "#10", 6, 10)}
	cases := map[string]model.CutRequirement{
		"zero length":   req("A", "#10", 0, 1),
		"negative":      req("A", "#10", -1, 1),
		"zero quantity": req("A", "#10", 2, 0),
		"no diameter":   req("A", "", 2, 1),
		"no stock":      req("A", "#16", 2, 1),
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Aggregate([]model.CutRequirement{r}, catalog)
			assert.ErrorIs(t, err, ErrInvalidDemand)
		})
	}

	_, err := Aggregate(nil, catalog)
	assert.ErrorIs(t, err, ErrInvalidDemand)
}

func TestAggregate_TooLongIsNoFeasiblePattern(t *testing.T) {
	catalog := []model.StockOption{stock("S6", "#10", 6, 10), stock("S9", "#10", 9, 14)}
	_, err := Aggregate([]model.CutRequirement{req("A", "#10", 9.001, 1)}, catalog)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFeasiblePattern)

	var oe *OptimizationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, model.Diameter("#10"), oe.Diameter)
	assert.Equal(t, KindNoFeasiblePattern, oe.Kind)
}

func TestAggregate_RejectsBadStock(t *testing.T) {
	catalog := []model.StockOption{stock("bad", "#10", 0, 10)}
	_, err := Aggregate([]model.CutRequirement{req("A", "#10", 1, 1)}, catalog)
	assert.ErrorIs(t, err, ErrInvalidDemand)
}

func TestAggregate_RejectsNonFiniteValues(t *testing.T) {
	good := stock("S6", "#10", 6, 10)
	stocks := map[string]model.StockOption{
		"NaN length":      stock("a", "#10", math.NaN(), 1),
		"+Inf length":     stock("a", "#10", math.Inf(1), 1),
		"sub-mm length":   stock("a", "#10", 0.0004, 1),
		"NaN cost":        stock("a", "#10", 6, math.NaN()),
		"+Inf cost":       stock("a", "#10", 6, math.Inf(1)),
		"negative cost":   stock("a", "#10", 6, -1),
		"no diameter":     stock("a", "", 6, 1),
		"negative supply": {ID: "a", Diameter: "#10", Length: 6, UnitCost: 1, Available: -1},
	}
	for name, s := range stocks {
		t.Run("stock "+name, func(t *testing.T) {
			_, err := Aggregate([]model.CutRequirement{req("A", "#10", 3, 1)}, []model.StockOption{s, good})
			assert.ErrorIs(t, err, ErrInvalidDemand)
		})
	}

	for name, l := range map[string]float64{"NaN": math.NaN(), "+Inf": math.Inf(1), "-Inf": math.Inf(-1)} {
		t.Run("requirement "+name, func(t *testing.T) {
			_, err := Aggregate([]model.CutRequirement{req("A", "#10", l, 1)}, []model.StockOption{good})
			assert.ErrorIs(t, err, ErrInvalidDemand)
		})
	}
}

func TestPrepareCatalog_AssignsMissingIDs(t *testing.T) {
	catalog := []model.StockOption{
		{Diameter: "#10", Length: 6, UnitCost: 8, Available: 1},
		{Diameter: "#10", Length: 6, UnitCost: 10},
		{ID: "#10/12m", Diameter: "#10", Length: 12, UnitCost: 20},
		{Diameter: "#10", Length: 12, UnitCost: 21},
	}

	got, err := PrepareCatalog(catalog)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"#10/6m", "#10/6m-2", "#10/12m", "#10/12m-2"}, ids)
	assert.Empty(t, catalog[0].ID, "caller's catalog must not be modified")

	again, err := PrepareCatalog(catalog)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestPrepareCatalog_RejectsDuplicateIDs(t *testing.T) {
	catalog := []model.StockOption{stock("S6", "#10", 6, 8), stock("S6", "#10", 9, 12)}
	_, err := PrepareCatalog(catalog)
	assert.ErrorIs(t, err, ErrInvalidDemand)
}

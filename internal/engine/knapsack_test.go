package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/RebarCut/internal/model"
)

func TestPriceStock(t *testing.T) {
	lines := []model.DemandLine{line(3000, 4), line(2000, 6)}

	counts, value := priceStock(lines, []float64{5, 3.4}, 6000, 0)
	assert.Equal(t, []int{0, 3}, counts)
	assert.InDelta(t, 10.2, value, 1e-9)

	counts, value = priceStock(lines, []float64{5, 3.4}, 7000, 0)
	assert.Equal(t, []int{1, 2}, counts)
	assert.InDelta(t, 11.8, value, 1e-9)
}

func TestPriceStock_RespectsCapsAndKerf(t *testing.T) {
	lines := []model.DemandLine{line(2000, 2)}

	counts, value := priceStock(lines, []float64{1}, 6000, 0)
	assert.Equal(t, []int{2}, counts)
	assert.InDelta(t, 2.0, value, 1e-9)

	lines = []model.DemandLine{line(2000, 6)}
	counts, _ = priceStock(lines, []float64{1}, 6000, 5)
	assert.Equal(t, []int{2}, counts)
}

func TestPriceStock_IgnoresNonPositiveDuals(t *testing.T) {
	lines := []model.DemandLine{line(3000, 4), line(2000, 6)}
	counts, value := priceStock(lines, []float64{0, 1}, 6000, 0)
	assert.Equal(t, []int{0, 3}, counts)
	assert.InDelta(t, 3.0, value, 1e-9)
}

func TestNextCombination(t *testing.T) {
	idx := []int{0, 1}
	var got [][]int
	for {
		got = append(got, append([]int(nil), idx...))
		if !nextCombination(idx, 4) {
			break
		}
	}
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

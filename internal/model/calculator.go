package model

import "math"

// PurchaseEstimate is a quick material take-off for one diameter and stock
// length, computed from total length alone without cutting patterns.
type PurchaseEstimate struct {
	Diameter        Diameter `json:"diameter"`
	TotalCutLength  float64  `json:"total_cut_length"`  // metres, kerf included
	TotalWeight     float64  `json:"total_weight"`      // kg
	StockLength     float64  `json:"stock_length"`      // metres
	BarsNeededExact float64  `json:"bars_needed_exact"` // Fractional number of bars
	BarsNeededMin   int      `json:"bars_needed_min"`   // Ceiling of exact, a lower bound on any plan
	BarsWithWaste   int      `json:"bars_with_waste"`   // Recommended bars including waste factor
	WastePercent    float64  `json:"waste_percent"`     // Waste factor applied (e.g. 5 for 5%)
	EstimatedCost   float64  `json:"estimated_cost"`
	PricePerBar     float64  `json:"price_per_bar"`
	KerfWidth       float64  `json:"kerf_width"` // mm
}

// CalculatePurchaseEstimate computes how many bars of one stock length to buy
// for the given requirements of a single diameter. Requirements of other
// diameters are ignored.
func CalculatePurchaseEstimate(reqs []CutRequirement, stock StockOption, kerfWidth, wastePercent float64) PurchaseEstimate {
	var totalCut float64
	for _, r := range reqs {
		if r.Diameter != stock.Diameter {
			continue
		}
		totalCut += (r.Length + kerfWidth/1000.0) * float64(r.Quantity)
	}

	est := PurchaseEstimate{
		Diameter:       stock.Diameter,
		TotalCutLength: totalCut,
		TotalWeight:    totalCut * stock.Diameter.UnitWeight(),
		StockLength:    stock.Length,
		WastePercent:   wastePercent,
		PricePerBar:    stock.UnitCost,
		KerfWidth:      kerfWidth,
	}
	if stock.Length <= 0 {
		return est
	}

	exact := totalCut / stock.Length
	minBars := int(math.Ceil(exact - 1e-9))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	withWaste := int(math.Ceil(exact*wasteFactor - 1e-9))
	if withWaste < minBars {
		withWaste = minBars
	}

	est.BarsNeededExact = exact
	est.BarsNeededMin = minBars
	est.BarsWithWaste = withWaste
	est.EstimatedCost = float64(withWaste) * stock.UnitCost
	return est
}

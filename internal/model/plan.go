package model

import "sort"

// PlacedPiece is a piece cut from a bar.
type PlacedPiece struct {
	Length  MM     `json:"length_mm"`
	Label   string `json:"label,omitempty"`
	Surplus bool   `json:"surplus"` // Produced beyond the demanded quantity
}

// Bar is one physical stock bar in the cut list.
type Bar struct {
	ID          string        `json:"id"`
	Index       int           `json:"index"` // 1-based within its diameter
	Diameter    Diameter      `json:"diameter"`
	StockID     string        `json:"stock_id"`
	StockLength MM            `json:"stock_length_mm"`
	Cost        float64       `json:"cost"`
	Pieces      []PlacedPiece `json:"pieces"`
	KerfLoss    MM            `json:"kerf_loss_mm"`
	Offcut      MM            `json:"offcut_mm"`
	PatternKey  string        `json:"pattern_key"`
}

// UsedLength returns the total length of the pieces cut from the bar.
func (b Bar) UsedLength() MM {
	var total MM
	for _, p := range b.Pieces {
		total += p.Length
	}
	return total
}

// PieceLengths returns the ordered piece lengths.
func (b Bar) PieceLengths() []MM {
	out := make([]MM, len(b.Pieces))
	for i, p := range b.Pieces {
		out[i] = p.Length
	}
	return out
}

// BuyLine is the purchase count for one stock option.
type BuyLine struct {
	Stock StockOption `json:"stock"`
	Count int         `json:"count"`
	Cost  float64     `json:"cost"`
}

// PatternUsage is a distinct cutting pattern and how many bars follow it.
type PatternUsage struct {
	Pattern Pattern `json:"pattern"`
	Count   int     `json:"count"`
}

// DiameterPlan is the buy and cut plan for a single diameter.
type DiameterPlan struct {
	Diameter         Diameter       `json:"diameter"`
	Bars             []Bar          `json:"bars"`
	BuyList          []BuyLine      `json:"buy_list"`
	Patterns         []PatternUsage `json:"patterns"`
	Offcuts          []Offcut       `json:"offcuts,omitempty"`
	TotalCost        float64        `json:"total_cost"`
	LowerBound       float64        `json:"lower_bound"` // LP relaxation cost
	TotalStockLength MM             `json:"total_stock_length_mm"`
	TotalWaste       MM             `json:"total_waste_mm"` // Offcuts plus kerf loss
	SurplusPieces    int            `json:"surplus_pieces"`
	SurplusLength    MM             `json:"surplus_length_mm"`
}

// BarsPurchased returns the number of bars bought for this diameter.
func (d DiameterPlan) BarsPurchased() int {
	return len(d.Bars)
}

// WastePercent returns waste over total purchased length, in percent.
func (d DiameterPlan) WastePercent() float64 {
	if d.TotalStockLength == 0 {
		return 0
	}
	return float64(d.TotalWaste) / float64(d.TotalStockLength) * 100.0
}

// CuttingPlan is the result of one optimization run.
type CuttingPlan struct {
	Diameters []DiameterPlan `json:"diameters"`
}

// TotalCost returns the purchase cost over all diameters.
func (p CuttingPlan) TotalCost() float64 {
	var total float64
	for _, d := range p.Diameters {
		total += d.TotalCost
	}
	return total
}

// LowerBound returns the sum of per-diameter LP bounds.
func (p CuttingPlan) LowerBound() float64 {
	var total float64
	for _, d := range p.Diameters {
		total += d.LowerBound
	}
	return total
}

// TotalBars returns the number of bars purchased over all diameters.
func (p CuttingPlan) TotalBars() int {
	n := 0
	for _, d := range p.Diameters {
		n += len(d.Bars)
	}
	return n
}

// Bars returns every bar in plan order.
func (p CuttingPlan) Bars() []Bar {
	var bars []Bar
	for _, d := range p.Diameters {
		bars = append(bars, d.Bars...)
	}
	return bars
}

// BuyList returns the purchase lines of all diameters.
func (p CuttingPlan) BuyList() []BuyLine {
	var lines []BuyLine
	for _, d := range p.Diameters {
		lines = append(lines, d.BuyList...)
	}
	return lines
}

// WastePercent returns overall waste over total purchased length, in percent.
func (p CuttingPlan) WastePercent() float64 {
	var waste, stock MM
	for _, d := range p.Diameters {
		waste += d.TotalWaste
		stock += d.TotalStockLength
	}
	if stock == 0 {
		return 0
	}
	return float64(waste) / float64(stock) * 100.0
}

// Offcuts returns the reusable offcuts of all diameters, longest first.
func (p CuttingPlan) Offcuts() []Offcut {
	var all []Offcut
	for _, d := range p.Diameters {
		all = append(all, d.Offcuts...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Length > all[j].Length
	})
	return all
}

// Find returns the plan of the given diameter.
func (p CuttingPlan) Find(dia Diameter) (DiameterPlan, bool) {
	for _, d := range p.Diameters {
		if d.Diameter == dia {
			return d, true
		}
	}
	return DiameterPlan{}, false
}

// MarketLengths returns the distinct purchased stock lengths, shortest first.
func (p CuttingPlan) MarketLengths() []MM {
	seen := make(map[MM]bool)
	var lengths []MM
	for _, line := range p.BuyList() {
		l := line.Stock.LengthMM()
		if !seen[l] {
			seen[l] = true
			lengths = append(lengths, l)
		}
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] < lengths[j] })
	return lengths
}

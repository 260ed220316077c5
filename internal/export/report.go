// Package export renders cutting plans into purchase and cutting reports:
// Excel workbooks, PDF cut sheets, QR bar tags, DXF diagrams, YAML and
// usage charts.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Report is the tabular view of a plan shared by every output format.
type Report struct {
	Summary  Summary       `yaml:"summary"`
	Lengths  []float64     `yaml:"market_lengths"` // Purchased stock lengths in metres, shortest first
	Purchase []PurchaseRow `yaml:"purchase"`
	Cutting  []CuttingRow  `yaml:"cutting"`
	Offcuts  []OffcutRow   `yaml:"offcuts,omitempty"`
}

// Summary holds the plan totals.
type Summary struct {
	Bars         int     `yaml:"bars"`
	TotalCost    string  `yaml:"total_cost"`
	LowerBound   string  `yaml:"lower_bound"`
	StockLength  float64 `yaml:"stock_length_m"`
	Waste        float64 `yaml:"waste_m"`
	WastePercent float64 `yaml:"waste_percent"`
	Surplus      int     `yaml:"surplus_pieces"`
}

// PurchaseRow is one diameter of the purchase matrix. Counts is aligned with
// Report.Lengths.
type PurchaseRow struct {
	Diameter string `yaml:"diameter"`
	Counts   []int  `yaml:"counts"`
	Bars     int    `yaml:"bars"`
	Cost     string `yaml:"cost"`
}

// CuttingRow is one distinct cutting pattern with its repeat count.
type CuttingRow struct {
	Diameter    string   `yaml:"diameter"`
	Quantity    int      `yaml:"quantity"`
	Length      float64  `yaml:"length_m"`
	Cuts        []string `yaml:"cuts"`
	Offcut      float64  `yaml:"offcut_m"`
	Instruction string   `yaml:"instruction"`
}

// OffcutRow is a reusable remnant.
type OffcutRow struct {
	ID        string  `yaml:"id"`
	Diameter  string  `yaml:"diameter"`
	Length    float64 `yaml:"length_m"`
	SourceBar string  `yaml:"source_bar"`
}

// BuildReport converts a plan into report tables.
func BuildReport(plan model.CuttingPlan) Report {
	r := Report{}
	lengths := plan.MarketLengths()
	col := make(map[model.MM]int, len(lengths))
	for i, l := range lengths {
		col[l] = i
		r.Lengths = append(r.Lengths, l.Meters())
	}

	var stockLen, waste model.MM
	surplus := 0
	for _, d := range plan.Diameters {
		row := PurchaseRow{Diameter: string(d.Diameter), Counts: make([]int, len(lengths))}
		cost := decimal.Zero
		for _, line := range d.BuyList {
			row.Counts[col[line.Stock.LengthMM()]] += line.Count
			row.Bars += line.Count
			cost = cost.Add(Money(line.Cost))
		}
		row.Cost = cost.StringFixed(2)
		r.Purchase = append(r.Purchase, row)

		for _, u := range d.Patterns {
			r.Cutting = append(r.Cutting, CuttingRow{
				Diameter:    string(d.Diameter),
				Quantity:    u.Count,
				Length:      u.Pattern.StockLength.Meters(),
				Cuts:        CutsPerBar(u.Pattern),
				Offcut:      u.Pattern.Waste.Meters(),
				Instruction: Instruction(d.Diameter, u),
			})
		}
		for _, o := range d.Offcuts {
			r.Offcuts = append(r.Offcuts, OffcutRow{ID: o.ID, Diameter: string(o.Diameter), Length: o.Length.Meters(), SourceBar: o.SourceBar})
		}

		stockLen += d.TotalStockLength
		waste += d.TotalWaste
		surplus += d.SurplusPieces
	}

	r.Summary = Summary{
		Bars:         plan.TotalBars(),
		TotalCost:    TotalCost(plan).StringFixed(2),
		LowerBound:   Money(plan.LowerBound()).StringFixed(2),
		StockLength:  stockLen.Meters(),
		Waste:        waste.Meters(),
		WastePercent: plan.WastePercent(),
		Surplus:      surplus,
	}
	return r
}

// Money rounds a float amount to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// TotalCost sums the purchase lines of every diameter in exact decimal.
func TotalCost(plan model.CuttingPlan) decimal.Decimal {
	total := decimal.Zero
	for _, line := range plan.BuyList() {
		total = total.Add(Money(line.Stock.UnitCost).Mul(decimal.NewFromInt(int64(line.Count))))
	}
	return total
}

// CutsPerBar describes a pattern as "4x2.095m" groups, longest first.
func CutsPerBar(p model.Pattern) []string {
	groups := model.GroupPieces(p.Pieces)
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = fmt.Sprintf("%dx%sm", g.Count, formatMeters(g.Length))
	}
	return out
}

// Instruction returns the shop-floor sentence for a pattern, e.g.
// "Cut each of the 4pcs of 13.5m RSB (#10) into 4×2.095m and 3×1.695m lengths."
func Instruction(dia model.Diameter, u model.PatternUsage) string {
	cuts := CutsPerBar(u.Pattern)
	for i := range cuts {
		cuts[i] = strings.Replace(cuts[i], "x", "×", 1)
	}
	var joined string
	switch len(cuts) {
	case 0:
		joined = "no"
	case 1:
		joined = cuts[0]
	case 2:
		joined = cuts[0] + " and " + cuts[1]
	default:
		joined = strings.Join(cuts[:len(cuts)-1], ", ") + ", and " + cuts[len(cuts)-1]
	}

	length := formatMeters(u.Pattern.StockLength)
	if u.Count > 1 {
		return fmt.Sprintf("Cut each of the %dpcs of %sm RSB (%s) into %s lengths.", u.Count, length, dia, joined)
	}
	return fmt.Sprintf("Cut 1pc of %sm RSB (%s) into %s lengths.", length, dia, joined)
}

// formatMeters prints a length in metres without trailing zeros.
func formatMeters(v model.MM) string {
	return strconv.FormatFloat(v.Meters(), 'f', -1, 64)
}

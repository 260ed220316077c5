package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Diameter is the bar size tag a requirement or stock belongs to (e.g. "#10").
type Diameter string

// MM is a length in whole millimetres. All pattern arithmetic is done in MM so
// that sums of pieces are exact.
type MM int64

// ToMM converts a length in metres to the nearest whole millimetre.
func ToMM(meters float64) MM {
	return MM(math.Floor(meters*1000 + 0.5))
}

// Meters converts back to metres.
func (v MM) Meters() float64 {
	return float64(v) / 1000.0
}

func (v MM) String() string {
	return fmt.Sprintf("%.3fm", v.Meters())
}

// CutRequirement is one requested cut length for a bar diameter.
type CutRequirement struct {
	ID       string   `json:"id" mapstructure:"id"`
	Label    string   `json:"label" mapstructure:"label"` // Bar mark, e.g. "F1-B"
	Diameter Diameter `json:"diameter" mapstructure:"diameter"`
	Length   float64  `json:"length" mapstructure:"length"` // metres
	Quantity int      `json:"quantity" mapstructure:"quantity"`
}

func NewCutRequirement(label string, dia Diameter, length float64, qty int) CutRequirement {
	return CutRequirement{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Diameter: dia,
		Length:   length,
		Quantity: qty,
	}
}

// DemandLine is the aggregated demand for one (diameter, length) pair.
type DemandLine struct {
	Diameter Diameter `json:"diameter"`
	Length   MM       `json:"length_mm"`
	Quantity int      `json:"quantity"`
	Marks    []Mark   `json:"marks,omitempty"` // Requirements merged into this line, in input order
}

// Mark is the share of a demand line that came from one labelled requirement.
type Mark struct {
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

// Labels returns the distinct non-empty marks of the line.
func (l DemandLine) Labels() []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range l.Marks {
		if m.Label != "" && !seen[m.Label] {
			seen[m.Label] = true
			out = append(out, m.Label)
		}
	}
	return out
}

// StockOption is a purchasable bar.
type StockOption struct {
	ID        string   `json:"id" mapstructure:"id"`
	Diameter  Diameter `json:"diameter" mapstructure:"diameter"`
	Length    float64  `json:"length" mapstructure:"length"` // metres
	UnitCost  float64  `json:"unit_cost" mapstructure:"unit_cost"`
	Custom    bool     `json:"custom" mapstructure:"custom"`       // User-supplied length rather than a market length
	Available int      `json:"available" mapstructure:"available"` // Max bars that can be bought, 0 = unlimited
}

func NewStockOption(dia Diameter, length, unitCost float64) StockOption {
	return StockOption{
		ID:       uuid.New().String()[:8],
		Diameter: dia,
		Length:   length,
		UnitCost: unitCost,
	}
}

// StockKey returns the stable ID of a stock length, e.g. "#10/6m". Market
// stock uses it as its ID so repeated runs on one catalog agree.
func StockKey(dia Diameter, length float64) string {
	return fmt.Sprintf("%s/%gm", dia, ToMM(length).Meters())
}

// NewCustomStock creates a user-defined stock length.
func NewCustomStock(dia Diameter, length, unitCost float64) StockOption {
	s := NewStockOption(dia, length, unitCost)
	s.Custom = true
	return s
}

// LengthMM returns the stock length in millimetres.
func (s StockOption) LengthMM() MM {
	return ToMM(s.Length)
}

// Limited reports whether the number of purchasable bars is capped.
func (s StockOption) Limited() bool {
	return s.Available > 0
}

// Pattern is one way of cutting a single stock bar.
type Pattern struct {
	Diameter    Diameter `json:"diameter"`
	StockID     string   `json:"stock_id"`
	StockLength MM       `json:"stock_length_mm"`
	Cost        float64  `json:"cost"`
	Pieces      []MM     `json:"pieces_mm"` // Non-increasing
	Used        MM       `json:"used_mm"`
	KerfLoss    MM       `json:"kerf_loss_mm"`
	Waste       MM       `json:"waste_mm"`
}

// NewPattern builds a pattern for the stock, sorting pieces longest first.
// A pattern of k pieces loses (k-1) kerfs.
func NewPattern(stock StockOption, pieces []MM, kerf MM) Pattern {
	sorted := make([]MM, len(pieces))
	copy(sorted, pieces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	var used MM
	for _, p := range sorted {
		used += p
	}
	var kerfLoss MM
	if len(sorted) > 1 {
		kerfLoss = MM(len(sorted)-1) * kerf
	}
	length := stock.LengthMM()
	return Pattern{
		Diameter:    stock.Diameter,
		StockID:     stock.ID,
		StockLength: length,
		Cost:        stock.UnitCost,
		Pieces:      sorted,
		Used:        used,
		KerfLoss:    kerfLoss,
		Waste:       length - used - kerfLoss,
	}
}

// Key is the structural identity of the pattern: stock plus piece multiset.
func (p Pattern) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|", p.StockID, p.StockLength)
	for i, piece := range p.Pieces {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", piece)
	}
	return b.String()
}

// Count returns how many pieces of the given length the pattern yields.
func (p Pattern) Count(length MM) int {
	n := 0
	for _, piece := range p.Pieces {
		if piece == length {
			n++
		}
	}
	return n
}

// Feasible reports whether the pieces and kerf fit in the stock.
func (p Pattern) Feasible() bool {
	return len(p.Pieces) > 0 && p.Waste >= 0
}

func (p Pattern) String() string {
	parts := make([]string, 0, len(p.Pieces))
	for _, g := range GroupPieces(p.Pieces) {
		parts = append(parts, fmt.Sprintf("%dx%.3fm", g.Count, g.Length.Meters()))
	}
	return fmt.Sprintf("%.3fm = %s (waste %.3fm)", p.StockLength.Meters(), strings.Join(parts, " + "), p.Waste.Meters())
}

// PieceGroup is a run of equal pieces.
type PieceGroup struct {
	Length MM
	Count  int
}

// GroupPieces collapses a non-increasing piece list into (length, count) runs.
func GroupPieces(pieces []MM) []PieceGroup {
	var groups []PieceGroup
	for _, p := range pieces {
		if n := len(groups); n > 0 && groups[n-1].Length == p {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, PieceGroup{Length: p, Count: 1})
	}
	return groups
}

// Solution holds integral pattern multiplicities for one diameter.
type Solution struct {
	Diameter Diameter  `json:"diameter"`
	Patterns []Pattern `json:"patterns"`
	Counts   []int     `json:"counts"`
}

// Cost returns the purchase cost of the solution.
func (s Solution) Cost() float64 {
	var total float64
	for i, p := range s.Patterns {
		total += p.Cost * float64(s.Counts[i])
	}
	return total
}

// Produced returns how many pieces of the given length the solution yields.
func (s Solution) Produced(length MM) int {
	n := 0
	for i, p := range s.Patterns {
		n += p.Count(length) * s.Counts[i]
	}
	return n
}

// Covers reports whether every demand line is satisfied.
func (s Solution) Covers(lines []DemandLine) bool {
	for _, l := range lines {
		if s.Produced(l.Length) < l.Quantity {
			return false
		}
	}
	return true
}

package export

import (
	"fmt"
	"testing"

	"github.com/piwi3910/RebarCut/internal/model"
)

func usage(stock model.StockOption, count int, pieces ...model.MM) model.PatternUsage {
	return model.PatternUsage{Pattern: model.NewPattern(stock, pieces, 0), Count: count}
}

// diameterPlan expands pattern usages into bars the way the optimizer does.
func diameterPlan(dia model.Diameter, labels map[model.MM]string, usages ...model.PatternUsage) model.DiameterPlan {
	d := model.DiameterPlan{Diameter: dia, Patterns: usages}
	buy := make(map[string]int)
	var order []model.StockOption
	for _, u := range usages {
		p := u.Pattern
		stock := model.StockOption{ID: p.StockID, Diameter: dia, Length: p.StockLength.Meters(), UnitCost: p.Cost}
		if _, ok := buy[p.StockID]; !ok {
			order = append(order, stock)
		}
		buy[p.StockID] += u.Count
		for i := 0; i < u.Count; i++ {
			bar := model.Bar{
				ID:          fmt.Sprintf("%s-%03d", dia, len(d.Bars)+1),
				Index:       len(d.Bars) + 1,
				Diameter:    dia,
				StockID:     p.StockID,
				StockLength: p.StockLength,
				Cost:        p.Cost,
				KerfLoss:    p.KerfLoss,
				Offcut:      p.Waste,
				PatternKey:  p.Key(),
			}
			for _, l := range p.Pieces {
				bar.Pieces = append(bar.Pieces, model.PlacedPiece{Length: l, Label: labels[l]})
			}
			d.Bars = append(d.Bars, bar)
			d.TotalCost += p.Cost
			d.TotalStockLength += p.StockLength
			d.TotalWaste += p.Waste + p.KerfLoss
		}
	}
	for _, s := range order {
		d.BuyList = append(d.BuyList, model.BuyLine{Stock: s, Count: buy[s.ID], Cost: s.UnitCost * float64(buy[s.ID])})
	}
	d.LowerBound = d.TotalCost
	d.Offcuts = model.DetectOffcuts(d.Bars, 1000)
	return d
}

// testPlan is a two-diameter plan: #10 uses 13.5m and 6m bars, #12 uses 12m bars.
func testPlan() model.CuttingPlan {
	s135 := model.StockOption{ID: "10-13.5", Diameter: "#10", Length: 13.5, UnitCost: 8.33}
	s6 := model.StockOption{ID: "10-6", Diameter: "#10", Length: 6, UnitCost: 3.70}
	s12 := model.StockOption{ID: "12-12", Diameter: "#12", Length: 12, UnitCost: 10.67}

	d10 := diameterPlan("#10", map[model.MM]string{2095: "B1", 1695: "B2", 2500: "S1"},
		usage(s135, 4, 2095, 2095, 2095, 2095, 1695, 1695, 1695),
		usage(s6, 1, 2500, 2500),
	)
	d12 := diameterPlan("#12", map[model.MM]string{2400: "C1"},
		usage(s12, 3, 2400, 2400, 2400, 2400, 2400),
	)
	return model.CuttingPlan{Diameters: []model.DiameterPlan{d10, d12}}
}

func TestInstruction(t *testing.T) {
	s := model.StockOption{ID: "a", Diameter: "#10", Length: 13.5, UnitCost: 1}

	tests := []struct {
		name string
		u    model.PatternUsage
		want string
	}{
		{
			name: "two groups",
			u:    usage(s, 4, 2095, 2095, 2095, 2095, 1695, 1695, 1695),
			want: "Cut each of the 4pcs of 13.5m RSB (#10) into 4×2.095m and 3×1.695m lengths.",
		},
		{
			name: "single bar",
			u:    usage(s, 1, 6750, 6750),
			want: "Cut 1pc of 13.5m RSB (#10) into 2×6.75m lengths.",
		},
		{
			name: "three groups",
			u:    usage(s, 2, 5000, 4000, 3000),
			want: "Cut each of the 2pcs of 13.5m RSB (#10) into 1×5m, 1×4m, and 1×3m lengths.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Instruction("#10", tt.u); got != tt.want {
				t.Errorf("Instruction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCutsPerBar(t *testing.T) {
	s := model.StockOption{ID: "a", Diameter: "#10", Length: 13.5}
	got := CutsPerBar(model.NewPattern(s, []model.MM{1695, 2095, 2095}, 0))
	if len(got) != 2 || got[0] != "2x2.095m" || got[1] != "1x1.695m" {
		t.Errorf("CutsPerBar() = %v", got)
	}
}

func TestBuildReport(t *testing.T) {
	r := BuildReport(testPlan())

	wantLengths := []float64{6, 12, 13.5}
	if len(r.Lengths) != len(wantLengths) {
		t.Fatalf("expected %d market lengths, got %v", len(wantLengths), r.Lengths)
	}
	for i, l := range wantLengths {
		if r.Lengths[i] != l {
			t.Errorf("Lengths[%d] = %g, want %g", i, r.Lengths[i], l)
		}
	}

	if len(r.Purchase) != 2 {
		t.Fatalf("expected 2 purchase rows, got %d", len(r.Purchase))
	}
	p10 := r.Purchase[0]
	if p10.Diameter != "#10" || p10.Bars != 5 {
		t.Errorf("unexpected #10 row: %+v", p10)
	}
	if p10.Counts[0] != 1 || p10.Counts[1] != 0 || p10.Counts[2] != 4 {
		t.Errorf("unexpected #10 counts: %v", p10.Counts)
	}
	if p10.Cost != "37.02" {
		t.Errorf("#10 cost = %s, want 37.02", p10.Cost)
	}
	if r.Purchase[1].Counts[1] != 3 {
		t.Errorf("unexpected #12 counts: %v", r.Purchase[1].Counts)
	}

	if r.Summary.Bars != 8 {
		t.Errorf("Summary.Bars = %d, want 8", r.Summary.Bars)
	}
	// 4*8.33 + 3.70 + 3*10.67
	if r.Summary.TotalCost != "69.03" {
		t.Errorf("Summary.TotalCost = %s, want 69.03", r.Summary.TotalCost)
	}
	if len(r.Cutting) != 3 {
		t.Fatalf("expected 3 cutting rows, got %d", len(r.Cutting))
	}
	if r.Cutting[0].Quantity != 4 || r.Cutting[0].Length != 13.5 {
		t.Errorf("unexpected first cutting row: %+v", r.Cutting[0])
	}
	// Only the 6m bar leaves a 1m offcut.
	if len(r.Offcuts) != 1 || r.Offcuts[0].Length != 1 || r.Offcuts[0].SourceBar != "#10-005" {
		t.Errorf("unexpected offcuts: %+v", r.Offcuts)
	}
}

func TestTotalCost_Exact(t *testing.T) {
	s := model.StockOption{ID: "a", Diameter: "#10", Length: 6, UnitCost: 0.1}
	plan := model.CuttingPlan{Diameters: []model.DiameterPlan{
		diameterPlan("#10", nil, usage(s, 3, 6000)),
	}}
	if got := TotalCost(plan).String(); got != "0.3" {
		t.Errorf("TotalCost() = %s, want 0.3", got)
	}
}

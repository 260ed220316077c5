package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Aggregate validates the requirements and merges them into demand lines per
// diameter. Requirements of the same diameter whose lengths round to the same
// millimetre are summed. Lines are sorted longest first.
func Aggregate(requirements []model.CutRequirement, catalog []model.StockOption) (map[model.Diameter][]model.DemandLine, error) {
	if len(requirements) == 0 {
		return nil, newError(KindInvalidDemand, "", "no cut requirements")
	}

	longest := make(map[model.Diameter]model.MM)
	for _, s := range catalog {
		if err := checkStock(s); err != nil {
			return nil, err
		}
		if l := s.LengthMM(); l > longest[s.Diameter] {
			longest[s.Diameter] = l
		}
	}

	type key struct {
		dia    model.Diameter
		length model.MM
	}
	index := make(map[key]int)
	byDia := make(map[model.Diameter][]model.DemandLine)

	for i, r := range requirements {
		if r.Diameter == "" {
			return nil, newError(KindInvalidDemand, "", "requirement %d (%s): empty diameter", i+1, r.Label)
		}
		length := model.ToMM(r.Length)
		if !validLength(r.Length) {
			return nil, newError(KindInvalidDemand, r.Diameter, "requirement %d (%s): length %.3f must be positive", i+1, r.Label, r.Length)
		}
		if r.Quantity <= 0 {
			return nil, newError(KindInvalidDemand, r.Diameter, "requirement %d (%s): quantity %d must be positive", i+1, r.Label, r.Quantity)
		}
		maxLen, ok := longest[r.Diameter]
		if !ok {
			return nil, newError(KindInvalidDemand, r.Diameter, "no stock option for diameter %s", r.Diameter)
		}
		if length > maxLen {
			return nil, newError(KindNoFeasiblePattern, r.Diameter, "length %s exceeds the longest stock %s", length, maxLen)
		}

		k := key{r.Diameter, length}
		mark := model.Mark{Label: r.Label, Quantity: r.Quantity}
		if j, ok := index[k]; ok {
			byDia[r.Diameter][j].Quantity += r.Quantity
			byDia[r.Diameter][j].Marks = append(byDia[r.Diameter][j].Marks, mark)
			continue
		}
		index[k] = len(byDia[r.Diameter])
		byDia[r.Diameter] = append(byDia[r.Diameter], model.DemandLine{
			Diameter: r.Diameter,
			Length:   length,
			Quantity: r.Quantity,
			Marks:    []model.Mark{mark},
		})
	}

	for _, lines := range byDia {
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Length > lines[j].Length })
	}
	return byDia, nil
}

// PrepareCatalog validates the catalog and returns a copy in which every
// stock option has a unique ID. The engine identifies stock by ID, so options
// without one get a stable ID derived from diameter and length (with a
// "-2", "-3"... suffix for repeats), and explicit duplicate IDs are rejected.
func PrepareCatalog(catalog []model.StockOption) ([]model.StockOption, error) {
	out := make([]model.StockOption, len(catalog))
	copy(out, catalog)

	taken := make(map[string]bool, len(out))
	for _, s := range out {
		if err := checkStock(s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			continue
		}
		if taken[s.ID] {
			return nil, newError(KindInvalidDemand, s.Diameter, "duplicate stock option ID %q", s.ID)
		}
		taken[s.ID] = true
	}

	for i := range out {
		if out[i].ID != "" {
			continue
		}
		base := model.StockKey(out[i].Diameter, out[i].Length)
		id := base
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		out[i].ID = id
		taken[id] = true
	}
	return out, nil
}

func checkStock(s model.StockOption) error {
	if s.Diameter == "" || !validLength(s.Length) || !(s.UnitCost >= 0) || math.IsInf(s.UnitCost, 0) || s.Available < 0 {
		return newError(KindInvalidDemand, s.Diameter, "invalid stock option %q: length %g, cost %g, available %d",
			s.ID, s.Length, s.UnitCost, s.Available)
	}
	return nil
}

// validLength reports whether a length in metres is finite and at least
// half a millimetre.
func validLength(m float64) bool {
	return m > 0 && !math.IsInf(m, 0) && m < math.MaxInt64/1000 && model.ToMM(m) > 0
}

// stocksFor returns the stock options of one diameter, longest first, then
// cheapest first.
func stocksFor(catalog []model.StockOption, dia model.Diameter) []model.StockOption {
	var out []model.StockOption
	for _, s := range catalog {
		if s.Diameter == dia {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LengthMM() != out[j].LengthMM() {
			return out[i].LengthMM() > out[j].LengthMM()
		}
		return out[i].UnitCost < out[j].UnitCost
	})
	return out
}

func demandLength(lines []model.DemandLine) model.MM {
	var total model.MM
	for _, l := range lines {
		total += l.Length * model.MM(l.Quantity)
	}
	return total
}

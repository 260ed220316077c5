package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Reconstruct expands an integral solution into physical bars. Bars are
// ordered by stock length (longest first) and pattern; pieces are labelled
// with the requirement marks in demand order, and pieces beyond the demand are
// flagged as surplus.
func Reconstruct(dia model.Diameter, sol model.Solution, lines []model.DemandLine, stocks []model.StockOption, opts model.Options) model.DiameterPlan {
	plan := model.DiameterPlan{Diameter: dia}

	order := make([]int, len(sol.Patterns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := sol.Patterns[order[a]], sol.Patterns[order[b]]
		if pa.StockLength != pb.StockLength {
			return pa.StockLength > pb.StockLength
		}
		return pa.Key() < pb.Key()
	})

	marks := newMarkQueue(lines)
	stockByID := make(map[string]model.StockOption, len(stocks))
	for _, s := range stocks {
		stockByID[s.ID] = s
	}
	buyIndex := make(map[string]int)

	for _, i := range order {
		p, count := sol.Patterns[i], sol.Counts[i]
		if count <= 0 {
			continue
		}
		plan.Patterns = append(plan.Patterns, model.PatternUsage{Pattern: p, Count: count})

		stock, ok := stockByID[p.StockID]
		if !ok {
			stock = model.StockOption{ID: p.StockID, Diameter: dia, Length: p.StockLength.Meters(), UnitCost: p.Cost}
		}
		if j, ok := buyIndex[p.StockID]; ok {
			plan.BuyList[j].Count += count
			plan.BuyList[j].Cost += p.Cost * float64(count)
		} else {
			buyIndex[p.StockID] = len(plan.BuyList)
			plan.BuyList = append(plan.BuyList, model.BuyLine{Stock: stock, Count: count, Cost: p.Cost * float64(count)})
		}

		for n := 0; n < count; n++ {
			index := len(plan.Bars) + 1
			bar := model.Bar{
				ID:          barID(dia, index),
				Index:       index,
				Diameter:    dia,
				StockID:     p.StockID,
				StockLength: p.StockLength,
				Cost:        p.Cost,
				KerfLoss:    p.KerfLoss,
				Offcut:      p.Waste,
				PatternKey:  p.Key(),
			}
			for _, length := range p.Pieces {
				label, ok := marks.take(length)
				bar.Pieces = append(bar.Pieces, model.PlacedPiece{Length: length, Label: label, Surplus: !ok})
				if !ok {
					plan.SurplusPieces++
					plan.SurplusLength += length
				}
			}
			plan.Bars = append(plan.Bars, bar)

			plan.TotalCost += bar.Cost
			plan.TotalStockLength += bar.StockLength
			plan.TotalWaste += bar.Offcut + bar.KerfLoss
		}
	}

	plan.Offcuts = model.DetectOffcuts(plan.Bars, model.ToMM(opts.MinReusableOffcut))
	return plan
}

func barID(dia model.Diameter, index int) string {
	return fmt.Sprintf("%s-%03d", dia, index)
}

// markQueue hands out requirement labels per length in demand order.
type markQueue struct {
	queues map[model.MM][]model.Mark
}

func newMarkQueue(lines []model.DemandLine) *markQueue {
	q := &markQueue{queues: make(map[model.MM][]model.Mark)}
	for _, l := range lines {
		marks := append([]model.Mark(nil), l.Marks...)
		if len(marks) == 0 {
			marks = []model.Mark{{Quantity: l.Quantity}}
		}
		q.queues[l.Length] = append(q.queues[l.Length], marks...)
	}
	return q
}

// take returns the label of the next demanded piece of the given length, or
// false when the demand for that length is already met.
func (q *markQueue) take(length model.MM) (string, bool) {
	marks := q.queues[length]
	for len(marks) > 0 && marks[0].Quantity <= 0 {
		marks = marks[1:]
	}
	if len(marks) == 0 {
		q.queues[length] = marks
		return "", false
	}
	marks[0].Quantity--
	q.queues[length] = marks
	return marks[0].Label, true
}

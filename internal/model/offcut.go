package model

import "sort"

// Offcut is a bar remnant long enough to be kept for a later job.
type Offcut struct {
	ID        string   `json:"id"`
	Diameter  Diameter `json:"diameter"`
	Length    MM       `json:"length_mm"`
	SourceBar string   `json:"source_bar"` // ID of the bar it was cut from
}

// ToStockOption converts an offcut into a free, single-use stock option.
func (o Offcut) ToStockOption() StockOption {
	s := NewCustomStock(o.Diameter, o.Length.Meters(), 0)
	s.Available = 1
	return s
}

// DetectOffcuts returns the bars whose offcut is at least minLength.
// A zero minLength disables offcut tracking.
func DetectOffcuts(bars []Bar, minLength MM) []Offcut {
	if minLength <= 0 {
		return nil
	}
	var offcuts []Offcut
	for _, b := range bars {
		if b.Offcut >= minLength {
			offcuts = append(offcuts, Offcut{
				ID:        "OC-" + b.ID,
				Diameter:  b.Diameter,
				Length:    b.Offcut,
				SourceBar: b.ID,
			})
		}
	}
	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Length > offcuts[j].Length
	})
	return offcuts
}

// TotalOffcutLength returns the combined length of the offcuts.
func TotalOffcutLength(offcuts []Offcut) MM {
	var total MM
	for _, o := range offcuts {
		total += o.Length
	}
	return total
}

// OffcutStocks converts offcuts into stock options, merging equal lengths of
// the same diameter into one option with a combined availability.
func OffcutStocks(offcuts []Offcut) []StockOption {
	type key struct {
		dia    Diameter
		length MM
	}
	index := make(map[key]int)
	var stocks []StockOption
	for _, o := range offcuts {
		k := key{o.Diameter, o.Length}
		if i, ok := index[k]; ok {
			stocks[i].Available++
			continue
		}
		index[k] = len(stocks)
		stocks = append(stocks, o.ToStockOption())
	}
	return stocks
}

package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultDiameters are the bar sizes offered by default.
var DefaultDiameters = []Diameter{"#10", "#12", "#16", "#20", "#25", "#28", "#32", "#36", "#40", "#50"}

// DefaultMarketLengths are the standard purchasable bar lengths in metres.
var DefaultMarketLengths = []float64{6.0, 7.5, 9.0, 10.5, 12.0, 13.5, 15.0}

// ParseDiameter normalizes user input such as "10", "10mm", "Ø10" or "#10"
// into the "#10" form.
func ParseDiameter(s string) (Diameter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "#")
	v = strings.TrimPrefix(v, "ø")
	v = strings.TrimPrefix(v, "db")
	v = strings.TrimSuffix(v, "mm")
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("empty diameter")
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid diameter %q", s)
	}
	return Diameter("#" + strconv.FormatFloat(n, 'f', -1, 64)), nil
}

// Millimeters returns the nominal bar diameter, or false for non-numeric tags.
func (d Diameter) Millimeters() (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimPrefix(string(d), "#"), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// UnitWeight returns the nominal mass of the bar in kg per metre (d²/162).
func (d Diameter) UnitWeight() float64 {
	mm, ok := d.Millimeters()
	if !ok {
		return 0
	}
	return mm * mm / 162.0
}

// SortDiameters orders diameters by nominal size, non-numeric tags last.
func SortDiameters(ds []Diameter) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, aok := ds[i].Millimeters()
		b, bok := ds[j].Millimeters()
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		default:
			return ds[i] < ds[j]
		}
	})
}

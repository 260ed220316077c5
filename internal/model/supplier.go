package model

import "fmt"

// Supplier is a steel supplier's offer: the diameters and market lengths it
// stocks and its price per kg.
type Supplier struct {
	Name          string     `json:"name"`
	PricePerKg    float64    `json:"price_per_kg"`
	Diameters     []Diameter `json:"diameters"`
	MarketLengths []float64  `json:"market_lengths"` // metres
	BuiltIn       bool       `json:"-"`
}

// DefaultSupplier offers every default diameter in every default length.
func DefaultSupplier() Supplier {
	return Supplier{
		Name:          "Standard",
		PricePerKg:    DefaultPricePerKg,
		Diameters:     append([]Diameter(nil), DefaultDiameters...),
		MarketLengths: append([]float64(nil), DefaultMarketLengths...),
		BuiltIn:       true,
	}
}

// Validate checks the supplier has a name, a positive price and at least one
// diameter and length.
func (s Supplier) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("supplier has no name")
	}
	if s.PricePerKg <= 0 {
		return fmt.Errorf("supplier %q: price per kg must be positive", s.Name)
	}
	if len(s.Diameters) == 0 || len(s.MarketLengths) == 0 {
		return fmt.Errorf("supplier %q: no diameters or lengths", s.Name)
	}
	for _, l := range s.MarketLengths {
		if l <= 0 {
			return fmt.Errorf("supplier %q: invalid length %g", s.Name, l)
		}
	}
	return nil
}

// Catalog returns the supplier's stock options.
func (s Supplier) Catalog() []StockOption {
	return MarketCatalog(s.Diameters, s.MarketLengths, s.PricePerKg)
}

// FindSupplier returns the supplier with the given name, or nil.
func FindSupplier(suppliers []Supplier, name string) *Supplier {
	for i := range suppliers {
		if suppliers[i].Name == name {
			return &suppliers[i]
		}
	}
	return nil
}

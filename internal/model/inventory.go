package model

import "math"

// DefaultPricePerKg is the steel price used to seed the default catalog.
const DefaultPricePerKg = 1.0

// Inventory holds the user's saved stock catalog.
type Inventory struct {
	PricePerKg float64       `json:"price_per_kg"`
	Stocks     []StockOption `json:"stocks"`
}

// DefaultInventory returns a catalog of every default diameter in every
// market length, priced by bar mass.
func DefaultInventory() Inventory {
	return Inventory{
		PricePerKg: DefaultPricePerKg,
		Stocks:     MarketCatalog(DefaultDiameters, DefaultMarketLengths, DefaultPricePerKg),
	}
}

// MarketCatalog builds stock options for each diameter and length, with IDs
// from StockKey. The unit cost is the bar mass times the price per kg, rounded
// to cents. Diameters without a numeric size are priced per metre instead.
func MarketCatalog(diameters []Diameter, lengths []float64, pricePerKg float64) []StockOption {
	stocks := make([]StockOption, 0, len(diameters)*len(lengths))
	for _, d := range diameters {
		for _, l := range lengths {
			s := NewStockOption(d, l, BarPrice(d, l, pricePerKg))
			s.ID = StockKey(d, l)
			stocks = append(stocks, s)
		}
	}
	return stocks
}

// BuildCatalog returns the market catalog for the diameters plus the given
// custom stocks. Custom stocks are marked as such.
func BuildCatalog(diameters []Diameter, market []float64, custom []StockOption, pricePerKg float64) []StockOption {
	stocks := MarketCatalog(diameters, market, pricePerKg)
	for _, c := range custom {
		c.Custom = true
		stocks = append(stocks, c)
	}
	return stocks
}

// BarPrice returns the price of a bar of the given diameter and length.
func BarPrice(d Diameter, length, pricePerKg float64) float64 {
	w := d.UnitWeight()
	if w == 0 {
		w = 1
	}
	return math.Round(length*w*pricePerKg*100) / 100
}

// FindStockByID returns a pointer to the stock option with the given ID, or nil.
func (inv *Inventory) FindStockByID(id string) *StockOption {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == id {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// FindStock returns a pointer to the first stock option of the given
// diameter and length, or nil.
func (inv *Inventory) FindStock(d Diameter, length float64) *StockOption {
	want := ToMM(length)
	for i := range inv.Stocks {
		if inv.Stocks[i].Diameter == d && inv.Stocks[i].LengthMM() == want {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// ForDiameter returns the stock options of one diameter.
func (inv Inventory) ForDiameter(d Diameter) []StockOption {
	var out []StockOption
	for _, s := range inv.Stocks {
		if s.Diameter == d {
			out = append(out, s)
		}
	}
	return out
}

// Diameters returns the distinct diameters in the catalog, sorted by size.
func (inv Inventory) Diameters() []Diameter {
	seen := make(map[Diameter]bool)
	var ds []Diameter
	for _, s := range inv.Stocks {
		if !seen[s.Diameter] {
			seen[s.Diameter] = true
			ds = append(ds, s.Diameter)
		}
	}
	SortDiameters(ds)
	return ds
}

// AddStock appends a stock option unless one with the same diameter, length
// and cost already exists. It reports whether the option was added.
func (inv *Inventory) AddStock(s StockOption) bool {
	for _, existing := range inv.Stocks {
		if existing.Diameter == s.Diameter && existing.LengthMM() == s.LengthMM() &&
			existing.UnitCost == s.UnitCost && existing.Available == 0 && s.Available == 0 {
			return false
		}
	}
	inv.Stocks = append(inv.Stocks, s)
	return true
}

// RemoveStock deletes the stock option with the given ID.
func (inv *Inventory) RemoveStock(id string) bool {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == id {
			inv.Stocks = append(inv.Stocks[:i], inv.Stocks[i+1:]...)
			return true
		}
	}
	return false
}

// Select returns the options for the given diameters and lengths. Lengths
// not in the inventory are ignored. An empty filter selects everything.
func (inv Inventory) Select(diameters []Diameter, lengths []float64) []StockOption {
	wantDia := make(map[Diameter]bool, len(diameters))
	for _, d := range diameters {
		wantDia[d] = true
	}
	wantLen := make(map[MM]bool, len(lengths))
	for _, l := range lengths {
		wantLen[ToMM(l)] = true
	}
	var out []StockOption
	for _, s := range inv.Stocks {
		if len(wantDia) > 0 && !wantDia[s.Diameter] {
			continue
		}
		if len(wantLen) > 0 && !s.Custom && !wantLen[s.LengthMM()] {
			continue
		}
		out = append(out, s)
	}
	return out
}

package project

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/piwi3910/RebarCut/internal/model"
)

// DefaultInventoryPath returns the default file path for the stock catalog.
// This is located at ~/.rebarcut/catalog.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveInventory writes the stock catalog to path.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the stock catalog at path. The first load seeds the
// file with the default market catalog.
func LoadInventory(path string) (model.Inventory, error) {
	var inv model.Inventory
	if err := readJSON(path, &inv); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return model.Inventory{}, err
		}
		inv = model.DefaultInventory()
		return inv, SaveInventory(path, inv)
	}
	if inv.PricePerKg == 0 {
		inv.PricePerKg = model.DefaultPricePerKg
	}
	return inv, nil
}

// LoadOrCreateInventory loads the catalog from the default path.
// If the file does not exist, it creates one with the default market catalog.
func LoadOrCreateInventory() (model.Inventory, string, error) {
	path := DefaultInventoryPath()
	inv, err := LoadInventory(path)
	return inv, path, err
}

// ExportInventory exports the catalog to a user-specified JSON file.
func ExportInventory(path string, inv model.Inventory) error {
	return SaveInventory(path, inv)
}

// ImportInventory imports a catalog from a user-specified JSON file,
// merging it with the existing one. Duplicate IDs and duplicate unlimited
// (diameter, length, cost) entries are skipped. It returns the merged catalog
// and the number of stock options added.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, int, error) {
	var imported model.Inventory
	if err := readJSON(path, &imported); err != nil {
		return existing, 0, err
	}

	stockIDs := make(map[string]bool, len(existing.Stocks))
	for _, s := range existing.Stocks {
		stockIDs[s.ID] = true
	}

	added := 0
	for _, s := range imported.Stocks {
		if stockIDs[s.ID] {
			continue
		}
		if existing.AddStock(s) {
			stockIDs[s.ID] = true
			added++
		}
	}
	return existing, added, nil
}

// AppendOffcuts adds a plan's reusable offcuts to the catalog as free,
// single-use custom stock so a later job can consume them first.
func AppendOffcuts(inv model.Inventory, offcuts []model.Offcut) (model.Inventory, int) {
	added := 0
	for _, s := range model.OffcutStocks(offcuts) {
		if inv.AddStock(s) {
			added++
		}
	}
	return inv, added
}

// ConsumeOffcuts removes offcut stock that a plan used up. Offcut stock is
// the zero-cost limited custom stock appended by AppendOffcuts; its
// availability is reduced by the bars bought and the entry dropped once
// exhausted. It returns the number of bars consumed.
func ConsumeOffcuts(inv model.Inventory, plan model.CuttingPlan) (model.Inventory, int) {
	used := make(map[string]int)
	for _, line := range plan.BuyList() {
		if line.Stock.Custom && line.Stock.UnitCost == 0 && line.Stock.Limited() {
			used[line.Stock.ID] += line.Count
		}
	}
	if len(used) == 0 {
		return inv, 0
	}

	consumed := 0
	kept := inv.Stocks[:0:0]
	for _, s := range inv.Stocks {
		if n, ok := used[s.ID]; ok {
			if n > s.Available {
				n = s.Available
			}
			s.Available -= n
			consumed += n
			if s.Available == 0 {
				continue
			}
		}
		kept = append(kept, s)
	}
	inv.Stocks = kept
	return inv, consumed
}

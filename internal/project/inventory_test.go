package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/RebarCut/internal/model"
)

func TestDefaultInventoryPath(t *testing.T) {
	path := DefaultInventoryPath()
	if filepath.Base(path) != "catalog.json" {
		t.Errorf("expected filename catalog.json, got %s", filepath.Base(path))
	}
	if dir := filepath.Base(filepath.Dir(path)); dir != ".rebarcut" {
		t.Errorf("expected parent dir .rebarcut, got %s", dir)
	}
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	custom := model.NewCustomStock("#16", 8.4, 14.5)
	custom.Available = 3
	inv := model.Inventory{
		PricePerKg: 1.1,
		Stocks:     []model.StockOption{model.NewStockOption("#16", 12, 20.86), custom},
	}

	if err := SaveInventory(path, inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}
	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}

	if loaded.PricePerKg != 1.1 {
		t.Errorf("expected price 1.1, got %f", loaded.PricePerKg)
	}
	if len(loaded.Stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(loaded.Stocks))
	}
	got := loaded.FindStockByID(custom.ID)
	if got == nil || !got.Custom || got.Available != 3 || got.Length != 8.4 {
		t.Errorf("custom stock not preserved: %+v", got)
	}
}

func TestLoadInventoryCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "catalog.json")

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	want := len(model.DefaultDiameters) * len(model.DefaultMarketLengths)
	if len(inv.Stocks) != want {
		t.Errorf("expected %d default stocks, got %d", want, len(inv.Stocks))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default catalog was not saved: %v", err)
	}
}

func TestLoadInventoryInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadInventory(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportInventoryMerges(t *testing.T) {
	dir := t.TempDir()

	shared := model.NewStockOption("#10", 6, 3.7)
	existing := model.Inventory{PricePerKg: 1, Stocks: []model.StockOption{shared}}

	sameShape := model.NewStockOption("#10", 6, 3.7) // new ID, same stock
	imported := model.Inventory{Stocks: []model.StockOption{
		shared,
		sameShape,
		model.NewStockOption("#10", 9, 5.55),
	}}
	importPath := filepath.Join(dir, "import.json")
	data, _ := json.MarshalIndent(imported, "", "  ")
	if err := os.WriteFile(importPath, data, 0644); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}

	merged, added, err := ImportInventory(importPath, existing)
	if err != nil {
		t.Fatalf("ImportInventory failed: %v", err)
	}
	if added != 1 {
		t.Errorf("expected 1 stock added, got %d", added)
	}
	if len(merged.Stocks) != 2 {
		t.Errorf("expected 2 stocks after merge, got %d", len(merged.Stocks))
	}
}

func TestImportInventoryMissingFile(t *testing.T) {
	existing := model.DefaultInventory()
	merged, added, err := ImportInventory(filepath.Join(t.TempDir(), "none.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if added != 0 || len(merged.Stocks) != len(existing.Stocks) {
		t.Error("existing catalog should be returned unchanged")
	}
}

func TestAppendAndConsumeOffcuts(t *testing.T) {
	inv := model.Inventory{Stocks: []model.StockOption{model.NewStockOption("#12", 12, 10.67)}}
	offcuts := []model.Offcut{
		{ID: "OC-#12-001", Diameter: "#12", Length: 2500, SourceBar: "#12-001"},
		{ID: "OC-#12-002", Diameter: "#12", Length: 2500, SourceBar: "#12-002"},
		{ID: "OC-#12-003", Diameter: "#12", Length: 1800, SourceBar: "#12-003"},
	}

	inv, added := AppendOffcuts(inv, offcuts)
	if added != 2 {
		t.Fatalf("expected 2 offcut stocks (equal lengths merged), got %d", added)
	}
	if len(inv.Stocks) != 3 {
		t.Fatalf("expected 3 stocks, got %d", len(inv.Stocks))
	}
	oc := inv.FindStock("#12", 2.5)
	if oc == nil || oc.Available != 2 || oc.UnitCost != 0 || !oc.Custom {
		t.Fatalf("unexpected offcut stock: %+v", oc)
	}

	plan := model.CuttingPlan{Diameters: []model.DiameterPlan{{
		Diameter: "#12",
		BuyList: []model.BuyLine{
			{Stock: *oc, Count: 1},
			{Stock: *inv.FindStock("#12", 1.8), Count: 1},
			{Stock: inv.Stocks[0], Count: 4, Cost: 42.68},
		},
	}}}

	inv, consumed := ConsumeOffcuts(inv, plan)
	if consumed != 2 {
		t.Errorf("expected 2 offcut bars consumed, got %d", consumed)
	}
	if len(inv.Stocks) != 2 {
		t.Fatalf("expected exhausted offcut removed, got %d stocks", len(inv.Stocks))
	}
	if oc := inv.FindStock("#12", 2.5); oc == nil || oc.Available != 1 {
		t.Errorf("expected one 2.5m offcut left, got %+v", oc)
	}
	if inv.FindStock("#12", 1.8) != nil {
		t.Error("1.8m offcut should be gone")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/piwi3910/RebarCut/internal/model"
	"github.com/piwi3910/RebarCut/internal/project"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const sampleJob = `
job:
  name: Footing F1
  cut_list: cuts.csv
  requirements:
    - label: S1
      diameter: "12"
      length: 3.2
      quantity: 6
catalog:
  source: market
  price_per_kg: 1.2
  diameters: ["#10", "12mm"]
  market_lengths: [6, 12]
  custom:
    - diameter: "#10"
      length: 8.4
      unit_cost: 5.5
      available: 2
options:
  waste_threshold: 0.1
  time_budget: 5s
  kerf_width: 3
  strategy: column
logging:
  level: debug
  format: console
output:
  dir: out
  formats: [xlsx, labels]
`

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfiguration_FullJob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cuts.csv", "Mark,Diameter,Length,Qty\nB1,10,2.095,16\nB2,10,1.695,12\n")
	path := writeFile(t, dir, "job.yaml", sampleJob)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Job.Name != "Footing F1" {
		t.Errorf("Job.Name = %q", cfg.Job.Name)
	}
	if cfg.Options.WasteThreshold != 0.1 || cfg.Options.TimeBudget != 5*time.Second || cfg.Options.KerfWidth != 3 {
		t.Errorf("unexpected options: %+v", cfg.Options)
	}
	if cfg.Options.Strategy != model.StrategyColumn {
		t.Errorf("Strategy = %q, want column", cfg.Options.Strategy)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Options.MaxPatterns != model.DefaultOptions().MaxPatterns || !cfg.Options.AllowCustomStock {
		t.Errorf("defaults not preserved: %+v", cfg.Options)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}

	reqs, warnings, err := cfg.Requirements()
	if err != nil {
		t.Fatalf("Requirements() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[2].Diameter != "#12" || reqs[2].Length != 3.2 || reqs[2].Quantity != 6 {
		t.Errorf("unexpected inline requirement: %+v", reqs[2])
	}

	stocks, err := cfg.StockCatalog()
	if err != nil {
		t.Fatalf("StockCatalog() error = %v", err)
	}
	// 2 diameters x 2 lengths + 1 custom
	if len(stocks) != 5 {
		t.Fatalf("expected 5 stocks, got %d", len(stocks))
	}
	custom := stocks[4]
	if !custom.Custom || custom.Available != 2 || custom.Length != 8.4 {
		t.Errorf("unexpected custom stock: %+v", custom)
	}
	if stocks[0].UnitCost != model.BarPrice("#10", 6, 1.2) {
		t.Errorf("market stock not priced at 1.2/kg: %+v", stocks[0])
	}

	paths := cfg.ReportPaths()
	if got := paths["xlsx"]; got != filepath.Join(dir, "out", "Footing_F1.xlsx") {
		t.Errorf("xlsx path = %s", got)
	}
	if got := paths["labels"]; got != filepath.Join(dir, "out", "Footing_F1_tags.pdf") {
		t.Errorf("labels path = %s", got)
	}
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no demand", "job:\n  name: x\n", "neither a cut_list nor requirements"},
		{"bad diameter", "job:\n  requirements:\n    - diameter: abc\n      length: 1\n      quantity: 1\n", "requirement 1"},
		{"bad source", "job:\n  cut_list: a.csv\ncatalog:\n  source: warehouse\n", "unknown catalog source"},
		{"supplier without name", "job:\n  cut_list: a.csv\ncatalog:\n  source: supplier\n", "needs a supplier name"},
		{"bad strategy", "job:\n  cut_list: a.csv\noptions:\n  strategy: greedy\n", "unknown strategy"},
		{"bad format", "job:\n  cut_list: a.csv\noutput:\n  formats: [docx]\n", "unknown output format"},
		{"bad log level", "job:\n  cut_list: a.csv\nlogging:\n  level: loud\n", "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "job.yaml", tt.body)
			_, err := LoadConfiguration(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestRequirements_CutListErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "job.yaml", "job:\n  cut_list: missing.csv\n")
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if _, _, err := cfg.Requirements(); err == nil {
		t.Fatal("expected error for missing cut list")
	}
}

func TestStockCatalog_Inventory(t *testing.T) {
	dir := t.TempDir()
	inv := model.Inventory{PricePerKg: 1, Stocks: []model.StockOption{
		model.NewStockOption("#16", 6, 9.48),
		model.NewStockOption("#16", 12, 18.96),
		model.NewStockOption("#20", 12, 29.63),
	}}
	if err := project.SaveInventory(filepath.Join(dir, "catalog.json"), inv); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, dir, "job.yaml", `
job:
  requirements:
    - {label: A, diameter: "16", length: 2, quantity: 3}
catalog:
  source: inventory
  file: catalog.json
  diameters: ["16"]
  market_lengths: [12]
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	stocks, err := cfg.StockCatalog()
	if err != nil {
		t.Fatalf("StockCatalog() error = %v", err)
	}
	if len(stocks) != 1 || stocks[0].Diameter != "#16" || stocks[0].Length != 12 {
		t.Errorf("unexpected stocks: %+v", stocks)
	}
}

func TestStockCatalog_Supplier(t *testing.T) {
	dir := t.TempDir()
	acme := model.Supplier{Name: "Acme", PricePerKg: 2, Diameters: []model.Diameter{"#10", "#12"}, MarketLengths: []float64{6, 9}}
	if err := project.SaveSuppliers(filepath.Join(dir, "suppliers.json"), []model.Supplier{acme}); err != nil {
		t.Fatal(err)
	}

	body := "job:\n  cut_list: a.csv\ncatalog:\n  source: supplier\n  file: suppliers.json\n  supplier: %s\n"
	path := writeFile(t, dir, "job.yaml", strings.Replace(body, "%s", "Acme", 1))
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	stocks, err := cfg.StockCatalog()
	if err != nil {
		t.Fatalf("StockCatalog() error = %v", err)
	}
	if len(stocks) != 4 {
		t.Errorf("expected 4 stocks, got %d", len(stocks))
	}

	path = writeFile(t, dir, "job2.yaml", strings.Replace(body, "%s", "Nobody", 1))
	cfg, err = LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if _, err := cfg.StockCatalog(); err == nil {
		t.Error("expected error for unknown supplier")
	}
}

func TestReportPaths_Defaults(t *testing.T) {
	cfg := Default()
	paths := cfg.ReportPaths()
	if got := paths["xlsx"]; got != "rebarcut.xlsx" {
		t.Errorf("default xlsx path = %s", got)
	}
}

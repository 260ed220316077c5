package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/RebarCut/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultKerfWidth = 3.0

	store := model.NewTemplateStore()
	store.Add(model.NewJobTemplate("Footing F1", "", []model.CutRequirement{
		model.NewCutRequirement("F1-B", "#16", 2.4, 12),
	}, nil, model.DefaultOptions()))

	custom := model.Supplier{Name: "Acme", PricePerKg: 1.2, Diameters: []model.Diameter{"#10"}, MarketLengths: []float64{6}}

	backup := BackupData{
		Config:    cfg,
		Inventory: model.DefaultInventory(),
		Templates: store,
		Suppliers: []model.Supplier{model.DefaultSupplier(), custom},
	}
	if err := ExportAllData(path, backup); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	loaded, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if loaded.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, loaded.Version)
	}
	if loaded.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if loaded.Config.DefaultKerfWidth != 3.0 {
		t.Errorf("expected DefaultKerfWidth=3.0, got %f", loaded.Config.DefaultKerfWidth)
	}
	if len(loaded.Inventory.Stocks) != len(model.DefaultInventory().Stocks) {
		t.Errorf("expected %d stocks, got %d", len(model.DefaultInventory().Stocks), len(loaded.Inventory.Stocks))
	}
	if tmpl := loaded.Templates.FindByName("Footing F1"); tmpl == nil || len(tmpl.Requirements) != 1 {
		t.Errorf("template not restored: %+v", loaded.Templates)
	}
	if len(loaded.Suppliers) != 1 || loaded.Suppliers[0].Name != "Acme" {
		t.Errorf("expected only the custom supplier, got %+v", loaded.Suppliers)
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noversion.json")
	data := []byte(`{"config":{"default_kerf_width":3}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestExportAllDataCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "backup.json")

	if err := ExportAllData(path, BackupData{Config: model.DefaultAppConfig()}); err != nil {
		t.Fatalf("ExportAllData should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("backup file was not created")
	}
}

func TestImportAllDataNilCollections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")
	data := []byte(`{"version":"1.0.0","created_at":"2025-01-01T00:00:00Z","config":{"recent_jobs":null}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.RecentJobs == nil {
		t.Error("RecentJobs should not be nil after import")
	}
	if backup.Templates.Templates == nil {
		t.Error("Templates should not be nil after import")
	}
}

package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type storeRecord struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Count int     `json:"count"`
}

func TestWriteJSON_CreatesDirectoriesAndLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deeper")
	path := filepath.Join(dir, "record.json")

	if err := writeJSON(path, storeRecord{Name: "yard", Price: 1.25, Count: 3}); err != nil {
		t.Fatalf("writeJSON failed: %v", err)
	}
	if err := writeJSON(path, storeRecord{Name: "yard", Price: 1.5, Count: 4}); err != nil {
		t.Fatalf("second writeJSON failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "record.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only record.json in %s, got %v", dir, names)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"price\": 1.5") {
		t.Errorf("expected indented JSON with the latest value, got %s", data)
	}
}

func TestReadJSON_KeepsValuesMissingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	if err := os.WriteFile(path, []byte(`{"name": "yard"}`), 0644); err != nil {
		t.Fatal(err)
	}

	got := storeRecord{Price: 2, Count: 7}
	if err := readJSON(path, &got); err != nil {
		t.Fatalf("readJSON failed: %v", err)
	}
	want := storeRecord{Name: "yard", Price: 2, Count: 7}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestReadJSON_Errors(t *testing.T) {
	dir := t.TempDir()

	var rec storeRecord
	err := readJSON(filepath.Join(dir, "missing.json"), &rec)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist for a missing file, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	err = readJSON(bad, &rec)
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("malformed JSON must not look like a missing file: %v", err)
	}
	if !strings.Contains(err.Error(), bad) {
		t.Errorf("expected the error to name %s, got %v", bad, err)
	}
}

package project

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/piwi3910/RebarCut/internal/model"
)

// DefaultSuppliersPath returns the default file path for saved suppliers.
func DefaultSuppliersPath() string {
	return filepath.Join(DefaultConfigDir(), "suppliers.json")
}

// SaveSuppliers saves user-defined suppliers to a JSON file. Built-in
// suppliers are not written.
func SaveSuppliers(path string, suppliers []model.Supplier) error {
	custom := make([]model.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if !s.BuiltIn {
			custom = append(custom, s)
		}
	}
	return writeJSON(path, custom)
}

// LoadSuppliers returns the built-in supplier followed by the ones saved at
// path. A missing file yields only the built-in supplier.
func LoadSuppliers(path string) ([]model.Supplier, error) {
	suppliers := []model.Supplier{model.DefaultSupplier()}

	var saved []model.Supplier
	if err := readJSON(path, &saved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return suppliers, nil
		}
		return nil, err
	}
	for _, s := range saved {
		if model.FindSupplier(suppliers, s.Name) != nil {
			continue
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}

// ExportSupplier writes a single supplier to a JSON file for sharing.
func ExportSupplier(path string, s model.Supplier) error {
	return writeJSON(path, s)
}

// ImportSupplier reads and validates a single supplier from a JSON file.
func ImportSupplier(path string) (model.Supplier, error) {
	var s model.Supplier
	if err := readJSON(path, &s); err != nil {
		return model.Supplier{}, err
	}
	if err := s.Validate(); err != nil {
		return model.Supplier{}, err
	}
	return s, nil
}

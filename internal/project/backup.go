package project

import (
	"fmt"
	"time"

	"github.com/piwi3910/RebarCut/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Config    model.AppConfig     `json:"config"`
	Inventory model.Inventory     `json:"inventory"`
	Templates model.TemplateStore `json:"templates"`
	Suppliers []model.Supplier    `json:"suppliers,omitempty"`
}

// ExportAllData exports the config, stock catalog, job templates and custom
// suppliers to a single JSON file at the specified path.
func ExportAllData(exportPath string, backup BackupData) error {
	backup.Version = BackupVersion
	backup.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	custom := backup.Suppliers[:0:0]
	for _, s := range backup.Suppliers {
		if !s.BuiltIn {
			custom = append(custom, s)
		}
	}
	backup.Suppliers = custom

	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying it.
func ImportAllData(importPath string) (BackupData, error) {
	var backup BackupData
	if err := readJSON(importPath, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentJobs == nil {
		backup.Config.RecentJobs = []string{}
	}
	if backup.Templates.Templates == nil {
		backup.Templates = model.NewTemplateStore()
	}
	return backup, nil
}

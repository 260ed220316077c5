package export

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/RebarCut/internal/model"
)

// WriteYAML encodes the plan report as YAML.
func WriteYAML(w io.Writer, plan model.CuttingPlan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(BuildReport(plan)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// ExportYAML writes the plan report to a YAML file.
func ExportYAML(path string, plan model.CuttingPlan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteYAML(f, plan); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

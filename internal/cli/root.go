// Package cli implements the rebarcut command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/engine"
	"github.com/piwi3910/RebarCut/internal/project"
)

var (
	logLevel    string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:   "rebarcut",
	Short: "Rebar cutting stock optimizer",
	Long: `rebarcut - minimum-cost rebar purchasing and cutting plans

Given a cut list (bar marks with diameter, length and quantity) and a
catalog of purchasable stock lengths, rebarcut decides how many bars of
each length to buy and how to cut every bar, minimizing purchase cost
and waste.

Cut lists are read from CSV, Excel or DXF files, or from a YAML job file.
Plans are written as Excel workbooks, PDF cut sheets, QR bar tags, DXF
diagrams, YAML or a PNG usage chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Stock catalog file (default ~/.rebarcut/catalog.json)")
}

// inventoryPath returns the --catalog file or the default catalog location.
func inventoryPath() string {
	if catalogPath != "" {
		return catalogPath
	}
	return project.DefaultInventoryPath()
}

// exitCode maps optimization failures to distinct process exit codes.
func exitCode(err error) int {
	var oe *engine.OptimizationError
	if !errors.As(err, &oe) {
		return 1
	}
	switch oe.Kind {
	case engine.KindInvalidDemand, engine.KindNoFeasiblePattern:
		return 2
	case engine.KindInfeasible:
		return 3
	case engine.KindSolver:
		return 4
	case engine.KindCancelled:
		return 130
	default:
		return 1
	}
}

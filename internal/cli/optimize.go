package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/RebarCut/internal/engine"
	"github.com/piwi3910/RebarCut/internal/export"
	"github.com/piwi3910/RebarCut/internal/model"
	"github.com/piwi3910/RebarCut/internal/project"
)

var (
	optimizeFlags      jobFlags
	optimizeSaveOffcut bool
	optimizeQuiet      bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [job.yaml | cutlist.csv | cutlist.xlsx | takeoff.dxf]",
	Short: "Compute a purchase and cutting plan",
	Long: `Compute the minimum-cost set of stock bars to buy and how to cut each one.

The input is either a YAML job file (cut list, catalog, options, logging and
output settings) or a bare cut list file, in which case the saved defaults
from ~/.rebarcut/config.json and the market catalog are used.

Examples:
  # Optimize a job file, writing the reports it lists
  rebarcut optimize footing.yaml

  # Optimize a CSV cut list against 6m and 12m bars with a 3mm kerf
  rebarcut optimize cuts.csv --lengths 6,12 --kerf 3 -f xlsx,pdf -o reports

  # Buy from the saved catalog and keep the offcuts for the next job
  rebarcut optimize cuts.csv --source inventory --save-offcuts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeFlags.register(optimizeCmd, true)
	optimizeCmd.Flags().BoolVar(&optimizeSaveOffcut, "save-offcuts", false, "Add reusable offcuts to the catalog and remove used ones")
	optimizeCmd.Flags().BoolVarP(&optimizeQuiet, "quiet", "q", false, "Only print the summary")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	j, err := loadJob(cmd, args, &optimizeFlags)
	if err != nil {
		return err
	}

	logger, err := initializeLogger(j.logging, logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	for _, w := range j.warnings {
		logger.Warn("cut list warning", zap.String("op", "optimize"), zap.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	plan, err := engine.New(j.options, logger).Optimize(ctx, j.requirements, j.catalog)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, j.name, plan)
	if !optimizeQuiet {
		printPurchase(out, plan)
		printCutting(out, plan)
	}

	written, err := writeReports(j.reports, plan, j.options)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	if optimizeSaveOffcut {
		if err := updateCatalogOffcuts(out, plan); err != nil {
			return err
		}
	}

	rememberJob(j.source, logger)
	return nil
}

// writeReports writes the plan in every requested format and returns the
// written paths in a stable order.
func writeReports(reports map[string]string, plan model.CuttingPlan, opts model.Options) ([]string, error) {
	formats := make([]string, 0, len(reports))
	for f := range reports {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	var written []string
	for _, f := range formats {
		path := reports[f]
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("failed to create output directory: %w", err)
		}

		var err error
		switch f {
		case "xlsx":
			err = export.ExportExcel(path, plan)
		case "pdf":
			err = export.ExportPDF(path, plan, opts)
		case "labels":
			err = export.ExportLabels(path, plan)
		case "dxf":
			err = export.ExportDXF(path, plan)
		case "yaml":
			err = export.ExportYAML(path, plan)
		case "png":
			err = export.ExportChart(path, plan)
		default:
			err = fmt.Errorf("unknown report format %q", f)
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s report: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func updateCatalogOffcuts(out io.Writer, plan model.CuttingPlan) error {
	path := inventoryPath()
	inv, err := project.LoadInventory(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	inv, consumed := project.ConsumeOffcuts(inv, plan)
	inv, added := project.AppendOffcuts(inv, plan.Offcuts())
	if err := project.SaveInventory(path, inv); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	fmt.Fprintf(out, "Catalog %s: %d offcut bars used, %d offcut stocks added\n", path, consumed, added)
	return nil
}

// rememberJob records the job in the recent list. Failures only get logged.
func rememberJob(source string, logger *zap.Logger) {
	if source == "" {
		return
	}
	if abs, err := filepath.Abs(source); err == nil && filepath.Ext(source) != "" {
		source = abs
	}
	path := project.DefaultConfigPath()
	cfg, err := project.LoadAppConfig(path)
	if err != nil {
		logger.Debug("app config not updated", zap.String("op", "optimize"), zap.Error(err))
		return
	}
	cfg.AddRecentJob(source)
	if err := project.SaveAppConfig(path, cfg); err != nil {
		logger.Debug("app config not updated", zap.String("op", "optimize"), zap.Error(err))
	}
}

func printSummary(w io.Writer, name string, plan model.CuttingPlan) {
	report := export.BuildReport(plan)
	if name != "" {
		fmt.Fprintf(w, "Job: %s\n", name)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Bars purchased:\t%d\n", report.Summary.Bars)
	fmt.Fprintf(tw, "Total cost:\t%s\n", report.Summary.TotalCost)
	fmt.Fprintf(tw, "LP lower bound:\t%s\n", report.Summary.LowerBound)
	fmt.Fprintf(tw, "Waste:\t%.3fm (%.1f%%)\n", report.Summary.Waste, report.Summary.WastePercent)
	fmt.Fprintf(tw, "Surplus pieces:\t%d\n", report.Summary.Surplus)
	tw.Flush()
	fmt.Fprintln(w)
}

func printPurchase(w io.Writer, plan model.CuttingPlan) {
	report := export.BuildReport(plan)
	fmt.Fprintln(w, "Purchase list:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "Diameter")
	for _, l := range report.Lengths {
		fmt.Fprintf(tw, "\t%gm", l)
	}
	fmt.Fprintln(tw, "\tBars\tCost")
	for _, row := range report.Purchase {
		fmt.Fprint(tw, row.Diameter)
		for _, c := range row.Counts {
			if c == 0 {
				fmt.Fprint(tw, "\t-")
			} else {
				fmt.Fprintf(tw, "\t%d", c)
			}
		}
		fmt.Fprintf(tw, "\t%d\t%s\n", row.Bars, row.Cost)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func printCutting(w io.Writer, plan model.CuttingPlan) {
	fmt.Fprintln(w, "Cutting plan:")
	for _, row := range export.BuildReport(plan).Cutting {
		fmt.Fprintf(w, "  %s\n", row.Instruction)
	}
	fmt.Fprintln(w)
}

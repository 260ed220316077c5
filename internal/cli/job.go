package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/config"
	"github.com/piwi3910/RebarCut/internal/model"
	"github.com/piwi3910/RebarCut/internal/project"
)

// job is everything one optimize or compare run needs.
type job struct {
	name         string
	source       string // Job file, cut list or template name
	requirements []model.CutRequirement
	catalog      []model.StockOption
	options      model.Options
	logging      config.LoggingConfig
	reports      map[string]string
	warnings     []string
}

// jobFlags are the overrides shared by optimize, compare and estimate.
type jobFlags struct {
	template       string
	outDir         string
	formats        []string
	wasteThreshold float64
	timeBudget     time.Duration
	kerf           float64
	noCustom       bool
	strategy       string
	workers        int
	source         string
	supplier       string
	diameters      []string
	lengths        []float64
	minOffcut      float64
	residualPasses int
}

func (f *jobFlags) register(cmd *cobra.Command, withOutput bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.template, "template", "t", "", "Run a saved job template instead of a file")
	flags.Float64Var(&f.wasteThreshold, "waste-threshold", 0, "Max overshoot ratio before rounding repair (e.g. 0.05)")
	flags.DurationVar(&f.timeBudget, "time-budget", 0, "Optimization time limit (e.g. 30s)")
	flags.Float64VarP(&f.kerf, "kerf", "k", 0, "Saw/shear loss per cut (mm)")
	flags.BoolVar(&f.noCustom, "no-custom", false, "Ignore custom stock lengths")
	flags.StringVar(&f.strategy, "strategy", "", "Pattern strategy: auto, enumerate, column")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Diameters optimized in parallel")
	flags.StringVar(&f.source, "source", "", "Catalog source: market, inventory, supplier")
	flags.StringVar(&f.supplier, "supplier", "", "Supplier name when --source=supplier")
	flags.StringSliceVarP(&f.diameters, "diameters", "d", nil, "Restrict the catalog to these diameters")
	flags.Float64SliceVarP(&f.lengths, "lengths", "l", nil, "Restrict the catalog to these stock lengths (m)")
	flags.Float64Var(&f.minOffcut, "min-offcut", 0, "Smallest reusable offcut (m)")
	flags.IntVar(&f.residualPasses, "residual-passes", 0, "Re-solve rounds after rounding (0 disables)")
	if withOutput {
		flags.StringVarP(&f.outDir, "out", "o", "", "Report output directory")
		flags.StringSliceVarP(&f.formats, "format", "f", nil, "Report formats: "+strings.Join(config.ReportFormats, ", "))
	}
}

// loadJob builds a job from a template, a YAML job file or a bare cut list,
// then applies the command line overrides.
func loadJob(cmd *cobra.Command, args []string, f *jobFlags) (*job, error) {
	if f.template != "" {
		return loadTemplateJob(cmd, f)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("expected a job file or cut list, or --template")
	}
	path := args[0]

	var cfg *config.Configuration
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		loaded, err := config.LoadConfiguration(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		d := config.Default()
		cfg = &d
		cfg.Job.CutList = path
		cfg.Job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
		if err != nil {
			return nil, fmt.Errorf("failed to load app config: %w", err)
		}
		appCfg.ApplyToOptions(&cfg.Options)
		cfg.Output.Dir = appCfg.OutputDir
	}

	if err := applyConfigFlags(cmd, cfg, f); err != nil {
		return nil, err
	}

	reqs, warnings, err := cfg.Requirements()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.StockCatalog()
	if err != nil {
		return nil, err
	}

	j := &job{
		name:         cfg.Job.Name,
		source:       path,
		requirements: reqs,
		catalog:      catalog,
		options:      cfg.Options,
		logging:      cfg.Logging,
		reports:      cfg.ReportPaths(),
		warnings:     warnings,
	}
	applyOptionFlags(cmd, &j.options, f)
	return j, nil
}

func loadTemplateJob(cmd *cobra.Command, f *jobFlags) (*job, error) {
	store, err := project.LoadDefaultTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	tmpl := store.FindByName(f.template)
	if tmpl == nil {
		tmpl = store.FindByID(f.template)
	}
	if tmpl == nil {
		return nil, fmt.Errorf("no template named %q", f.template)
	}

	reqs, stocks, opts := tmpl.Instantiate()
	cfg := config.Default()
	cfg.Job.Name = tmpl.Name
	if err := applyConfigFlags(cmd, &cfg, f); err != nil {
		return nil, err
	}

	j := &job{
		name:         tmpl.Name,
		source:       "template:" + tmpl.Name,
		requirements: reqs,
		catalog:      stocks,
		options:      opts,
		reports:      cfg.ReportPaths(),
	}
	applyOptionFlags(cmd, &j.options, f)
	return j, nil
}

// applyConfigFlags overrides the catalog and output sections.
func applyConfigFlags(cmd *cobra.Command, cfg *config.Configuration, f *jobFlags) error {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Catalog.Source = f.source
	}
	if flags.Changed("supplier") {
		cfg.Catalog.Supplier = f.supplier
		if !flags.Changed("source") {
			cfg.Catalog.Source = config.SourceSupplier
		}
	}
	if cfg.Catalog.Source == config.SourceInventory && catalogPath != "" {
		cfg.Catalog.File = catalogPath
	}
	if flags.Changed("diameters") {
		cfg.Catalog.Diameters = f.diameters
	}
	if flags.Changed("lengths") {
		cfg.Catalog.MarketLengths = f.lengths
	}
	if flags.Lookup("out") != nil && flags.Changed("out") {
		cfg.Output.Dir = f.outDir
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		cfg.Output.Formats = f.formats
	}
	if problems := cfg.ValidateConfiguration(); len(problems) > 0 {
		// A template carries its own demand
		if f.template == "" || len(problems) > 1 || !strings.Contains(problems[0], "cut_list") {
			return fmt.Errorf("invalid job: %s", strings.Join(problems, "; "))
		}
	}
	return nil
}

// applyOptionFlags overrides optimizer options set on the command line.
func applyOptionFlags(cmd *cobra.Command, o *model.Options, f *jobFlags) {
	flags := cmd.Flags()
	if flags.Changed("waste-threshold") {
		o.WasteThreshold = f.wasteThreshold
	}
	if flags.Changed("time-budget") {
		o.TimeBudget = f.timeBudget
	}
	if flags.Changed("kerf") {
		o.KerfWidth = f.kerf
	}
	if flags.Changed("no-custom") {
		o.AllowCustomStock = !f.noCustom
	}
	if flags.Changed("strategy") {
		o.Strategy = model.Strategy(f.strategy)
	}
	if flags.Changed("workers") {
		o.Workers = f.workers
	}
	if flags.Changed("min-offcut") {
		o.MinReusableOffcut = f.minOffcut
	}
	if flags.Changed("residual-passes") {
		o.ResidualPasses = f.residualPasses
	}
}

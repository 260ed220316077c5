// Package config loads RebarCut job files: the cut list, the stock catalog to
// buy from, optimizer options, logging and report output.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/piwi3910/RebarCut/internal/importer"
	"github.com/piwi3910/RebarCut/internal/model"
	"github.com/piwi3910/RebarCut/internal/project"
)

// Catalog sources.
const (
	SourceMarket    = "market"    // Default diameters x market lengths priced per kg
	SourceInventory = "inventory" // The persisted catalog (~/.rebarcut/catalog.json)
	SourceSupplier  = "supplier"  // A saved supplier's offer
)

// Report formats accepted in output.formats.
var ReportFormats = []string{"xlsx", "pdf", "labels", "dxf", "yaml", "png"}

// Configuration holds a complete job.
type Configuration struct {
	Job     JobConfig
	Catalog CatalogConfig
	Options model.Options
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`

	dir string // Directory of the job file, for relative paths
}

// JobConfig names the job and lists what to cut.
type JobConfig struct {
	Name         string
	CutList      string              `mapstructure:"cut_list"` // CSV, Excel or DXF file
	Requirements []RequirementConfig // Inline requirements, added to the cut list
}

// RequirementConfig is one inline cut requirement.
type RequirementConfig struct {
	Label    string
	Diameter string
	Length   float64 // metres
	Quantity int
}

// CatalogConfig selects the stock options to buy from.
type CatalogConfig struct {
	Source        string
	File          string    // Catalog or suppliers file, default under ~/.rebarcut
	Supplier      string    // Supplier name when Source is "supplier"
	PricePerKg    float64   `mapstructure:"price_per_kg"`
	Diameters     []string  // Restrict to these diameters, empty = all
	MarketLengths []float64 `mapstructure:"market_lengths"` // Restrict to these lengths, empty = all
	Custom        []StockConfig
}

// StockConfig is a custom stock length.
type StockConfig struct {
	Diameter  string
	Length    float64 // metres
	UnitCost  float64 `mapstructure:"unit_cost"`
	Available int     // 0 = unlimited
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds report output options.
type OutputConfig struct {
	Dir      string
	BaseName string `mapstructure:"base_name"`
	Formats  []string
}

// Default returns a configuration with default options and output settings.
func Default() Configuration {
	return Configuration{
		Catalog: CatalogConfig{Source: SourceMarket, PricePerKg: model.DefaultPricePerKg},
		Options: model.DefaultOptions(),
		Output:  OutputConfig{Dir: ".", Formats: []string{"xlsx"}},
		dir:     ".",
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// job there on top of Default().
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix("REBARCUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	configuration := Default()
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.dir = filepath.Dir(configPath)

	if problems := configuration.ValidateConfiguration(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration %s: %s", configPath, strings.Join(problems, "; "))
	}
	return &configuration, nil
}

// ValidateConfiguration checks the structure of the job and returns one
// message per problem. Demand quantities and lengths are left to the
// optimizer, which reports them as invalid demand.
func (c *Configuration) ValidateConfiguration() []string {
	var problems []string

	if c.Job.CutList == "" && len(c.Job.Requirements) == 0 {
		problems = append(problems, "job has neither a cut_list nor requirements")
	}
	for i, r := range c.Job.Requirements {
		if _, err := model.ParseDiameter(r.Diameter); err != nil {
			problems = append(problems, fmt.Sprintf("requirement %d: %v", i+1, err))
		}
	}

	switch c.Catalog.Source {
	case SourceMarket, SourceInventory:
	case SourceSupplier:
		if c.Catalog.Supplier == "" {
			problems = append(problems, "catalog source supplier needs a supplier name")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown catalog source %q", c.Catalog.Source))
	}
	if c.Catalog.PricePerKg < 0 {
		problems = append(problems, "catalog price_per_kg must not be negative")
	}
	for _, d := range c.Catalog.Diameters {
		if _, err := model.ParseDiameter(d); err != nil {
			problems = append(problems, fmt.Sprintf("catalog: %v", err))
		}
	}
	for i, s := range c.Catalog.Custom {
		if _, err := model.ParseDiameter(s.Diameter); err != nil {
			problems = append(problems, fmt.Sprintf("custom stock %d: %v", i+1, err))
		}
	}

	o := c.Options
	if o.WasteThreshold < 0 {
		problems = append(problems, "options waste_threshold must not be negative")
	}
	if o.TimeBudget < 0 {
		problems = append(problems, "options time_budget must not be negative")
	}
	if o.KerfWidth < 0 {
		problems = append(problems, "options kerf_width must not be negative")
	}
	if o.ResidualPasses < 0 {
		problems = append(problems, "options residual_passes must not be negative")
	}
	switch o.Strategy {
	case "", model.StrategyAuto, model.StrategyEnumerate, model.StrategyColumn:
	default:
		problems = append(problems, fmt.Sprintf("unknown strategy %q", o.Strategy))
	}
	switch o.TieBreak {
	case "", model.TieBreakFewestStocks, model.TieBreakNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown tie_break %q", o.TieBreak))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q", c.Logging.Format))
	}

	for _, f := range c.Output.Formats {
		if !validFormat(f) {
			problems = append(problems, fmt.Sprintf("unknown output format %q", f))
		}
	}
	return problems
}

func validFormat(f string) bool {
	for _, known := range ReportFormats {
		if f == known {
			return true
		}
	}
	return false
}

// Resolve returns path relative to the job file's directory unless it is
// absolute.
func (c *Configuration) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Requirements returns the cut list file's requirements followed by the
// inline ones, plus import warnings.
func (c *Configuration) Requirements() ([]model.CutRequirement, []string, error) {
	var reqs []model.CutRequirement
	var warnings []string

	if c.Job.CutList != "" {
		result := importer.ImportFile(c.Resolve(c.Job.CutList))
		if len(result.Errors) > 0 {
			return nil, result.Warnings, fmt.Errorf("cut list %s: %s", c.Job.CutList, strings.Join(result.Errors, "; "))
		}
		reqs = append(reqs, result.Requirements...)
		warnings = append(warnings, result.Warnings...)
	}

	for _, r := range c.Job.Requirements {
		dia, err := model.ParseDiameter(r.Diameter)
		if err != nil {
			return nil, warnings, err
		}
		reqs = append(reqs, model.NewCutRequirement(r.Label, dia, r.Length, r.Quantity))
	}
	return reqs, warnings, nil
}

// StockCatalog builds the catalog the job buys from.
func (c *Configuration) StockCatalog() ([]model.StockOption, error) {
	diameters, err := parseDiameters(c.Catalog.Diameters)
	if err != nil {
		return nil, err
	}

	var stocks []model.StockOption
	switch c.Catalog.Source {
	case SourceMarket, "":
		ds := diameters
		if len(ds) == 0 {
			ds = model.DefaultDiameters
		}
		lengths := c.Catalog.MarketLengths
		if len(lengths) == 0 {
			lengths = model.DefaultMarketLengths
		}
		price := c.Catalog.PricePerKg
		if price == 0 {
			price = model.DefaultPricePerKg
		}
		stocks = model.MarketCatalog(ds, lengths, price)

	case SourceInventory:
		path := c.Resolve(c.Catalog.File)
		if path == "" {
			path = project.DefaultInventoryPath()
		}
		inv, err := project.LoadInventory(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		stocks = inv.Select(diameters, c.Catalog.MarketLengths)

	case SourceSupplier:
		path := c.Resolve(c.Catalog.File)
		if path == "" {
			path = project.DefaultSuppliersPath()
		}
		suppliers, err := project.LoadSuppliers(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load suppliers: %w", err)
		}
		s := model.FindSupplier(suppliers, c.Catalog.Supplier)
		if s == nil {
			return nil, fmt.Errorf("unknown supplier %q", c.Catalog.Supplier)
		}
		inv := model.Inventory{PricePerKg: s.PricePerKg, Stocks: s.Catalog()}
		stocks = inv.Select(diameters, c.Catalog.MarketLengths)

	default:
		return nil, fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	for i, sc := range c.Catalog.Custom {
		dia, err := model.ParseDiameter(sc.Diameter)
		if err != nil {
			return nil, err
		}
		s := model.NewCustomStock(dia, sc.Length, sc.UnitCost)
		s.ID = fmt.Sprintf("%s-c%d", model.StockKey(dia, sc.Length), i+1)
		s.Available = sc.Available
		stocks = append(stocks, s)
	}
	return stocks, nil
}

func parseDiameters(in []string) ([]model.Diameter, error) {
	out := make([]model.Diameter, 0, len(in))
	for _, s := range in {
		d, err := model.ParseDiameter(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ReportPaths returns the output file for each requested report format.
func (c *Configuration) ReportPaths() map[string]string {
	base := c.Output.BaseName
	if base == "" {
		base = c.Job.Name
	}
	if base == "" {
		base = "rebarcut"
	}
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "_")
	dir := c.Resolve(c.Output.Dir)
	if dir == "" {
		dir = c.dir
	}

	paths := make(map[string]string, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		switch f {
		case "labels":
			paths[f] = filepath.Join(dir, base+"_tags.pdf")
		default:
			paths[f] = filepath.Join(dir, base+"."+f)
		}
	}
	return paths
}

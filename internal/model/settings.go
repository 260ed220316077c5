package model

import "time"

// Strategy selects how cutting patterns are produced.
type Strategy string

const (
	StrategyAuto      Strategy = "auto"      // Enumerate when small, column generation otherwise
	StrategyEnumerate Strategy = "enumerate" // Always enumerate every maximal pattern
	StrategyColumn    Strategy = "column"    // Always use column generation
)

// TieBreak selects how equal-cost LP optima are resolved.
type TieBreak string

const (
	TieBreakFewestStocks TieBreak = "fewest-stocks" // Prefer fewer distinct stock lengths
	TieBreakNone         TieBreak = "none"          // Keep the first optimum found
)

// Options configures one optimization run.
type Options struct {
	WasteThreshold   float64       `json:"waste_threshold" mapstructure:"waste_threshold"` // Max overshoot ratio before rounding repair
	TimeBudget       time.Duration `json:"time_budget" mapstructure:"time_budget"`         // 0 = no limit
	AllowCustomStock bool          `json:"allow_custom_stock" mapstructure:"allow_custom_stock"`
	KerfWidth        float64       `json:"kerf_width" mapstructure:"kerf_width"` // Saw/shear loss per cut in mm

	Strategy            Strategy `json:"strategy" mapstructure:"strategy"`
	TieBreak            TieBreak `json:"tie_break" mapstructure:"tie_break"`
	MaxPatterns         int      `json:"max_patterns" mapstructure:"max_patterns"`                   // Enumeration cap before switching to column generation
	MaxColumnIterations int      `json:"max_column_iterations" mapstructure:"max_column_iterations"` // Column generation iteration cap
	RepairNodeBudget    int      `json:"repair_node_budget" mapstructure:"repair_node_budget"`       // Branch-and-bound node cap
	TieBreakBudget      int      `json:"tie_break_budget" mapstructure:"tie_break_budget"`           // Max restricted LP solves for the tie-break
	ResidualPasses      int      `json:"residual_passes" mapstructure:"residual_passes"`             // Fix-floors-and-resolve rounds after rounding, 0 = off
	Workers             int      `json:"workers" mapstructure:"workers"`                             // Parallel diameters / search frontiers

	MinReusableOffcut float64 `json:"min_reusable_offcut" mapstructure:"min_reusable_offcut"` // metres, 0 = don't track offcuts
}

func DefaultOptions() Options {
	return Options{
		WasteThreshold:      0.05,
		TimeBudget:          30 * time.Second,
		AllowCustomStock:    true,
		KerfWidth:           0,
		Strategy:            StrategyAuto,
		TieBreak:            TieBreakFewestStocks,
		MaxPatterns:         20000,
		MaxColumnIterations: 200,
		RepairNodeBudget:    50000,
		TieBreakBudget:      64,
		ResidualPasses:      3,
		Workers:             4,
		MinReusableOffcut:   1.0,
	}
}

// Kerf returns the kerf width in whole millimetres.
func (o Options) Kerf() MM {
	return ToMM(o.KerfWidth / 1000.0)
}

// Normalize fills zero-valued limits with defaults.
func (o Options) Normalize() Options {
	d := DefaultOptions()
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.TieBreak == "" {
		o.TieBreak = d.TieBreak
	}
	if o.MaxPatterns <= 0 {
		o.MaxPatterns = d.MaxPatterns
	}
	if o.MaxColumnIterations <= 0 {
		o.MaxColumnIterations = d.MaxColumnIterations
	}
	if o.RepairNodeBudget <= 0 {
		o.RepairNodeBudget = d.RepairNodeBudget
	}
	if o.TieBreakBudget <= 0 {
		o.TieBreakBudget = d.TieBreakBudget
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ResidualPasses < 0 {
		o.ResidualPasses = 0
	}
	if o.WasteThreshold < 0 {
		o.WasteThreshold = 0
	}
	if o.KerfWidth < 0 {
		o.KerfWidth = 0
	}
	return o
}

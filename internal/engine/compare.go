package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/RebarCut/internal/model"
)

// ComparisonScenario defines a named set of options to compare.
type ComparisonScenario struct {
	Name    string
	Options model.Options
}

// ComparisonResult holds the plan and summary figures for a single scenario.
// Err is set when the scenario could not be optimized.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Plan          model.CuttingPlan
	Err           error
	BarsPurchased int
	TotalCost     float64
	LowerBound    float64
	WastePercent  float64
	SurplusPieces int
}

// CompareScenarios optimizes the same job under each scenario and returns the
// results in scenario order.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, requirements []model.CutRequirement, catalog []model.StockOption) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := New(scenario.Options, nil)
		plan, err := opt.Optimize(ctx, requirements, catalog)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		surplus := 0
		for _, d := range plan.Diameters {
			surplus += d.SurplusPieces
		}

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Plan:          plan,
			BarsPurchased: plan.TotalBars(),
			TotalCost:     plan.TotalCost(),
			LowerBound:    plan.LowerBound(),
			WastePercent:  plan.WastePercent(),
			SurplusPieces: surplus,
		})
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the given
// options.
func BuildDefaultScenarios(base model.Options) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:    "Current Settings",
			Options: base,
		},
	}

	// Scenario: Market lengths only
	if base.AllowCustomStock {
		market := base
		market.AllowCustomStock = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:    "Market Lengths Only",
			Options: market,
		})
	}

	// Scenario: Always repair rounding
	if base.WasteThreshold > 0 {
		strict := base
		strict.WasteThreshold = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:    "Strict Rounding",
			Options: strict,
		})
	}

	// Scenario: Thinner cut (e.g. shear instead of saw)
	if base.KerfWidth > 1.0 {
		thin := base
		thin.KerfWidth = base.KerfWidth * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:    fmt.Sprintf("Kerf %.1fmm (half)", thin.KerfWidth),
			Options: thin,
		})
	}

	// Scenario: Keep every mix even if it uses more stock lengths
	if base.TieBreak != model.TieBreakNone {
		loose := base
		loose.TieBreak = model.TieBreakNone
		scenarios = append(scenarios, ComparisonScenario{
			Name:    "No Stock-Length Tie-Break",
			Options: loose,
		})
	}

	return scenarios
}

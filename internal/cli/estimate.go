package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/export"
	"github.com/piwi3910/RebarCut/internal/model"
)

var (
	estimateFlags jobFlags
	estimateWaste float64
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [job.yaml | cutlist]",
	Short: "Quick material take-off without cutting patterns",
	Long: `Estimate how many bars of each stock length a cut list needs from its
total length alone, plus a waste allowance. This is a fast sanity check
before running the optimizer; the minimum bar count is a lower bound on
any cutting plan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	estimateFlags.register(estimateCmd, false)
	estimateCmd.Flags().Float64Var(&estimateWaste, "waste", 10, "Waste allowance in percent")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	j, err := loadJob(cmd, args, &estimateFlags)
	if err != nil {
		return err
	}

	estimates := estimatePurchases(j.requirements, j.catalog, j.options.KerfWidth, estimateWaste)
	if len(estimates) == 0 {
		return fmt.Errorf("no catalog stock matches the cut list diameters")
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Diameter\tStock\tCut Length\tWeight\tBars (min)\tBars (+waste)\tCost")
	for _, e := range estimates {
		fmt.Fprintf(tw, "%s\t%gm\t%.3fm\t%.1fkg\t%d\t%d\t%s\n",
			e.Diameter,
			e.StockLength,
			e.TotalCutLength,
			e.TotalWeight,
			e.BarsNeededMin,
			e.BarsWithWaste,
			export.Money(e.EstimatedCost).StringFixed(2),
		)
	}
	return tw.Flush()
}

// estimatePurchases returns one estimate per demanded diameter and distinct
// stock length in the catalog, ordered by diameter then length.
func estimatePurchases(reqs []model.CutRequirement, catalog []model.StockOption, kerf, wastePercent float64) []model.PurchaseEstimate {
	demanded := make(map[model.Diameter]bool)
	for _, r := range reqs {
		demanded[r.Diameter] = true
	}

	type key struct {
		dia    model.Diameter
		length model.MM
	}
	seen := make(map[key]bool)
	var stocks []model.StockOption
	for _, s := range catalog {
		k := key{s.Diameter, s.LengthMM()}
		if !demanded[s.Diameter] || seen[k] || s.Limited() {
			continue
		}
		seen[k] = true
		stocks = append(stocks, s)
	}

	order := make([]model.Diameter, 0, len(demanded))
	for d := range demanded {
		order = append(order, d)
	}
	model.SortDiameters(order)
	rank := make(map[model.Diameter]int, len(order))
	for i, d := range order {
		rank[d] = i
	}
	sort.SliceStable(stocks, func(a, b int) bool {
		if stocks[a].Diameter != stocks[b].Diameter {
			return rank[stocks[a].Diameter] < rank[stocks[b].Diameter]
		}
		return stocks[a].LengthMM() < stocks[b].LengthMM()
	})

	estimates := make([]model.PurchaseEstimate, 0, len(stocks))
	for _, s := range stocks {
		estimates = append(estimates, model.CalculatePurchaseEstimate(reqs, s, kerf, wastePercent))
	}
	return estimates
}

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/engine"
	"github.com/piwi3910/RebarCut/internal/export"
)

var compareFlags jobFlags

var compareCmd = &cobra.Command{
	Use:   "compare [job.yaml | cutlist]",
	Short: "Compare the plan under alternative settings",
	Long: `Optimize the same job under a set of what-if scenarios (market lengths
only, strict rounding, half kerf, no tie-break) and print the cost, bar
count and waste of each side by side.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareFlags.register(compareCmd, false)
}

func runCompare(cmd *cobra.Command, args []string) error {
	j, err := loadJob(cmd, args, &compareFlags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(j.options), j.requirements, j.catalog)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tBars\tCost\tLower Bound\tWaste\tSurplus")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.1f%%\t%d\n",
			r.Scenario.Name,
			r.BarsPurchased,
			export.Money(r.TotalCost).StringFixed(2),
			export.Money(r.LowerBound).StringFixed(2),
			r.WastePercent,
			r.SurplusPieces,
		)
	}
	return tw.Flush()
}

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/model"
	"github.com/piwi3910/RebarCut/internal/project"
)

var (
	catalogDiameter  string
	catalogCost      float64
	catalogAvailable int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the saved stock catalog and suppliers",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog stock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := project.LoadInventory(inventoryPath())
		if err != nil {
			return err
		}
		stocks := inv.Stocks
		if catalogDiameter != "" {
			d, err := model.ParseDiameter(catalogDiameter)
			if err != nil {
				return err
			}
			stocks = inv.ForDiameter(d)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Price per kg: %.2f\n", inv.PricePerKg)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDiameter\tLength\tCost\tType\tAvailable")
		for _, s := range stocks {
			kind := "market"
			if s.Custom {
				kind = "custom"
			}
			avail := "unlimited"
			if s.Limited() {
				avail = strconv.Itoa(s.Available)
			}
			fmt.Fprintf(tw, "%s\t%s\t%gm\t%.2f\t%s\t%s\n", s.ID, s.Diameter, s.Length, s.UnitCost, kind, avail)
		}
		return tw.Flush()
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <diameter> <length-m>",
	Short: "Add a custom stock length",
	Long: `Add a custom stock length to the catalog. Without --cost the bar is
priced by mass at the catalog price per kg.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := model.ParseDiameter(args[0])
		if err != nil {
			return err
		}
		length, err := strconv.ParseFloat(args[1], 64)
		if err != nil || length <= 0 {
			return fmt.Errorf("invalid length %q", args[1])
		}

		path := inventoryPath()
		inv, err := project.LoadInventory(path)
		if err != nil {
			return err
		}
		cost := catalogCost
		if !cmd.Flags().Changed("cost") {
			cost = model.BarPrice(d, length, inv.PricePerKg)
		}
		s := model.NewCustomStock(d, length, cost)
		s.Available = catalogAvailable
		if !inv.AddStock(s) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %gm at %.2f is already in the catalog\n", d, length, cost)
			return nil
		}
		if err := project.SaveInventory(path, inv); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %gm at %.2f\n", s.ID, d, length, cost)
		return nil
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove stock options by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := inventoryPath()
		inv, err := project.LoadInventory(path)
		if err != nil {
			return err
		}
		var missing []string
		for _, id := range args {
			if !inv.RemoveStock(id) {
				missing = append(missing, id)
			}
		}
		if err := project.SaveInventory(path, inv); err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("not in catalog: %s", strings.Join(missing, ", "))
		}
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Merge stock from a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := inventoryPath()
		inv, err := project.LoadInventory(path)
		if err != nil {
			return err
		}
		inv, added, err := project.ImportInventory(args[0], inv)
		if err != nil {
			return err
		}
		if err := project.SaveInventory(path, inv); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d stock options\n", added)
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Write the catalog to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := project.LoadInventory(inventoryPath())
		if err != nil {
			return err
		}
		return project.ExportInventory(args[0], inv)
	},
}

var catalogResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the catalog with the default market catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return project.SaveInventory(inventoryPath(), model.DefaultInventory())
	},
}

var catalogSuppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List suppliers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		suppliers, err := project.LoadSuppliers(project.DefaultSuppliersPath())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Name\tPrice/kg\tDiameters\tLengths")
		for _, s := range suppliers {
			dias := make([]string, len(s.Diameters))
			for i, d := range s.Diameters {
				dias[i] = string(d)
			}
			lengths := make([]string, len(s.MarketLengths))
			for i, l := range s.MarketLengths {
				lengths[i] = strconv.FormatFloat(l, 'f', -1, 64)
			}
			fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", s.Name, s.PricePerKg, strings.Join(dias, ","), strings.Join(lengths, ","))
		}
		return tw.Flush()
	},
}

var catalogSupplierImportCmd = &cobra.Command{
	Use:   "supplier-import <file.json>",
	Short: "Add or replace a supplier from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := project.ImportSupplier(args[0])
		if err != nil {
			return err
		}
		path := project.DefaultSuppliersPath()
		suppliers, err := project.LoadSuppliers(path)
		if err != nil {
			return err
		}
		if existing := model.FindSupplier(suppliers, s.Name); existing != nil {
			if existing.BuiltIn {
				return fmt.Errorf("cannot replace built-in supplier %q", s.Name)
			}
			*existing = s
		} else {
			suppliers = append(suppliers, s)
		}
		if err := project.SaveSuppliers(path, suppliers); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved supplier %s\n", s.Name)
		return nil
	},
}

var catalogSupplierExportCmd = &cobra.Command{
	Use:   "supplier-export <name> <file.json>",
	Short: "Write a supplier to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		suppliers, err := project.LoadSuppliers(project.DefaultSuppliersPath())
		if err != nil {
			return err
		}
		s := model.FindSupplier(suppliers, args[0])
		if s == nil {
			return fmt.Errorf("no supplier named %q", args[0])
		}
		return project.ExportSupplier(args[1], *s)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogAddCmd, catalogRemoveCmd, catalogImportCmd,
		catalogExportCmd, catalogResetCmd, catalogSuppliersCmd, catalogSupplierImportCmd, catalogSupplierExportCmd)

	catalogListCmd.Flags().StringVarP(&catalogDiameter, "diameter", "d", "", "Only list this diameter")
	catalogAddCmd.Flags().Float64Var(&catalogCost, "cost", 0, "Unit cost per bar")
	catalogAddCmd.Flags().IntVar(&catalogAvailable, "available", 0, "Bars on hand (0 = unlimited)")
}

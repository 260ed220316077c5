package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/project"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore settings, catalog, templates and suppliers",
}

var backupExportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Write all saved data to one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
		if err != nil {
			return err
		}
		inv, err := project.LoadInventory(inventoryPath())
		if err != nil {
			return err
		}
		templates, err := project.LoadDefaultTemplates()
		if err != nil {
			return err
		}
		suppliers, err := project.LoadSuppliers(project.DefaultSuppliersPath())
		if err != nil {
			return err
		}

		err = project.ExportAllData(args[0], project.BackupData{
			Config:    cfg,
			Inventory: inv,
			Templates: templates,
			Suppliers: suppliers,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Restore saved data from a backup file",
	Long:  `Restore a backup. The current settings, catalog, templates and suppliers are replaced.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := project.ImportAllData(args[0])
		if err != nil {
			return err
		}
		if err := project.SaveAppConfig(project.DefaultConfigPath(), data.Config); err != nil {
			return err
		}
		if err := project.SaveInventory(inventoryPath(), data.Inventory); err != nil {
			return err
		}
		if err := project.SaveDefaultTemplates(data.Templates); err != nil {
			return err
		}
		if err := project.SaveSuppliers(project.DefaultSuppliersPath(), data.Suppliers); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s (version %s, %d templates, %d stock options)\n",
			args[0], data.Version, len(data.Templates.Templates), len(data.Inventory.Stocks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
}

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RebarCut/internal/model"
	"github.com/piwi3910/RebarCut/internal/project"
)

var (
	templateFlags       jobFlags
	templateDescription string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage saved job templates",
	Long: `Job templates store a cut list, its stock selection and options so a
recurring job can be re-run with "rebarcut optimize --template <name>".`,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := project.LoadDefaultTemplates()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tName\tMarks\tStocks\tUpdated\tDescription")
		for _, t := range store.Templates {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", t.ID, t.Name, len(t.Requirements), len(t.Stocks), t.UpdatedAt, t.Description)
		}
		return tw.Flush()
	},
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <name> <job.yaml | cutlist>",
	Short: "Save a job as a template",
	Long: `Save the cut list, resolved stock catalog and options of a job under a
name. An existing template with the same name is replaced.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		j, err := loadJob(cmd, args[1:], &templateFlags)
		if err != nil {
			return err
		}

		store, err := project.LoadDefaultTemplates()
		if err != nil {
			return err
		}
		tmpl := model.NewJobTemplate(name, templateDescription, j.requirements, j.catalog, j.options)
		if old := store.FindByName(name); old != nil {
			tmpl.ID = old.ID
			tmpl.CreatedAt = old.CreatedAt
			store.Remove(old.ID)
		}
		store.Add(tmpl)
		if err := project.SaveDefaultTemplates(store); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s (%s)\n", tmpl.Name, tmpl.ID)
		return nil
	},
}

var templateRemoveCmd = &cobra.Command{
	Use:   "remove <name | id>",
	Short: "Remove a job template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := project.LoadDefaultTemplates()
		if err != nil {
			return err
		}
		tmpl := store.FindByName(args[0])
		if tmpl == nil {
			tmpl = store.FindByID(args[0])
		}
		if tmpl == nil {
			return fmt.Errorf("no template named %q", args[0])
		}
		store.Remove(tmpl.ID)
		return project.SaveDefaultTemplates(store)
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateListCmd, templateSaveCmd, templateRemoveCmd)

	templateFlags.register(templateSaveCmd, false)
	templateSaveCmd.Flags().StringVar(&templateDescription, "description", "", "Template description")
}

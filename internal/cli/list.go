package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the available preprocessing steps",
		Long: `List every registered step in the order a picker would show them,
including custom steps defined under custom_steps in the config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := getConfig(cmd.Context()).Registry()
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Step", "Description"})
			for i, s := range reg.Steps() {
				t.AppendRow(table.Row{i + 1, s.Name, s.Description})
			}
			t.Render()
			return nil
		},
	}
}

func newDatasetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the dataset catalog",
		Long: `List the built-in datasets (found under <data-dir>/datasets) and any
datasets added in the config file, with whether their file is present.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := getConfig(cmd.Context()).Catalog()
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Key", "Name", "Description", "Location", "Available"})
			for _, e := range cat.List() {
				_, statErr := os.Stat(e.Location)
				t.AppendRow(table.Row{e.Key, e.Name, e.Description, e.Location, yesNo(statErr == nil)})
			}
			t.Render()
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package cli

import (
	"github.com/spf13/cobra"

	"spendcast/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available report definitions",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	defs, err := report.LoadDir(cfg.ReportsDir)
	if err != nil {
		return err
	}

	for _, def := range defs {
		cmd.Printf("%-12s %s", def.Name, def.SourceOrDefault())
		if def.Description != "" {
			cmd.Printf("  %s", def.Description)
		}
		cmd.Println()
	}
	return nil
}

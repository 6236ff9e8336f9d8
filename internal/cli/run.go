package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"spendcast/internal/report"
	"spendcast/internal/services"
)

var (
	runAllReports   bool
	runUnclassified string
)

var runCmd = &cobra.Command{
	Use:   "run [report]...",
	Short: "Run one or more spend reports",
	Long: `Runs the named report definitions from the reports directory.
With --all, every definition is run concurrently.`,
	RunE: runReports,
}

func init() {
	runCmd.Flags().BoolVar(&runAllReports, "all", false, "run every report definition")
	runCmd.Flags().StringVar(&runUnclassified, "unclassified", "", "route unmatched rows to this bucket instead of the default")
	rootCmd.AddCommand(runCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	if !runAllReports && len(args) == 0 {
		return fmt.Errorf("name at least one report, or pass --all")
	}

	defs, err := report.LoadDir(cfg.ReportsDir)
	if err != nil {
		return err
	}
	if !runAllReports {
		defs, err = selectDefinitions(defs, args)
		if err != nil {
			return err
		}
	}
	if runUnclassified != "" {
		for _, def := range defs {
			def.Classifier.Unclassified = runUnclassified
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := services.NewPipeline(cfg, logger).RunAll(ctx, defs)
	if err != nil {
		return err
	}
	for _, res := range results {
		cmd.Printf("Wrote %s (%d records, %d rows, %d dropped)\n",
			res.OutputPath, res.Records, res.Rows, res.Dropped)
		if res.DetailsPath != "" {
			cmd.Printf("Wrote %s\n", res.DetailsPath)
		}
	}
	return nil
}

func selectDefinitions(defs []*report.Definition, names []string) ([]*report.Definition, error) {
	byName := make(map[string]*report.Definition, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	selected := make([]*report.Definition, 0, len(names))
	for _, name := range names {
		def, ok := byName[name]
		if !ok {
			known := make([]string, 0, len(defs))
			for _, d := range defs {
				known = append(known, d.Name)
			}
			return nil, fmt.Errorf("unknown report %q (available: %s)", name, strings.Join(known, ", "))
		}
		selected = append(selected, def)
	}
	return selected, nil
}

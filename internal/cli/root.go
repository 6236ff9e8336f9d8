// Package cli wires the spendcast commands: run executes report
// pipelines, list shows the available report definitions.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spendcast/internal/config"
	"spendcast/internal/log"
)

var (
	cfg    *config.Config
	logger *log.Logger

	// persistent flags
	graphPath  string
	queriesDir string
	reportsDir string
	outputDir  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "spendcast",
	Short: "Monthly spend reports from an RDF purchase graph",
	Long: `spendcast queries a Turtle purchase graph (or a SPARQL endpoint),
classifies each line item into buckets via keyword rules and writes
per-month totals as JSON reports.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	// .env is optional local convenience
	_ = godotenv.Load()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)

	cfg = config.Load()
	if graphPath != "" {
		cfg.GraphPath = graphPath
	}
	if queriesDir != "" {
		cfg.QueriesDir = queriesDir
	}
	if reportsDir != "" {
		cfg.ReportsDir = reportsDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg.Validate()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&graphPath, "graph", "", "Turtle graph file (overrides GRAPH_PATH)")
	rootCmd.PersistentFlags().StringVar(&queriesDir, "queries", "", "query files directory (overrides QUERIES_DIR)")
	rootCmd.PersistentFlags().StringVar(&reportsDir, "reports", "", "report definitions directory (overrides REPORTS_DIR)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "out", "", "output directory (overrides OUTPUT_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

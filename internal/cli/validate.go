package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"firegate/internal/control"
	"firegate/internal/core/config"
	"firegate/internal/ingest"
)

var validateSource string

var validateCmd = &cobra.Command{
	Use:   "validate <file.csv>",
	Short: "Validate a CSV file against the configured rules and print the report",
	Args:  cobra.ExactArgs(1),
	Run:   runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSource, "source", "adhoc", "source name used in the report")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// One-shot validation works without a config file.
		cfg = &config.AppConfig{}
		cfg.Quality.Threshold = 90
	}
	setupLogging(cfg)

	app, err := control.NewEngine(cfg)
	if err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	src := ingest.NewCSVSource(validateSource, args[0], 0)
	defer src.Close()

	batch, err := src.Extract(ctx)
	if err != nil {
		slog.Error("Failed to read file", "path", args[0], "error", err)
		os.Exit(1)
	}

	report := app.ProcessBatch(ctx, validateSource, batch)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "RULE\tPASSED\tFAILED\tMESSAGE")
	for _, res := range report.RuleResults {
		msg := res.ErrorMessage
		if msg == "" {
			msg = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%v\t%d\t%s\n", res.RuleName, res.Passed, res.FailedRecords, msg)
	}
	_ = w.Flush()

	fmt.Printf("\n%d records, %d quarantined, quality score %.1f%%\n",
		report.TotalRecords, report.FailedRecords, report.QualityScore)

	if report.QualityScore < cfg.Quality.Threshold {
		os.Exit(1)
	}
}

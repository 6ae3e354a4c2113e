package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"firegate/internal/core/config"
	"firegate/internal/infra/storage/postgres"
)

var statusWindow time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent quality metrics and unresolved errors per source",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&statusWindow, "window", 24*time.Hour, "metrics lookback window")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		setupLogging(nil)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	metricsRepo := postgres.NewMetricsRepo(db)
	errorRepo := postgres.NewErrorRepo(db)
	quarantineRepo := postgres.NewQuarantineRepo(db)
	since := time.Now().Add(-statusWindow)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SOURCE\tBATCHES\tLAST SCORE\tQUARANTINED\tUNRESOLVED")

	for _, sc := range cfg.Sources {
		metrics, err := metricsRepo.GetRecent(ctx, sc.Name, since)
		if err != nil {
			slog.Error("Failed to query metrics", "source", sc.Name, "error", err)
			continue
		}
		lastScore := "-"
		if len(metrics) > 0 {
			lastScore = fmt.Sprintf("%.1f", metrics[len(metrics)-1].QualityScore)
		}
		quarantined, _ := quarantineRepo.Count(ctx, sc.Name)
		unresolved, _ := errorRepo.CountUnresolved(ctx, sc.Name)
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\n",
			sc.Name, len(metrics), lastScore, quarantined, unresolved)
	}
	_ = w.Flush()
}

package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"firegate/internal/core/config"
	"firegate/internal/infra/storage"
	"firegate/internal/infra/storage/postgres"
)

var resolveNotes string

var resolveCmd = &cobra.Command{
	Use:   "resolve <error-id>",
	Short: "Mark an error record as resolved",
	Args:  cobra.ExactArgs(1),
	Run:   runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveNotes, "notes", "", "resolution notes")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
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

	errorID := args[0]
	if err := postgres.NewErrorRepo(db).Resolve(ctx, errorID, resolveNotes); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Error("Error record not found or already resolved", "error_id", errorID)
		} else {
			slog.Error("Failed to resolve error record", "error_id", errorID, "error", err)
		}
		os.Exit(1)
	}
	slog.Info("Error record resolved", "error_id", errorID)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

var (
	configPath string
	seedPath   string
	fillPolicy string
	debug      bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Philosophy catalog maintenance tool",
		Long:  "Seed, enrich, import and inspect the philosophy catalog store configured for the API server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			logger.Init(logger.Options{Debug: debug, Level: os.Getenv("LOG_LEVEL"), Service: "catalogctl"})

			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Path to a YAML config file (defaults and environment otherwise)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the curated schools and people that are not yet in the store",
		RunE:  runSeed,
	}
	seedCmd.Flags().StringVarP(&seedPath, "path", "p", "", "Seed catalog JSON (default: seed.path or the embedded catalog)")

	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve portraits, biographies, works and quotations for every person",
		RunE:  runEnrich,
	}
	enrichCmd.Flags().StringVar(&fillPolicy, "policy", "", "Fill policy: empty or heuristic (default: enrichment.fill_policy)")

	rootCmd.AddCommand(
		seedCmd,
		enrichCmd,
		&cobra.Command{
			Use:   "repair-works",
			Short: "Retitle works that still carry a generated placeholder title",
			RunE:  runRepairWorks,
		},
		&cobra.Command{
			Use:   "import",
			Short: "Import philosophers and quotes from the philosophers API",
			RunE:  runImport,
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print record counts per entity",
			RunE:  runStats,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		logger.Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}

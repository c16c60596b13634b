package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lakeferry/lakeferry/internal/migration"
	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/connector/registry"
	"github.com/lakeferry/lakeferry/pkg/logger"

	// Import all available connectors to register them
	_ "github.com/lakeferry/lakeferry/pkg/connector/destinations/datalake"
	_ "github.com/lakeferry/lakeferry/pkg/connector/sources/mongodb"
)

var version = "0.1.0"

func main() {
	var envFile string

	root := &cobra.Command{
		Use:   "lakeferry",
		Short: "Lakeferry - MongoDB to data lake batch migration",
		Long: `Lakeferry extracts every collection of a MongoDB database, converts each
one to CSV, and uploads the files into a timestamped directory of an Azure
Data Lake Storage Gen2 container. Configuration comes from environment
variables (optionally loaded from an env file).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", envFile, err)
				}
				return nil
			}
			_ = godotenv.Load() // Ignore error if .env doesn't exist
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to an env file to load before reading configuration (default: .env when present)")

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Lakeferry v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Collections command to preview what a migration would process
	root.AddCommand(&cobra.Command{
		Use:   "collections",
		Short: "List the collections a migration would process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCollections()
		},
	})

	// Main migrate command
	var workers int
	var unitTimeout time.Duration
	var logLevel string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate every collection of the source database into the data lake",
		Long: `Migrate lists every collection of the configured MongoDB database and
uploads each one as a CSV file into a new timestamped batch directory.
A collection that fails is logged and counted; the remaining collections
are still processed.

Example:
  lakeferry migrate --env-file prod.env --workers 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(workers, unitTimeout, logLevel)
		},
	}
	migrateCmd.Flags().IntVar(&workers, "workers", 0, "Number of collections to process concurrently (overrides MIGRATE_WORKERS)")
	migrateCmd.Flags().DurationVar(&unitTimeout, "unit-timeout", 0, "Per-collection processing timeout, e.g. 2m (overrides UNIT_TIMEOUT)")
	migrateCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error) (overrides LOG_LEVEL)")
	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runMigration wires the configured connectors into a migrator and runs
// one batch. It returns an error only for fatal preconditions: partial
// success still exits zero, with the failures visible in the summary.
func runMigration(workers int, unitTimeout time.Duration, logLevel string) error {
	cfg := config.Load()
	if workers > 0 {
		cfg.Migration.Workers = workers
	}
	if unitTimeout > 0 {
		cfg.Migration.UnitTimeout = unitTimeout
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = context.WithValue(ctx, logger.RunIDKey, uuid.NewString())
	log := logger.WithContext(ctx)

	source, err := registry.CreateSource(cfg.Source.Type, cfg)
	if err != nil {
		return fmt.Errorf("failed to create source connector '%s': %w", cfg.Source.Type, err)
	}
	destination, err := registry.CreateDestination(cfg.Dest.Type, cfg)
	if err != nil {
		return fmt.Errorf("failed to create destination connector '%s': %w", cfg.Dest.Type, err)
	}

	summary, err := migration.New(source, destination, cfg, log).Run(ctx)
	if err != nil {
		log.Error("migration aborted", zap.Error(err))
		return err
	}

	if summary.Failed() > 0 {
		log.Warn("migration completed with failures", summary.Fields()...)
	} else {
		log.Info("migration completed successfully", summary.Fields()...)
	}
	return nil
}

// listCollections prints the collection catalog of the source database.
func listCollections() error {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel}); err != nil {
		return err
	}

	source, err := registry.CreateSource(cfg.Source.Type, cfg)
	if err != nil {
		return fmt.Errorf("failed to create source connector '%s': %w", cfg.Source.Type, err)
	}
	defer func() {
		_ = source.Close(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := source.Open(ctx); err != nil {
		return err
	}
	units, err := source.ListUnits(ctx)
	if err != nil {
		return err
	}

	if len(units) == 0 {
		fmt.Printf("No collections found in database %s.\n", cfg.Source.Database)
		return nil
	}
	fmt.Printf("Collections in %s:\n", cfg.Source.Database)
	for _, unit := range units {
		fmt.Printf("  - %s\n", unit)
	}
	return nil
}

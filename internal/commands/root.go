// Package commands implements the studyctl CLI: batch-importing
// timesheet CSV exports and inspecting committed sessions directly
// against the database, without going through the HTTP server.
package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/studylog/studylog/internal/config"
	"github.com/studylog/studylog/internal/core"
	"github.com/studylog/studylog/internal/logging"
	"github.com/studylog/studylog/internal/schema"
)

var rootCmd = &cobra.Command{
	Use:   "studyctl",
	Short: "Manage the study timesheet store",
	Long: `studyctl imports exported timesheet CSVs into the study log database
and manages the sessions created from them. File pairs follow the
{year}_{season}_study.csv / {year}_{season}_text.csv naming convention.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// withService loads configuration, connects to the database, migrates
// the schema, and hands a ready service to fn.
func withService(ctx context.Context, fn func(context.Context, *core.Service) error) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := schema.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	service := core.NewService(pool, nil, core.Options{
		PreviewTTL:      cfg.Import.PreviewTTL,
		PreviewCapacity: cfg.Import.PreviewCapacity,
	})

	return fn(ctx, service)
}

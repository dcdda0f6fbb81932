// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tejzpr/affinity-mcp/internal/config"
	"github.com/tejzpr/affinity-mcp/internal/database"
	"github.com/tejzpr/affinity-mcp/internal/logger"
	"github.com/tejzpr/affinity-mcp/internal/rebuild"
	"github.com/tejzpr/affinity-mcp/internal/server"
	"github.com/tejzpr/affinity-mcp/internal/store"
	gormlogger "gorm.io/gorm/logger"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version string

const serviceName = "affinity-mcp"

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		// MCP servers must only write JSON-RPC to stdout
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "affinity-mcp",
		Short:         "Affinity MCP server for tracking character affection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.affinity/configs/config.json)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newMigrateCmd(&configPath))
	rootCmd.AddCommand(newRebuildCmd(&configPath))
	rootCmd.AddCommand(newInitCmd(&configPath))
	rootCmd.AddCommand(newVersionCmd())

	// Running without a subcommand serves over stdio
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), configPath, false, 0)
	}

	return rootCmd
}

func newServeCmd(configPath *string) *cobra.Command {
	var httpMode bool
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, httpMode, port)
		},
	}
	cmd.Flags().BoolVar(&httpMode, "http", false, "Serve streamable HTTP instead of stdio")
	cmd.Flags().IntVar(&port, "port", 0, "Server port (HTTP mode only, overrides config)")

	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(serviceName, cfg.Log.Level)
			return runMigrate(cfg, log, drop)
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "Drop all affection tables before migrating")

	return cmd
}

func newRebuildCmd(configPath *string) *cobra.Command {
	var from string
	var scopes []string
	var force bool

	cmd := &cobra.Command{
		Use:     "rebuild",
		Short:   "Copy affection records from another store into the configured store",
		Example: "  affinity-mcp rebuild --from git --scope default --scope chat-42",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(serviceName, cfg.Log.Level)
			return runRebuild(cmd.Context(), cfg, log, from, scopes, force)
		},
	}
	cmd.Flags().StringVar(&from, "from", config.StoreTypeGit, "Source store type")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Scope to copy (repeatable, default: affection.default_scope)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite records that already exist in the destination")

	return cmd
}

func newInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefaultConfig(*configPath, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func versionString() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// loadConfig reads an explicit config file when given, else the default
// location, falling back to defaults when no file exists
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, configPath string, httpMode bool, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	log := logger.New(serviceName, cfg.Log.Level)
	log.Info().
		Str("version", versionString()).
		Str("store", cfg.Store.Type).
		Bool("bonds", cfg.Affection.EnableBonds).
		Msg("starting Affinity MCP server")

	tr, closeStore, err := server.NewTracker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()

	srv := server.NewMCPServer(cfg, tr, log, versionString())

	if httpMode {
		return srv.ListenAndServe(ctx)
	}
	return srv.ServeStdio()
}

func runMigrate(cfg *config.Config, log zerolog.Logger, drop bool) error {
	if cfg.Store.Type != config.StoreTypeDatabase {
		return fmt.Errorf("migrate requires store.type %q, got %q", config.StoreTypeDatabase, cfg.Store.Type)
	}

	db, err := database.Connect(&database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    gormlogger.Silent,
	})
	if err != nil {
		return err
	}
	defer database.Close(db)

	if drop {
		log.Warn().Msg("dropping affection tables")
		if err := database.DropAllTables(db); err != nil {
			return err
		}
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.CreateIndexes(db); err != nil {
		return err
	}

	log.Info().Str("type", cfg.Database.Type).Msg("database migrated")
	return nil
}

func runRebuild(ctx context.Context, cfg *config.Config, log zerolog.Logger, from string, scopes []string, force bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if from == cfg.Store.Type {
		return fmt.Errorf("source and destination are both %q", from)
	}
	if len(scopes) == 0 {
		scopes = []string{cfg.Affection.DefaultScope}
	}

	srcCfg := *cfg
	srcCfg.Store.Type = from
	src, closeSrc, err := store.Open(ctx, &srcCfg)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}
	defer closeSrc()

	lister, ok := src.(rebuild.Source)
	if !ok {
		return fmt.Errorf("%s store cannot enumerate records", from)
	}

	dst, closeDst, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open destination store: %w", err)
	}
	defer closeDst()

	result, err := rebuild.Rebuild(ctx, lister, dst, scopes, rebuild.Options{Force: force}, log)
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		log.Warn().Str("record", msg).Msg("skipped unreadable record")
	}
	log.Info().
		Int("processed", result.RecordsProcessed).
		Int("copied", result.RecordsCopied).
		Int("skipped", result.RecordsSkipped).
		Int("errors", len(result.Errors)).
		Msg("rebuild complete")
	return nil
}

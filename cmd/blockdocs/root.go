package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"blockdocs/internal/config"
	"blockdocs/internal/database"
	"blockdocs/internal/logger"
)

var (
	flagDSN     string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:   "blockdocs",
	Short: "blockdocs serves block-based equipment documentation",
	Long: `blockdocs is a small documentation CMS. Admins compose pages from typed
content blocks and group them by equipment; published pages are served to
everyone else.

Usage:
  blockdocs serve
  blockdocs migrate
  blockdocs admin create --username admin --password ...`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "SQLite database path (overrides BLOCKDOCS_DSN)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Env file to load (default: .env)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var files []string
	if flagEnvFile != "" {
		files = append(files, flagEnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if flagDSN != "" {
		cfg.DSN = flagDSN
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.LogData, error) {
	return logger.New().
		FromPath(cfg.LogFile).
		Level(cfg.LogLevel).
		Console(cfg.IsDevelopment()).
		Make()
}

// openDatabase opens and migrates the database.
func openDatabase(cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	db, err := database.New(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("dsn", cfg.DSN).Msg("database migrated")
	return db, nil
}

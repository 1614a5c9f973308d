// Package cli implements the symbi CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/symbi-app/symbi/internal/config"
	"github.com/symbi-app/symbi/internal/model"
	"github.com/symbi-app/symbi/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "symbi",
	Short: "A digital pet that mirrors your health",
	Long:  "Symbi tracks daily health metrics, assigns your pet an emotional state per day, and evolves its appearance after a 30-day positive streak. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SYMBI_DB or ~/.symbi/symbi.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config path (default: $SYMBI_CONFIG or ~/.symbi/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("SYMBI_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".symbi", "symbi.db")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("SYMBI_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".symbi", "config.yaml")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// dayFlag resolves an optional --date flag, defaulting to today.
func dayFlag(cmd *cobra.Command) (model.Day, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return model.Today(time.Local), nil
	}
	return model.ParseDay(s)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

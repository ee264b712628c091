package main

import (
	"fmt"
	"os"

	"exflow/internal/config"
	"exflow/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "exflow",
		Short: "Static exception-flow analysis for C#",
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to exflow.yaml or exflow.toml")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the findings database (SQLite); empty disables it")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(showCmd)
}

// loadConfig reads the configured file, or exflow.yaml / exflow.toml in the
// working directory when none is given.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		for _, candidate := range []string{"exflow.yaml", "exflow.yml", "exflow.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	return cfg, nil
}

// initStore opens the findings store, or returns nil when none is configured.
func initStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	return storage.NewSQLiteStore(cfg.Store.Path)
}

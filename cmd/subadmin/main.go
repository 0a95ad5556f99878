// Command subadmin runs maintenance and support tasks against the
// subscription store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/database"
)

var version = "1.0.0"

// opener connects to the store named by the loaded config.
type opener func(cfg *config.Config) (*gorm.DB, error)

func main() {
	open := func(cfg *config.Config) (*gorm.DB, error) {
		return database.Open(&cfg.Database)
	}
	if err := newRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "subadmin",
		Short:         "Subscription administration tool",
		Long:          `subadmin inspects and repairs users, quotas and payment intents.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	env := &cliEnv{
		load: func() (*config.Config, *gorm.DB, error) {
			cfg, err := config.Load(configPath)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load config: %w", err)
			}
			db, err := open(cfg)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect database: %w", err)
			}
			return cfg, db, nil
		},
	}

	rootCmd.AddCommand(sweepCmd(env))
	rootCmd.AddCommand(statsCmd(env))
	rootCmd.AddCommand(statusCmd(env))
	rootCmd.AddCommand(activateCmd(env))

	return rootCmd
}

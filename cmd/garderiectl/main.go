// Command garderiectl runs maintenance tasks against the configured database.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/configs"
	database "garderie_backend/internals/databases"
	"garderie_backend/internals/helpers/dbtime"
)

var (
	cfg    *configs.Config
	logger *zap.Logger
	db     *gorm.DB

	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "garderiectl",
	Short:         "Maintenance commands for the garderie backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = configs.LoadEnv(); err != nil {
			return err
		}
		// the CLI logs to stdout only
		cfg.LogDir = ""
		if logger, err = configs.NewLogger(cfg); err != nil {
			return err
		}
		dbtime.SetLocation(cfg.Location())
		db, err = database.ConnectDB(cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			_ = database.Close(db)
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the command")
	rootCmd.AddCommand(migrateCmd, seedCmd, createAdminCmd)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

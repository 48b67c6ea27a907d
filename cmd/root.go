package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rackops/core/config"
	"rackops/core/database"
	"rackops/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rackops",
	Short: "Racktables fleet tooling",
	Long: `rackops keeps the Racktables inventory in line with the fleet.
It reconciles interfaces and OS versions over SSH and answers inventory lookups.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It exits with status 2 when the command was
// interrupted and 1 on any other error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Console format at debug level gives readable ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		code := 1
		if errors.Is(err, context.Canceled) {
			code = 2
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			if code == 2 {
				l.Warn("command interrupted")
			} else {
				l.Error("command failed", zap.Error(err))
			}
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}

// env is what every command starts from.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &env{cfg: cfg, logger: l}, nil
}

// connect opens the inventory database. The caller closes it with database.Close.
func (e *env) connect() (*gorm.DB, error) {
	db, err := database.Connect(e.cfg.Database)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Connected to inventory database",
		zap.String("host", e.cfg.Database.Host),
		zap.String("name", e.cfg.Database.Name))
	return db, nil
}

func (e *env) close(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		e.logger.Warn("Failed to close database", zap.Error(err))
	}
	_ = e.logger.Sync()
}

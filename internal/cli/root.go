// Package cli implements the reliefd command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/relief-network/reliefd/internal/app/engine"
	"github.com/relief-network/reliefd/internal/daemon"
	"github.com/relief-network/reliefd/internal/infra/sqlite"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "reliefd",
	Short: "Disaster relief shortage and allocation engine",
	Long: `reliefd tracks per-camp resource shortages and matches pending
donations to the camps with the greatest need. It serves an HTTP API for
dashboards and exposes the allocation engine directly on the command line.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ~/.reliefd/config.toml)")
}

// runtime bundles everything a command needs once the store is open.
type runtime struct {
	cfg    daemon.Config
	logger *zap.Logger
	store  *sqlite.DB
	engine *engine.Engine
	stats  *engine.Stats
}

// openRuntime loads config, builds the logger, opens the store, and wires
// the engine. The caller must invoke close when done.
func openRuntime() (*runtime, func(), error) {
	cfg, err := daemon.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	eng := engine.New(store, logger)
	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: eng,
		stats:  engine.NewStats(store, eng.Calculator(), logger),
	}
	close := func() {
		store.Close()
		logger.Sync()
	}
	return rt, close, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Command booster edits and reports on the PRE-ULTIMA BOOSTER worksheet from
// the terminal. Every invocation loads the stored snapshot, applies one
// change and flushes it before exiting.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-booster/internal/config"
	"github.com/goliatone/go-booster/internal/telemetry"
)

type app struct {
	out io.Writer

	home     string
	verbose  bool
	backend  string
	engine   string
	currency string
	metrics  bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "booster",
		Short: "PRE-ULTIMA BOOSTER worksheet",
		Long: `booster keeps a three-section business worksheet (product, economy,
strategy) and derives margins, progress and hints from it.

Settings live in $BOOSTER_HOME/config.yaml (default ~/.booster).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
			if a.metrics {
				return telemetry.Write(cmd.ErrOrStderr(), prometheus.DefaultGatherer)
			}
			return nil
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.home, "home", "", "Configuration directory (default: $BOOSTER_HOME or ~/.booster)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Storage backend: memory, file, badger or sqlite")
	root.PersistentFlags().StringVar(&a.engine, "engine", "", "Insight rule engine: expr, cel or js")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "Print persistence and store counters to stderr on exit")

	root.AddCommand(
		newStatusCommand(a),
		newSetCommand(a),
		newProductCommand(a),
		newLeverCommand(a),
		newOfferCommand(a),
		newReportCommand(a),
		newInsightsCommand(a),
		newResetCommand(a),
		newWatchCommand(a),
	)
	return root
}

func (a *app) setup() error {
	home := a.home
	if home == "" {
		var err error
		if home, err = config.Home(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(home)
	if err != nil {
		return err
	}
	cfg, err = cfg.Override(config.Config{
		Storage:  config.StorageConfig{Backend: a.backend},
		Insights: config.InsightsConfig{Engine: a.engine},
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger != nil {
		return nil
	}
	zapConfig := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	zapConfig.Level = level
	if a.verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	a.logger, err = zapConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(&app{out: os.Stdout})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package cli wires the scrape and beautify stages into the heinscrape
// command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"heinscrape/internal/citation"
	"heinscrape/internal/config"
)

type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	configPath string
	verbose    bool
}

// NewRootCommand builds the command tree. Tests drive it directly with
// SetArgs and their own output buffers.
func NewRootCommand() *cobra.Command {
	a := &app{cfg: config.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "heinscrape",
		Short: "Scrape HeinOnline search results into a flat citation table",
		Long: `heinscrape turns saved HeinOnline search result pages into a table of
citations, one row per article.

The scrape stage pulls every article out of the result pages into a raw CSV
with one cell per result line. The beautify stage classifies those cells into
title, journal and authors, parses them into typed fields and writes a flat
CSV with one column per field.

Examples:
  heinscrape scrape results-1.html results-2.html -o data.csv
  heinscrape beautify -i data.csv -o beautifiedData.csv --json records.json
  heinscrape run saved/*.html -o beautifiedData.csv --sqlite citations.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	a.cfg.BindFlags(flags)

	rootCmd.AddCommand(newScrapeCmd(a))
	rootCmd.AddCommand(newBeautifyCmd(a))
	rootCmd.AddCommand(newRunCmd(a))

	return rootCmd
}

// Execute runs the command line and exits non-zero on any error. SIGINT and
// SIGTERM cancel the running stage.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	var fatal *citation.FatalError
	if errors.As(err, &fatal) {
		fmt.Fprintf(w, "Error: %v\nOffending text:\n%s\n", fatal.Kind, fatal.Text)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}

func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	path := a.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := overrideFromFlags(cfg, cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(a.verbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.logger = logger

	a.logger.Debug("configuration loaded",
		zap.String("config", path),
		zap.Int("workers", cfg.Workers),
		zap.Int("rate", cfg.RateLimit),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("retries", cfg.MaxRetries))
	return nil
}

// overrideFromFlags copies every flag the user set explicitly onto cfg, so
// command line values win over the config file.
func overrideFromFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	bound := pflag.NewFlagSet("config", pflag.ContinueOnError)
	cfg.BindFlags(bound)

	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil || bound.Lookup(f.Name) == nil {
			return
		}
		if setErr := bound.Set(f.Name, f.Value.String()); setErr != nil {
			err = fmt.Errorf("flag --%s: %w", f.Name, setErr)
		}
	})
	return err
}

func newLogger(verbose bool) (*zap.Logger, error) {
	var level zapcore.Level
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		level = zapcore.DebugLevel
	case "WARN", "WARNING":
		level = zapcore.WarnLevel
	case "ERROR":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	zc.Sampling = nil
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

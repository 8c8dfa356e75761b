package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/s0up4200/arrdeck/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "arrdeck",
	Short: "Search torrent indexers and drive torrent clients from one place",
	Long: `arrdeck is a CLI tool that searches several torrent engines at once,
hands magnet links to qBittorrent, uTorrent, Transmission or Deluge, and
keeps a Trakt account in sync without tripping its rate limits.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initializeApp loads the configuration and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err = setupLogger(cfg.Logging)
	if err != nil {
		return err
	}

	logger.Debug().Str("config", cfgFile).Int("clients", len(cfg.Clients)).Msg("Configuration loaded")
	return nil
}

// initializeLogger sets up logging for commands that run without a config file
func initializeLogger(cmd *cobra.Command, args []string) error {
	lc := config.LoggingConfig{Level: "info", Format: "console", Color: true}
	if verbose {
		lc.Level = "debug"
	}

	var err error
	logger, err = setupLogger(lc)
	return err
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) (zerolog.Logger, error) {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	var out io.Writer = os.Stderr
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
		}
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to create log directory: %w", err)
		}

		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: max(cfg.MaxBackups, 0),
		}
		out = zerolog.MultiLevelWriter(out, rotator)
	}

	return zerolog.New(out).With().Timestamp().Logger(), nil
}

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/ringbuf/cmd/ringbuf/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ringbuf",
	Short: "Bounded single-producer/single-consumer ring buffer toolkit",
	Long: `ringbuf - move data through a fixed-capacity ring with backpressure.

A writer suspends while the ring is full, a reader suspends while it is
empty, and closing the writer lets the reader drain what is left before it
sees the end of the stream.

Configuration is read from the OS config directory:
  macOS:   ~/Library/Application Support/ringbuf/config.yaml
  Linux:   ~/.config/ringbuf/config.yaml
  Windows: %AppData%/ringbuf/config.yaml

Examples:
  # Filter JSON lines through a 64 byte ring
  cat events.jsonl | ringbuf pipe --capacity 64 --jq '.id'

  # Watch the wake protocol interactively
  ringbuf repl --capacity 2`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $CONFIG_DIR/ringbuf/config.yaml)")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	cfg, err := config.Load(configPath)
	if err != nil {
		configLoadErr = err
		cfg = config.Default()
	}
	globalConfig = cfg
	setupLogging(cfg)
}

func setupLogging(cfg *config.Config) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// GetConfig returns the global configuration, or the error that prevented
// loading it.
func GetConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, fmt.Errorf("config not available: %w", configLoadErr)
	}
	if globalConfig == nil {
		return config.Default(), nil
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// checkCapacity rejects capacities a ring cannot be built with.
func checkCapacity(n int) error {
	if n < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", n)
	}
	return nil
}

// capacityFlag resolves a --capacity flag against the configured default.
func capacityFlag(cmd *cobra.Command, flag int) (int, error) {
	if cmd.Flags().Changed("capacity") {
		if err := checkCapacity(flag); err != nil {
			return 0, err
		}
		return flag, nil
	}
	cfg, err := GetConfig()
	if err != nil {
		return 0, err
	}
	return cfg.Capacity, nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/v0xg/puppetrec/internal/config"
	"github.com/v0xg/puppetrec/internal/logging"
	"github.com/v0xg/puppetrec/internal/recording"
	"github.com/v0xg/puppetrec/internal/store"
	"go.uber.org/zap"
)

var (
	configFile string
	dbPath     string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "puppetrec",
		Short: "Turn recorded browser events into Puppeteer scripts",
		Long: `puppetrec compiles the events captured by a browser recorder into a runnable
Puppeteer script, stores recordings, and can replay them in a real browser.

Example:
  puppetrec compile events.json -o login.js
  puppetrec serve`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Options file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Recordings database (default: $PUPPETREC_DB_PATH or the user data dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")

	rootCmd.AddCommand(newCompileCmd(), newServeCmd(), newReplayCmd(), newRecordingsCmd())
	return rootCmd
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Development: cfg.LogDev || verbose})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore opens the recordings database from --db, the config, or the platform
// data directory, in that order.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "recordings.db")
	}
	return store.Open(path)
}

func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "puppetrec")
	case "windows":
		dir = filepath.Join(home, "AppData", "Roaming", "puppetrec")
	default: // linux and others
		dir = filepath.Join(home, ".local", "share", "puppetrec")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// readEvents decodes events from path, or from stdin when path is empty or "-".
// Malformed records are dropped and logged at debug.
func readEvents(path string, stdin io.Reader, logger *zap.Logger) ([]recording.Event, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open events file: %w", err)
		}
		defer f.Close()
		r = f
	}

	events, skipped, err := recording.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	for _, sk := range skipped {
		logger.Debug("skipped malformed event",
			zap.Int("index", sk.Index),
			zap.Error(sk.Err))
	}
	return events, nil
}

func progress(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

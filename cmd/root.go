// Package cmd provides the CLI commands for Eventlife.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eventlife/eventlife/internal/config"
	apperrors "github.com/eventlife/eventlife/internal/errors"
	"github.com/eventlife/eventlife/internal/logging"
	"github.com/eventlife/eventlife/internal/output"
	"github.com/eventlife/eventlife/internal/storage"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagConfig string
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// Shared per-invocation state.
var (
	cfg  *config.Config
	fmtr *output.Formatter
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eventlife",
	Short: "Event schedule and reminder tool",
	Long: `Eventlife keeps an event schedule and arms reminders that fire shortly
before each event starts.

Examples:
  eventlife events add "Morning standup" --at 9:30
  eventlife events list
  eventlife notify schedule
  eventlife daemon start
  eventlife dashboard`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		logCfg := logging.DefaultConfig()
		if flagDebug {
			logCfg = logging.DebugConfig()
		}
		logging.Init(logCfg)

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		fmtr = output.NewFormatter()
		fmtr.Format = output.ParseFormat(flagFormat)
		switch flagColor {
		case "always":
			fmtr.ColorMode = output.ColorAlways
		case "never":
			fmtr.ColorMode = output.ColorNever
		default:
			fmtr.ColorMode = output.ColorAuto
		}

		return nil
	},
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("eventlife %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// openDB opens the configured badger store.
func openDB() (*storage.DB, error) {
	return storage.Open(storage.Options{
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Die prints an error and exits.
func Die(err error) {
	os.Stderr.WriteString("Error: " + err.Error() + "\n")
	if suggestion := apperrors.Suggestion(err); suggestion != "" {
		os.Stderr.WriteString("Hint: " + suggestion + "\n")
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Path to config file")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

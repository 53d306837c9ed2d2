package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dshills/reel/internal/config"
	"github.com/dshills/reel/internal/logging"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// flagKeys maps command flags onto config override keys. Flags take
// precedence over REEL_* environment variables, which take precedence over
// the config file.
var flagKeys = map[string]string{
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
	"mode":       config.KeyInputMode,
	"lag":        config.KeyReplayLag,
	"step":       config.KeyReplayStep,
	"db":         config.KeyStorePath,
}

// RootOptions holds global flags and the resolved configuration shared by
// all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    int
	Format     string

	// Resolved by load.
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the reel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reel",
		Short: "Record and replay pointer and action input",
		Long: `reel records pointer and button input as timestamped frames of logical
actions and replays them deterministically through a binding table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (.toml, .yaml)")
	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "verbose output (repeat for more)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", "", "log format (text|json)")
	cmd.PersistentFlags().String("mode", "", "binding mode (unique|all|single)")

	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewDBCommand(opts))

	return cmd
}

// load resolves the configuration and logger for cmd. Repeated calls reuse
// the first result.
func (o *RootOptions) load(cmd *cobra.Command) error {
	if o.Config != nil {
		return nil
	}
	if o.Format == "" {
		o.Format = FormatText
	}

	cfg := config.DefaultConfig()
	if o.ConfigFile != "" {
		var err error
		cfg, err = config.Load(o.ConfigFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	v := config.NewViper()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return WrapExitError(ExitCommandError, "failed to bind flag "+name, err)
			}
		}
	}
	if err := cfg.Override(v); err != nil {
		return WrapExitError(ExitCommandError, "invalid override", err)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	logCfg := cfg.Log
	if o.Verbose > 0 {
		logCfg.Level = logging.VerbosityLevel(o.Verbose).String()
	}
	logCfg.Output = cmd.ErrOrStderr()

	o.Config = cfg
	o.Logger = logging.New(logCfg)
	o.Logger.Debug("config loaded", "file", o.ConfigFile, "mode", cfg.Input.Mode)
	return nil
}

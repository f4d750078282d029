// Package cli implements the templar command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opencode-ai/templar/internal/config"
	"github.com/opencode-ai/templar/internal/logging"
	"github.com/opencode-ai/templar/internal/manager"
	"github.com/opencode-ai/templar/internal/placeholder"
)

var (
	cfgFile        string
	dataPath       string
	logLevel       string
	jsonOutput     bool
	jsonlOutput    bool
	nonInteractive bool
	yesFlag        bool

	appConfig *config.Config
)

// Version is set at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "templar",
	Short:         "Manage and fill message templates",
	Long:          "templar keeps message templates grouped by platform and message type, and fills their {placeholder} fields to produce finished text.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput && jsonlOutput {
			return errors.New("--json and --jsonl are mutually exclusive")
		}
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.config/templar/config.yaml)")
	flags.StringVar(&dataPath, "data", "", "template file (default templates_data.json)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; use defaults")
	flags.BoolVarP(&yesFlag, "yes", "y", false, "skip confirmation prompts")
}

func initConfig(cmd *cobra.Command) error {
	v := config.NewViper()
	bindFlag(v, "store.path", cmd, "data")
	bindFlag(v, "logging.level", cmd, "log-level")

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Check the file passed with --config or fix its YAML",
			NextStep: "templar --config <path> platform list",
		}
	}
	appConfig = cfg

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger := logging.Component("cli")
	logger.Debug().
		Str("store", cfg.Store.Path).
		Bool("history", cfg.History.Enabled).
		Msg("configuration loaded")
	return nil
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		_ = v.BindPFlag(key, flag)
	}
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		appConfig = config.Default()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was requested.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// SkipConfirmation reports whether confirmations are answered without asking.
func SkipConfirmation() bool {
	return yesFlag
}

// PreflightError is an error with guidance on how to recover.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	return e.Message
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

func printError(out io.Writer, err error) {
	fmt.Fprintf(out, "Error: %v\n", err)

	var preflight *PreflightError
	if errors.As(err, &preflight) {
		if preflight.Hint != "" {
			fmt.Fprintf(out, "Hint: %s\n", preflight.Hint)
		}
		if preflight.NextStep != "" {
			fmt.Fprintf(out, "Next: %s\n", preflight.NextStep)
		}
		return
	}

	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(out, "Hint: %s\n", hint)
	}
}

func hintFor(err error) string {
	var missing *placeholder.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("Pass --set %s=<value> or add {%s} to the template's fields with 'templar template set'", missing.Name, missing.Name)
	case errors.Is(err, placeholder.ErrMalformedTemplate):
		return "Use {{ and }} for literal braces"
	case errors.Is(err, manager.ErrPlatformNotFound):
		return "List platforms with 'templar platform list'"
	case errors.Is(err, manager.ErrMessageTypeNotFound):
		return "List message types with 'templar type list <platform>'"
	case errors.Is(err, manager.ErrNotPersisted):
		return "Check that the template file location is writable"
	case errors.Is(err, manager.ErrNoPlaceholders):
		return "Write at least one {field} in the template"
	}
	return ""
}

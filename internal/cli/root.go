// Package cli implements the netforge command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/opencode-ai/netforge/internal/config"
	"github.com/opencode-ai/netforge/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	logLevel       string
	jsonOutput     bool
	jsonlOutput    bool
	nonInteractive bool
	noProgress     bool

	appConfig *config.Config
	logger    = zerolog.Nop()
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "netforge",
	Short: "Edit agent network HOCON files",
	Long: `netforge builds agent network definitions: variable bindings, agent
nodes wired into a tool graph, and function specifications. Values bound to
variables are written as ${name} placeholders on export and expanded again
on import.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		appConfig = cfg
		logger = logging.New(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/netforge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	rootCmd.PersistentFlags().BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; use defaults")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress output")
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// GetConfig returns the loaded configuration, or the defaults before the
// root command has run.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput writes v as indented JSON, or as one JSON value per line for
// slices when --jsonl is set.
func WriteOutput(w io.Writer, v any) error {
	if IsJSONLOutput() {
		if items, ok := v.([]any); ok {
			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			for _, item := range items {
				if err := enc.Encode(item); err != nil {
					return err
				}
			}
			return nil
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PreflightError explains why a command cannot run and what to do next.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	if e.NextStep != "" {
		msg += "\n  try:  " + e.NextStep
	}
	return msg
}

// PrintError writes err to stderr in the error style.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, styles.Error.Render("Error: ")+err.Error())
}

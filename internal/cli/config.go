// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Commands for validating and inspecting the audgraph configuration.",
}

// Loading and validation already happen in the root's pre-run, so reaching
// RunE means the configuration is valid.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the current configuration file and environment variables.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		slog.Info("Configuration is valid")
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current configuration values from file and environment variables.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Current Configuration:")
		fmt.Fprintf(w, "  Engine:\n")
		fmt.Fprintf(w, "    Sample rate: %d\n", cfg.Engine.SampleRate)
		fmt.Fprintf(w, "    Fade duration: %s\n", cfg.Engine.FadeDuration)
		fmt.Fprintf(w, "  Output:\n")
		fmt.Fprintf(w, "    Buffer size: %d\n", cfg.Output.BufferSize)
		fmt.Fprintf(w, "  Logging:\n")
		fmt.Fprintf(w, "    Level: %s\n", cfg.Logging.Level)
		fmt.Fprintf(w, "    Format: %s\n", cfg.Logging.Format)
		fmt.Fprintf(w, "    File: %s\n", orNone(cfg.Logging.File))
		fmt.Fprintf(w, "  Metrics:\n")
		fmt.Fprintf(w, "    Listen: %s\n", orNone(cfg.Metrics.Listen))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

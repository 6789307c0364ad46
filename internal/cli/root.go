// SPDX-License-Identifier: EPL-2.0

// Package cli implements the audgraph command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ik5/audgraph/config"
	"github.com/ik5/audgraph/logger"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	appLog *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audgraph",
	Short: "Play and render audio through a node graph",
	Long: `audgraph decodes WAV, MP3, Ogg Vorbis and AIFF audio, runs it through a
sound graph with volume, pan, filters and reverb, and either plays the result
on the system speaker or renders it offline to a WAV file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// persistent flag name -> config key
var boundFlags = map[string]string{
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"log-file":    "logging.file",
	"sample-rate": "engine.sample_rate",
	"fade":        "engine.fade_duration",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("log-file", "", "also write logs to this file, rotated by size")
	flags.Int("sample-rate", 44100, "engine sample rate in Hz")
	flags.Duration("fade", 0, "declick fade duration (default 20ms)")
}

// setup loads the configuration and installs the logger before any command
// runs.
func setup(cmd *cobra.Command, _ []string) error {
	v := config.New(cfgFile)
	for name, key := range boundFlags {
		f := cmd.Root().PersistentFlags().Lookup(name)
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	if verbose {
		v.Set("logging.level", "debug")
	}

	c, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	l, err := logger.Setup(c.Logging.LoggerOptions())
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	cfg, appLog = c, l
	return nil
}

func teardown(*cobra.Command, []string) {
	if appLog != nil {
		_ = appLog.Close()
	}
}

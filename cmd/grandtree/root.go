package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phanxgames/grandtree"
	"github.com/phanxgames/grandtree/internal/logger"
)

// rootFlags override values from the configuration file.
type rootFlags struct {
	configPath string
	theme      string
	noSnow     bool
	seed       uint64
	debug      bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	runOpts := &runOptions{}

	cmd := &cobra.Command{
		Use:           "grandtree",
		Short:         "Grand Holiday renders an interactive, decorated 3D tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd, flags, runOpts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&flags.theme, "theme", "", "Initial collection: gold, patriot or diamond")
	pf.BoolVar(&flags.noSnow, "no-snow", false, "Start with snow turned off")
	pf.Uint64Var(&flags.seed, "seed", 0, "Foliage layout seed (0 picks one at random)")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug checks and frame statistics")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error or disabled")
	addRunFlags(cmd, runOpts)

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newTUICmd(flags))
	cmd.AddCommand(newLayoutCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*grandtree.Config, error) {
	cfg, err := grandtree.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("theme") {
		cfg.View.Theme = flags.theme
	}
	if changed("no-snow") {
		cfg.View.Snowing = !flags.noSnow
	}
	if changed("seed") {
		cfg.Layout.Seed = flags.seed
	}
	if changed("debug") {
		cfg.Debug = flags.debug
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *grandtree.Config, w io.Writer) (*logger.Logger, error) {
	level := cfg.Log.Level
	if cfg.Debug && level == "info" {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: cfg.Log.Human, Writer: w})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

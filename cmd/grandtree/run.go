package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/grandtree"
)

type runOptions struct {
	scriptPath string
	showFPS    bool
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.scriptPath, "script", "", "JSON test script to play after startup")
	cmd.Flags().BoolVar(&opts.showFPS, "fps", false, "Show the FPS overlay")
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the tree in a window (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd, flags, opts)
		},
	}
	addRunFlags(cmd, opts)

	return cmd
}

func runWindow(cmd *cobra.Command, flags *rootFlags, opts *runOptions) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if opts.showFPS {
		cfg.Window.ShowFPS = true
	}
	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var runner *grandtree.TestRunner
	if opts.scriptPath != "" {
		runner, err = loadScript(opts.scriptPath)
		if err != nil {
			return err
		}
	}

	app, err := grandtree.NewApp(grandtree.AppOptions{
		Config: cfg,
		Logger: log.Zerolog(),
		Runner: runner,
	})
	if err != nil {
		return err
	}
	log.Debug("window opening")
	if err := grandtree.Run(app, grandtree.RunConfigFrom(cfg)); err != nil {
		log.Error(err, "run failed")
		return err
	}
	return nil
}

func loadScript(path string) (*grandtree.TestRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	runner, err := grandtree.LoadTestScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return runner, nil
}

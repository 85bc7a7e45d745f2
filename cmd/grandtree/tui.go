package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/phanxgames/grandtree"
	"github.com/phanxgames/grandtree/internal/logger"
	"github.com/phanxgames/grandtree/tui"
)

func newTUICmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Render the tree in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	return cmd
}

func runTUI(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	devices, err := grandtree.NewMediaDevices(cfg.Camera.Device)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	log := logger.Nop()

	vm := grandtree.NewViewModel(cfg.ViewState())
	composer := grandtree.NewComposer(grandtree.NewLayout(cfg.LayoutParams(), grandtree.NewSeededRand(cfg.Layout.Seed)))
	bridge := grandtree.NewCameraBridge(devices, vm, cfg.MediaConstraints(), log.Component("camera").Zerolog())
	defer bridge.Close()

	model := tui.NewModel(tui.Options{
		Store:    vm,
		Composer: composer,
		Bridge:   bridge,
		Seed:     cfg.Layout.Seed,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal renderer: %w", err)
	}
	return nil
}

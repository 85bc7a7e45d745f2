package grandtree

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// TPS overrides the tick rate. Zero keeps Ebitengine's default of 60.
	TPS int
}

// RunConfigFrom returns the window settings of cfg.
func RunConfigFrom(cfg *Config) RunConfig {
	return RunConfig{Title: cfg.Window.Title, Width: cfg.Window.Width, Height: cfg.Window.Height}
}

// Run opens a resizable window and runs app until the window closes or a
// test script quits. The app is closed on return.
func Run(app *App, cfg RunConfig) error {
	defer app.Close()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}

	err := ebiten.RunGame(app)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

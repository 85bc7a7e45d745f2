package grandtree

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
)

// Backdrop grade applied to camera frames so the tree stays the focus.
const (
	backdropContrast   = 0.9
	backdropSaturation = 0.8
)

// AppOptions wires an App's collaborators. Zero fields get defaults.
type AppOptions struct {
	Config  *Config
	Logger  zerolog.Logger
	Devices MediaDevices
	Runner  *TestRunner
}

// App is the root owner of the view model, composer, scene, panel and
// camera bridge. It implements ebiten.Game.
type App struct {
	cfg      *Config
	logger   zerolog.Logger
	vm       *ViewModel
	composer *Composer
	scene    *Scene
	panel    *Panel
	bridge   *CameraBridge
	fps      *FPSOverlay
	runner   *TestRunner

	backdrop    *ebiten.Image
	width       int
	height      int
	unsubscribe func()
	desc        *SceneDesc
}

// NewApp builds the application from opts and applies the initial scene.
func NewApp(opts AppOptions) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	devices := opts.Devices
	if devices == nil {
		d, err := NewMediaDevices(cfg.Camera.Device)
		if err != nil {
			return nil, fmt.Errorf("camera device: %w", err)
		}
		devices = d
	}

	w, h := cfg.Window.Width, cfg.Window.Height
	bounds := Rect{Width: float64(w), Height: float64(h)}
	a := &App{
		cfg:    cfg,
		logger: opts.Logger,
		vm:     NewViewModel(cfg.ViewState()),
		fps:    NewFPSOverlay(),
		runner: opts.Runner,
		width:  w,
		height: h,
	}
	a.composer = NewComposer(NewLayout(cfg.LayoutParams(), NewSeededRand(cfg.Layout.Seed)))

	a.scene = NewScene(bounds)
	a.scene.SetLogger(a.logger.With().Str("component", "scene").Logger())
	a.scene.ScreenshotDir = cfg.ScreenshotDir
	a.scene.SetDebugMode(cfg.Debug)
	grade := NewColorMatrixFilter()
	grade.SetGrade(backdropContrast, backdropSaturation)
	a.scene.BackdropGrade = grade

	a.panel = NewPanel(a.vm, bounds, GoFonts(1), a.logger.With().Str("component", "panel").Logger())
	a.scene.AddPointerTarget(a.panel)

	a.bridge = NewCameraBridge(devices, a.vm, cfg.MediaConstraints(),
		a.logger.With().Str("component", "camera").Logger())

	if a.runner != nil {
		a.runner.Updater = a.vm
		a.scene.SetTestRunner(a.runner)
	}

	a.unsubscribe = a.vm.Subscribe(a.onChange)
	a.recompose()
	a.bridge.Sync(a.vm.State().UseCamera)

	a.logger.Info().
		Int("foliage", len(a.composer.Layout().Foliage)).
		Int("ornaments", len(a.composer.Layout().Ornaments)).
		Int("lights", len(a.composer.Layout().Lights)).
		Str("theme", a.vm.State().Theme.String()).
		Msg("scene ready")
	return a, nil
}

// ViewModel returns the state owner. Updates through it recompose the scene.
func (a *App) ViewModel() *ViewModel { return a.vm }

// Scene returns the rendered scene.
func (a *App) Scene() *Scene { return a.scene }

// Panel returns the control panel.
func (a *App) Panel() *Panel { return a.panel }

// Bridge returns the camera bridge.
func (a *App) Bridge() *CameraBridge { return a.bridge }

// SceneDesc returns the most recently applied description.
func (a *App) SceneDesc() *SceneDesc { return a.desc }

func (a *App) onChange(field Field, prev, next ViewState) {
	a.logger.Debug().Str("field", string(field)).Msg("state changed")
	a.recompose()
	if field == FieldUseCamera {
		a.bridge.Sync(next.UseCamera)
	}
}

func (a *App) recompose() {
	a.desc = a.composer.Compose(a.vm.State())
	a.scene.Apply(a.desc)
}

// Update advances one tick: camera results, tree rotation, panel
// animations, then the scene with its input.
func (a *App) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		a.scene.Screenshot("manual")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		a.scene.SetDebugMode(!a.scene.debug)
	}

	a.tick(dt)
	a.scene.Update()

	if a.runner != nil && a.runner.QuitRequested() {
		if err := a.runner.Err(); err != nil {
			return fmt.Errorf("test script: %w", err)
		}
		return ebiten.Termination
	}
	return nil
}

// tick runs the per-frame work that does not read real input.
func (a *App) tick(dt float64) {
	a.bridge.Poll()
	a.pumpBackdrop()

	a.scene.SetTreeRotation(a.composer.Tick(dt, a.vm.State()))
	a.panel.Update(float32(dt))
	if a.cfg.Window.ShowFPS {
		a.fps.Update(dt)
	}
}

// pumpBackdrop copies the latest camera frame into the backdrop image and
// fades the backdrop with the bridge state.
func (a *App) pumpBackdrop() {
	frame, ok := a.bridge.ReadFrame()
	if ok {
		a.writeBackdrop(frame)
	}
	a.scene.ShowBackdrop(a.bridge.State() == BridgeActive && a.backdrop != nil)
}

func (a *App) writeBackdrop(frame *image.RGBA) {
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if a.backdrop == nil || a.backdrop.Bounds().Dx() != w || a.backdrop.Bounds().Dy() != h {
		if a.backdrop != nil {
			a.backdrop.Deallocate()
		}
		a.backdrop = ebiten.NewImage(w, h)
	}
	a.backdrop.WritePixels(frame.Pix)
	if a.scene.Backdrop() != a.backdrop {
		a.scene.SetBackdrop(a.backdrop)
	}
}

// Draw composes the backdrop, the tree, the panel and the FPS overlay, then
// writes any queued screenshots.
func (a *App) Draw(screen *ebiten.Image) {
	a.scene.Draw(screen)
	a.panel.Draw(screen)
	if a.cfg.Window.ShowFPS {
		a.fps.Draw(screen)
	}
	a.scene.flushScreenshots(screen)
}

// Layout tracks the window size, resizing the camera viewport and the
// panel's area.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.width, a.height = outsideWidth, outsideHeight
		r := Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)}
		a.scene.Camera().SetViewport(r)
		a.panel.SetBounds(r)
	}
	return outsideWidth, outsideHeight
}

// Close stops the camera and detaches from the view model.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.bridge.Close()
	if a.backdrop != nil {
		a.scene.SetBackdrop(nil)
		a.backdrop.Deallocate()
		a.backdrop = nil
	}
}

package grandtree

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultCommandCap = 4096
	// backdropFade is the backdrop fade in and out duration in seconds.
	backdropFade = 0.5
)

// Scene is the top-level object that owns the node tree, the camera, the
// light rig, input state and render buffers.
type Scene struct {
	root   *Node
	camera *Camera
	rig    *LightRig
	debug  bool
	logger zerolog.Logger

	// Background fills the offscreen layer before the scene is drawn. Nil
	// leaves it transparent so the backdrop shows through.
	Background *Color
	// BackdropGrade, if set, color-grades the backdrop before it is drawn.
	BackdropGrade *ColorMatrixFilter
	// OrbitEnabled routes unclaimed drags, wheel and pinch to the camera.
	OrbitEnabled bool
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	// Render state
	commands   []RenderCommand
	sortBuf    []RenderCommand
	arenaVerts []ebiten.Vertex
	arenaInds  []uint32
	batchVerts []ebiten.Vertex
	batchInds  []uint32
	drawCalls  int
	frame      frameView

	scratchPos    []mgl64.Vec3
	scratchNormal []mgl64.Vec3
	scratchDepth  []float64
	scratchOK     []bool

	reflection struct {
		source   *Node
		height   float64
		strength float64
	}

	// Post-processing
	filters []Filter
	rtPool  renderTexturePool
	rtSize  [2]int

	// Backdrop
	backdrop        *ebiten.Image
	backdropAlpha   float64
	backdropTween   *gween.Tween
	backdropVisible bool

	// Reconciled nodes and per-frame animations
	nodes    sceneNodes
	floaters []*Floater
	tweens   []*TweenGroup

	// Input state
	handlers     handlerRegistry
	targets      []PointerTarget
	orbit        orbitController
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	pinch        pinchState
	injectQueue  []syntheticPointerEvent

	screenshotQueue []string
	testRunner      *TestRunner
}

// NewScene creates a scene with a root container, a camera covering
// viewport and an empty light rig.
func NewScene(viewport Rect) *Scene {
	s := &Scene{
		root:          NewContainer("root"),
		camera:        newCamera(viewport),
		rig:           NewLightRig(),
		logger:        zerolog.Nop(),
		OrbitEnabled:  true,
		ScreenshotDir: "screenshots",
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:       make([]RenderCommand, 0, defaultCommandCap),
		dragDeadZone:  defaultDragDeadZone,
	}
	s.orbit.cam = s.camera
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Camera returns the scene's camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Rig returns the scene's light rig.
func (s *Scene) Rig() *LightRig {
	return s.rig
}

// SetLogger sets the logger used for debug stats.
func (s *Scene) SetLogger(l zerolog.Logger) {
	s.logger = l
	debugLogger = l
}

// SetFilters replaces the post-processing chain.
func (s *Scene) SetFilters(filters ...Filter) {
	s.filters = append(s.filters[:0], filters...)
}

// Filters returns the post-processing chain. The returned slice MUST NOT be
// mutated.
func (s *Scene) Filters() []Filter {
	return s.filters
}

// SetReflection makes the floor at height y mirror source at the given
// strength. A nil source or zero strength disables the reflection.
func (s *Scene) SetReflection(source *Node, y, strength float64) {
	s.reflection.source = source
	s.reflection.height = y
	s.reflection.strength = strength
}

// AddTween registers a tween group advanced by Update until it completes.
func (s *Scene) AddTween(g *TweenGroup) {
	s.tweens = append(s.tweens, g)
}

// AddFloater registers an idle float advanced by Update.
func (s *Scene) AddFloater(f *Floater) {
	s.floaters = append(s.floaters, f)
}

// --- Backdrop ---

// Backdrop returns the image drawn behind the scene, or nil.
func (s *Scene) Backdrop() *ebiten.Image {
	return s.backdrop
}

// SetBackdrop sets the image drawn behind the scene, scaled to cover the
// screen. Passing nil removes it immediately.
func (s *Scene) SetBackdrop(img *ebiten.Image) {
	s.backdrop = img
	if img == nil {
		s.backdropAlpha = 0
		s.backdropTween = nil
		s.backdropVisible = false
	}
}

// ShowBackdrop fades the backdrop in or out.
func (s *Scene) ShowBackdrop(visible bool) {
	if visible == s.backdropVisible {
		return
	}
	s.backdropVisible = visible
	to := float32(0)
	if visible {
		to = 1
	}
	s.backdropTween = gween.New(float32(s.backdropAlpha), to, backdropFade, ease.OutQuad)
}

// BackdropAlpha returns the current backdrop opacity.
func (s *Scene) BackdropAlpha() float64 {
	return s.backdropAlpha
}

func (s *Scene) updateBackdrop(dt float32) {
	if s.backdropTween == nil {
		return
	}
	v, done := s.backdropTween.Update(dt)
	s.backdropAlpha = float64(v)
	if done {
		s.backdropTween = nil
	}
}

func (s *Scene) drawBackdrop(screen *ebiten.Image) {
	if s.backdrop == nil || s.backdropAlpha <= 0 {
		return
	}
	sb := screen.Bounds()
	bb := s.backdrop.Bounds()
	if bb.Dx() == 0 || bb.Dy() == 0 {
		return
	}
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	bw, bh := float64(bb.Dx()), float64(bb.Dy())
	k := max(sw/bw, sh/bh)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(k, k)
	op.GeoM.Translate((sw-bw*k)/2, (sh-bh*k)/2)
	op.ColorScale.ScaleAlpha(float32(s.backdropAlpha))
	op.Filter = ebiten.FilterLinear

	src := s.backdrop
	if s.BackdropGrade != nil {
		graded := s.rtPool.Acquire(bb.Dx(), bb.Dy())
		defer s.rtPool.Release(graded)
		s.BackdropGrade.Apply(s.backdrop, graded)
		src = graded
	}
	screen.DrawImage(src, &op)
}

// --- Frame loop ---

// Update processes input, advances animations, and simulates particles.
func (s *Scene) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	s.step(dt)
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()
}

// step advances the scene by dt seconds without reading input.
func (s *Scene) step(dt float32) {
	for _, f := range s.floaters {
		f.Update(float64(dt))
	}
	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(dt)
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live

	updateWorldTransform(s.root, mgl64.Ident4(), 1, false)
	s.rig.sync()
	updateNodes(s.root, float64(dt))
	s.camera.update(dt)
	s.updateBackdrop(dt)

	for _, f := range s.filters {
		if af, ok := f.(animatedFilter); ok {
			af.update(float64(dt))
		}
	}
}

// Draw draws the backdrop, then the scene with its post-processing chain.
func (s *Scene) Draw(screen *ebiten.Image) {
	s.drawBackdrop(screen)
	s.drawScene(screen)
}

// drawScene renders the node tree into a pooled offscreen image, runs the
// filter chain, and composites the result over target.
func (s *Scene) drawScene(target *ebiten.Image) {
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.updateWorldTransforms()
	s.buildCommands()

	if s.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	b := target.Bounds()
	w, h := b.Dx(), b.Dy()
	if s.rtSize != [2]int{w, h} {
		s.rtPool.Drain()
		s.rtSize = [2]int{w, h}
	}
	off := s.rtPool.Acquire(w, h)
	if s.Background != nil {
		off.Fill(s.Background.toRGBA())
	}

	s.drawCalls = 0
	s.submitBatches(off)

	if s.debug {
		stats.submitTime = time.Since(t0)
		t0 = time.Now()
	}

	result := applyFilters(s.filters, off, &s.rtPool)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	target.DrawImage(result, &op)

	if result != off {
		s.rtPool.Release(off)
	}
	s.rtPool.Release(result)

	if s.debug {
		stats.filterTime = time.Since(t0)
		stats.batchCount = countBatches(s.commands)
		stats.drawCallCount = s.drawCalls
		stats.triangleCount = countTriangles(s.commands)
		s.debugLog(stats)
	}
}

// updateWorldTransforms refreshes world matrices so Draw sees edits made
// after Update.
func (s *Scene) updateWorldTransforms() {
	updateWorldTransform(s.root, mgl64.Ident4(), 1, false)
}

// DrawCalls returns the number of DrawTriangles calls issued by the last
// Draw.
func (s *Scene) DrawCalls() int {
	return s.drawCalls
}

// CommandCount returns the number of render commands built by the last Draw.
func (s *Scene) CommandCount() int {
	return len(s.commands)
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene.
var globalDebug bool

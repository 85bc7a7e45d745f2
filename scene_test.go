package grandtree

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewScene(t *testing.T) {
	s := NewScene(Rect{Width: 640, Height: 480})
	if s.Root() == nil || s.Root().Name != "root" {
		t.Fatal("scene should have a root container")
	}
	if s.Root().Type != NodeTypeContainer {
		t.Errorf("root.Type = %d, want NodeTypeContainer", s.Root().Type)
	}
	if s.Camera().Viewport != (Rect{Width: 640, Height: 480}) {
		t.Errorf("viewport = %v", s.Camera().Viewport)
	}
	if s.Rig() == nil || len(s.Rig().Lights()) != 0 {
		t.Error("rig should start empty")
	}
	if !s.OrbitEnabled {
		t.Error("orbit should be enabled by default")
	}
	if s.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q", s.ScreenshotDir)
	}
	if s.orbit.cam != s.Camera() {
		t.Error("orbit controller should drive the scene camera")
	}
}

func TestSceneStepUpdatesTransforms(t *testing.T) {
	s := renderScene()
	n := NewContainer("n")
	s.Root().AddChild(n)
	n.SetPosition(1, 2, 3)
	s.step(1.0 / 60)
	assertVec3(t, "world", n.WorldPosition(), mgl64.Vec3{1, 2, 3})
}

func TestSceneStepSyncsAttachedLights(t *testing.T) {
	s := renderScene()
	star := NewContainer("star")
	star.SetPosition(0, 8, 0)
	s.Root().AddChild(star)
	l := &Light{Name: "starGlow", Kind: LightPoint, Enabled: true, Target: star, Offset: mgl64.Vec3{0, 1, 0}}
	s.Rig().AddLight(l)
	s.step(1.0 / 60)
	assertVec3(t, "light", l.Position, mgl64.Vec3{0, 9, 0})
}

func TestSceneStepRunsFloaters(t *testing.T) {
	s := renderScene()
	n := NewContainer("n")
	s.Root().AddChild(n)
	s.AddFloater(NewFloater(n, 1, 1, 1, 2))
	s.step(0.5)
	if n.Position == (mgl64.Vec3{}) {
		t.Error("floater should move the node")
	}
}

func TestSceneStepSimulatesSparkles(t *testing.T) {
	s := renderScene()
	n := NewSparkles("snow", SparkleConfig{Count: 4, Extent: 1, Speed: 1, Seed: 9})
	s.Root().AddChild(n)
	before := n.Sparkles.sparkles[0].pos
	s.step(0.2)
	if n.Sparkles.sparkles[0].pos == before {
		t.Error("sparkles should drift during step")
	}
}

// --- Backdrop ---

func TestShowBackdropFades(t *testing.T) {
	s := renderScene()
	s.ShowBackdrop(true)
	s.step(backdropFade / 2)
	mid := s.BackdropAlpha()
	if mid <= 0 || mid >= 1 {
		t.Errorf("alpha midway = %v, want between 0 and 1", mid)
	}
	s.step(backdropFade)
	if s.BackdropAlpha() != 1 {
		t.Errorf("alpha = %v, want 1", s.BackdropAlpha())
	}

	s.ShowBackdrop(false)
	s.step(backdropFade * 2)
	if s.BackdropAlpha() != 0 {
		t.Errorf("alpha = %v, want 0", s.BackdropAlpha())
	}
}

func TestShowBackdropSameStateNoop(t *testing.T) {
	s := renderScene()
	s.ShowBackdrop(false)
	if s.backdropTween != nil {
		t.Error("hiding a hidden backdrop should not start a fade")
	}
}

func TestSetBackdropNilResets(t *testing.T) {
	s := renderScene()
	s.ShowBackdrop(true)
	s.step(backdropFade)
	s.SetBackdrop(nil)
	if s.BackdropAlpha() != 0 || s.Backdrop() != nil || s.backdropVisible {
		t.Error("removing the backdrop should reset its fade")
	}
}

// --- Misc ---

func TestSceneSetReflection(t *testing.T) {
	s := renderScene()
	tree := NewContainer("tree")
	s.SetReflection(tree, -2, 0.4)
	if s.reflection.source != tree || s.reflection.height != -2 || math.Abs(s.reflection.strength-0.4) > 1e-12 {
		t.Errorf("reflection = %+v", s.reflection)
	}
}

func TestSceneDebugModeMirrorsGlobal(t *testing.T) {
	s := renderScene()
	s.SetDebugMode(true)
	if !globalDebug {
		t.Error("debug mode should set the global flag")
	}
	s.SetDebugMode(false)
	if globalDebug {
		t.Error("debug mode off should clear the global flag")
	}
}

package grandtree

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func appliedScene(t *testing.T, st ViewState) (*Scene, *Composer) {
	t.Helper()
	c := newTestComposer(t)
	s := NewScene(Rect{Width: 1280, Height: 720})
	s.Apply(c.Compose(st))
	return s, c
}

func TestApplyBuildsNamedNodes(t *testing.T) {
	s, _ := appliedScene(t, DefaultViewState())
	for _, name := range []string{
		NameTree, NameTrunk, NameFoliage, NameOrnaments, NameLights,
		NameRibbon, NameStarGroup, NameStar, NameStarSparkle, NameFloor, NameSnow,
	} {
		require.NotNil(t, s.Node(name), "node %q", name)
	}
	require.Same(t, s.Root(), s.Node("root"))
	require.Nil(t, s.Node("missing"))
}

func TestApplyKeepsNodeIdentity(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	ornaments := s.Node(NameOrnaments)
	sparkles := s.Node(NameStarSparkle).Sparkles

	st := DefaultViewState()
	st.Theme = ThemeDiamond
	s.Apply(c.Compose(st))

	require.Same(t, ornaments, s.Node(NameOrnaments))
	require.Same(t, sparkles, s.Node(NameStarSparkle).Sparkles)
}

func TestApplyThemeRecolorsOrnaments(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	before := s.Node(NameOrnaments).Instances[0].Color

	st := DefaultViewState()
	st.Theme = ThemePatriot
	s.Apply(c.Compose(st))

	require.NotEqual(t, before, s.Node(NameOrnaments).Instances[0].Color)
}

func TestApplySnowToggle(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	snow := s.Node(NameSnow)
	require.True(t, snow.Visible)
	require.True(t, snow.Sparkles.IsActive())
	require.Equal(t, 300, snow.Sparkles.Len())

	st := DefaultViewState()
	st.IsSnowing = false
	s.Apply(c.Compose(st))
	require.False(t, snow.Visible)
	require.False(t, snow.Sparkles.IsActive())
}

func TestApplyCameraModeDropsFloorAndBackground(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	require.NotNil(t, s.Background)
	require.True(t, s.Node(NameFloor).Visible)
	require.NotNil(t, s.reflection.source)
	require.Len(t, s.Filters(), 3)

	st := DefaultViewState()
	st.UseCamera = true
	s.Apply(c.Compose(st))

	require.Nil(t, s.Background)
	require.False(t, s.Node(NameFloor).Visible)
	require.Nil(t, s.reflection.source)
	require.Nil(t, s.Rig().Fog)
	require.Len(t, s.Filters(), 2)
	require.InDelta(t, 0.8, s.Rig().Light(NameAmbient).Intensity, 1e-9)
}

func TestApplyRigLightsByName(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	key := s.Rig().Light(NameKeySpot)
	require.NotNil(t, key)
	require.InDelta(t, 1.5*2.5, key.Intensity, 1e-9)
	require.True(t, key.CastShadow)

	star := s.Rig().Light(NameStarLight)
	require.NotNil(t, star)
	require.Same(t, s.Node(NameStarGroup), star.Target)

	st := DefaultViewState()
	st.LightIntensity = 3
	s.Apply(c.Compose(st))
	require.Same(t, key, s.Rig().Light(NameKeySpot))
	require.InDelta(t, 7.5, key.Intensity, 1e-9)
	require.Len(t, s.Rig().Lights(), 6)
}

func TestApplyEffectsReuseFilters(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	noise := s.nodes.noise
	require.NotNil(t, noise)

	st := DefaultViewState()
	st.UseCamera = true
	s.Apply(c.Compose(st))
	s.Apply(c.Compose(DefaultViewState()))

	require.Same(t, noise, s.nodes.noise)
	_, ok := s.Filters()[0].(*BloomFilter)
	require.True(t, ok, "bloom should run first")
}

func TestApplySharesGeometry(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	geo := s.Node(NameOrnaments).Geometry
	s.Apply(c.Compose(DefaultViewState()))
	require.Same(t, geo, s.Node(NameOrnaments).Geometry)
}

func TestApplyCameraPlacedOnce(t *testing.T) {
	s, c := appliedScene(t, DefaultViewState())
	cam := s.Camera()
	require.InDelta(t, 12, cam.Position()[2], 1e-6)

	cam.Zoom(3)
	cam.update(1)
	moved := cam.Position()
	s.Apply(c.Compose(DefaultViewState()))
	require.InDelta(t, moved[2], cam.Position()[2], 1e-9)
}

func TestSetTreeRotation(t *testing.T) {
	NewScene(Rect{}).SetTreeRotation(1)

	s, _ := appliedScene(t, DefaultViewState())
	s.SetTreeRotation(math.Pi / 2)
	s.updateWorldTransforms()
	tree := s.Node(NameTree)
	got := tree.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
	require.InDelta(t, -1, got[2], 1e-9)
}

package grandtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestComposer(t testing.TB) *Composer {
	t.Helper()
	return NewComposer(NewLayout(DefaultLayoutParams(), NewSeededRand(1)))
}

func TestComposePatriotOrnamentsAlternate(t *testing.T) {
	c := newTestComposer(t)
	vm := NewViewModel(DefaultViewState())
	require.NoError(t, vm.Update(FieldTheme, "patriot"))

	d := c.Compose(vm.State())
	orn := d.Tree.Ornaments.Instances
	require.Equal(t, "#b22234", orn[0].Color.Hex())
	require.Equal(t, "#3c3b6e", orn[1].Color.Hex())
	require.Equal(t, "#b22234", orn[2].Color.Hex())

	left, ok := d.Light(NameFillLeft)
	require.True(t, ok)
	require.Equal(t, "#ff0000", left.Color.Hex())
	right, ok := d.Light(NameFillRight)
	require.True(t, ok)
	require.Equal(t, "#0000ff", right.Color.Hex())
}

func TestComposeSnowToggle(t *testing.T) {
	c := newTestComposer(t)
	vm := NewViewModel(DefaultViewState())

	require.NoError(t, vm.Update(FieldIsSnowing, false))
	require.Nil(t, c.Compose(vm.State()).Snow)

	require.NoError(t, vm.Update(FieldIsSnowing, true))
	d := c.Compose(vm.State())
	require.NotNil(t, d.Snow)
	require.Equal(t, "#ffd700", d.Snow.Color.Hex())
	require.Equal(t, 300, d.Snow.Count)

	require.NoError(t, vm.Update(FieldTheme, ThemeDiamond))
	require.Equal(t, "#ffffff", c.Compose(vm.State()).Snow.Color.Hex())
}

func TestTickRotation(t *testing.T) {
	c := newTestComposer(t)
	got := c.Tick(1.0, DefaultViewState())
	require.InDelta(t, 0.04, got, 1e-12)
	require.InDelta(t, 0.04, c.Compose(DefaultViewState()).Tree.Rotation, 1e-12)

	// Zero speed holds still.
	s := DefaultViewState()
	s.RotationSpeed = 0
	require.InDelta(t, 0.04, c.Tick(5, s), 1e-12)
}

func TestComposeCameraModeStripsEnvironment(t *testing.T) {
	c := newTestComposer(t)
	s := DefaultViewState()

	d := c.Compose(s)
	require.NotNil(t, d.Background)
	require.NotNil(t, d.Fog)
	require.NotNil(t, d.Floor)
	_, ok := d.Effect(EffectVignette)
	require.True(t, ok)
	amb, _ := d.Light(NameAmbient)
	require.Equal(t, 0.2, amb.Intensity)

	s.UseCamera = true
	d = c.Compose(s)
	require.Nil(t, d.Background)
	require.Nil(t, d.Fog)
	require.Nil(t, d.Floor)
	_, ok = d.Effect(EffectVignette)
	require.False(t, ok)
	_, ok = d.Effect(EffectBloom)
	require.True(t, ok)
	_, ok = d.Effect(EffectNoise)
	require.True(t, ok)
	amb, _ = d.Light(NameAmbient)
	require.Equal(t, 0.8, amb.Intensity)
}

func TestComposeKeyLightFollowsIntensity(t *testing.T) {
	c := newTestComposer(t)
	s := DefaultViewState()
	s.LightIntensity = 2
	key, ok := c.Compose(s).Light(NameKeySpot)
	require.True(t, ok)
	require.Equal(t, LightSpot, key.Kind)
	require.InDelta(t, 5.0, key.Intensity, 1e-12)
	require.Equal(t, 0.25, key.Angle)
}

func TestComposeEffectOrder(t *testing.T) {
	d := newTestComposer(t).Compose(DefaultViewState())
	kinds := make([]EffectKind, len(d.Effects))
	for i, e := range d.Effects {
		kinds[i] = e.Kind
	}
	require.Equal(t, []EffectKind{EffectBloom, EffectVignette, EffectNoise}, kinds)
}

func TestComposeTreeStructure(t *testing.T) {
	c := newTestComposer(t)
	l := c.Layout()
	d := c.Compose(DefaultViewState())

	require.Len(t, d.Tree.Foliage.Instances, len(l.Foliage))
	require.Len(t, d.Tree.Ornaments.Instances, 70)
	require.Len(t, d.Tree.Lights.Instances, 150)
	require.InDelta(t, 4.5, d.Tree.Star.Mesh.Position.Y(), 1e-12)
	require.InDelta(t, -0.3, d.Tree.Trunk.Position.Y(), 1e-12)
	require.InDelta(t, 6.4, d.Tree.Trunk.Geometry.Height, 1e-12)
	require.Same(t, l.Ribbon, d.Tree.Ribbon.Geometry.Path)
	require.Equal(t, "#c5b358", d.Tree.Ribbon.Material.Color.Hex())
	require.True(t, d.Tree.Star.Mesh.Material.NoToneMap)
	require.True(t, d.Tree.Lights.Material.Unlit)
	require.Equal(t, math.Pi/2-0.1, d.Camera.MaxPolar)
}

func TestComposeFoliageShades(t *testing.T) {
	c := newTestComposer(t)
	d := c.Compose(DefaultViewState())
	for i, inst := range d.Tree.Foliage.Instances {
		want := "#0b6623"
		if c.Layout().Foliage[i].Accent {
			want = "#138808"
		}
		require.Equal(t, want, inst.Color.Hex())
	}
}

func TestComposeReusesLayoutAcrossThemes(t *testing.T) {
	c := newTestComposer(t)
	s := DefaultViewState()
	a := c.Compose(s)
	s.Theme = ThemePatriot
	b := c.Compose(s)
	s.Theme = ThemeGold
	g := c.Compose(s)

	require.Same(t, &a.Tree.Foliage.Instances[0], &b.Tree.Foliage.Instances[0])
	require.Same(t, &a.Tree.Ornaments.Instances[0], &g.Tree.Ornaments.Instances[0])
	require.NotSame(t, &a.Tree.Ornaments.Instances[0], &b.Tree.Ornaments.Instances[0])
	require.Equal(t, a.Tree.Ornaments.Instances[5].Position, b.Tree.Ornaments.Instances[5].Position)
}

func BenchmarkComposerCompose(b *testing.B) {
	c := newTestComposer(b)
	s := DefaultViewState()
	b.ReportAllocs()
	for b.Loop() {
		c.Compose(s)
	}
}

package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grandtree"
)

func testModel(t *testing.T) (Model, *grandtree.ViewModel) {
	t.Helper()
	vm := grandtree.NewViewModel(grandtree.DefaultViewState())
	c := grandtree.NewComposer(grandtree.NewLayout(grandtree.DefaultLayoutParams(), grandtree.NewSeededRand(1)))
	return NewModel(Options{Store: vm, Composer: c, Seed: 3}), vm
}

func press(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelComposesOnStart(t *testing.T) {
	m, _ := testModel(t)
	require.NotNil(t, m.SceneDesc())
	assert.NotNil(t, m.SceneDesc().Snow)
}

func TestModelSpeedKeys(t *testing.T) {
	m, vm := testModel(t)
	m = press(m, "right")
	assert.Equal(t, 0.3, vm.State().RotationSpeed)
	m = press(m, "h")
	m = press(m, "h")
	m = press(m, "h")
	m = press(m, "left")
	assert.Equal(t, 0.0, vm.State().RotationSpeed, "clamped at the slider minimum")
	assert.NoError(t, m.LastError())
}

func TestModelBrillianceKeys(t *testing.T) {
	m, vm := testModel(t)
	m = press(m, "up")
	assert.Equal(t, 1.6, vm.State().LightIntensity)
	press(m, "j")
	assert.Equal(t, 1.5, vm.State().LightIntensity)
}

func TestModelThemeCycles(t *testing.T) {
	m, vm := testModel(t)
	m = press(m, "t")
	assert.Equal(t, grandtree.ThemePatriot, vm.State().Theme)
	before := m.SceneDesc()
	m = press(m, "t")
	assert.Equal(t, grandtree.ThemeDiamond, vm.State().Theme)
	assert.NotSame(t, before, m.SceneDesc(), "theme change recomposes")
	press(m, "t")
	assert.Equal(t, grandtree.ThemeGold, vm.State().Theme)
}

func TestModelSnowToggle(t *testing.T) {
	m, vm := testModel(t)
	m = press(m, "s")
	assert.False(t, vm.State().IsSnowing)
	assert.Nil(t, m.SceneDesc().Snow)

	flakes := append([]Flake(nil), m.flakes...)
	m = m.Step(time.Second)
	assert.Equal(t, flakes, m.flakes, "snow is frozen while off")
}

func TestModelSnowFalls(t *testing.T) {
	m, _ := testModel(t)
	y := m.flakes[0].Y
	m = m.Step(100 * time.Millisecond)
	assert.NotEqual(t, y, m.flakes[0].Y)
	for _, f := range m.flakes {
		assert.GreaterOrEqual(t, f.Y, 0.0)
		assert.Less(t, f.Y, 1.0)
	}
}

func TestModelCameraKeySyncsBridge(t *testing.T) {
	vm := grandtree.NewViewModel(grandtree.DefaultViewState())
	cam := &grandtree.SyntheticCamera{}
	bridge := grandtree.NewCameraBridge(cam, vm, grandtree.MediaConstraints{}, zerolog.Nop())
	defer bridge.Close()
	c := grandtree.NewComposer(grandtree.NewLayout(grandtree.DefaultLayoutParams(), grandtree.NewSeededRand(1)))
	m := NewModel(Options{Store: vm, Composer: c, Bridge: bridge})

	m = press(m, "c")
	assert.True(t, vm.State().UseCamera)
	assert.NotEqual(t, grandtree.BridgeInactive, bridge.State())
	require.Eventually(t, func() bool {
		m = m.Step(time.Millisecond)
		return bridge.State() == grandtree.BridgeActive
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, m.View(), "active")

	press(m, "c")
	assert.Equal(t, grandtree.BridgeInactive, bridge.State())
	assert.Equal(t, 0, cam.LiveTracks())
}

type rejectAll struct{ *grandtree.ViewModel }

func (rejectAll) Update(grandtree.Field, any) error { return grandtree.ErrInvalidValue }

func TestModelRejectedUpdateShown(t *testing.T) {
	c := grandtree.NewComposer(grandtree.NewLayout(grandtree.DefaultLayoutParams(), grandtree.NewSeededRand(1)))
	store := rejectAll{grandtree.NewViewModel(grandtree.DefaultViewState())}
	m := NewModel(Options{Store: store, Composer: c})
	m = press(m, "s")
	require.ErrorIs(t, m.LastError(), grandtree.ErrInvalidValue)
	assert.Contains(t, m.View(), grandtree.ErrInvalidValue.Error())
	assert.True(t, store.State().IsSnowing)
}

func TestModelQuit(t *testing.T) {
	m, _ := testModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.True(t, m.Quitting())
	assert.Empty(t, m.View())
}

func TestModelWindowSize(t *testing.T) {
	m, _ := testModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	w, h := m.canvasSize()
	assert.Equal(t, 120-panelWidth-2, w)
	assert.Equal(t, 38, h)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 10, Height: 3})
	w, h = next.(Model).canvasSize()
	assert.Equal(t, minCanvasW, w)
	assert.Equal(t, minCanvasH, h)
}

func TestModelView(t *testing.T) {
	m, _ := testModel(t)
	v := m.View()
	assert.Contains(t, v, "GRAND HOLIDAY")
	assert.Contains(t, v, "15%")
	assert.Contains(t, v, "ATMOSPHERIC SNOW")
	assert.Contains(t, v, grandtree.TextCameraOpen)
}

func TestModelTickReschedules(t *testing.T) {
	m, _ := testModel(t)
	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
}

func TestNextTheme(t *testing.T) {
	assert.Equal(t, grandtree.ThemePatriot, nextTheme(grandtree.ThemeGold))
	assert.Equal(t, grandtree.ThemeGold, nextTheme(grandtree.ThemeDiamond))
	assert.Equal(t, grandtree.ThemeGold, nextTheme(grandtree.Theme(42)))
}

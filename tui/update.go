package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/phanxgames/grandtree"
)

// Update handles key presses, window resizes and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.advance(frameInterval.Seconds())
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.store.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Faster):
		s := grandtree.RotationSlider
		m.send(s.Field, s.Snap(st.RotationSpeed+s.Step))
	case key.Matches(msg, m.keys.Slower):
		s := grandtree.RotationSlider
		m.send(s.Field, s.Snap(st.RotationSpeed-s.Step))
	case key.Matches(msg, m.keys.Brighter):
		s := grandtree.BrillianceSlider
		m.send(s.Field, s.Snap(st.LightIntensity+s.Step))
	case key.Matches(msg, m.keys.Dimmer):
		s := grandtree.BrillianceSlider
		m.send(s.Field, s.Snap(st.LightIntensity-s.Step))
	case key.Matches(msg, m.keys.Theme):
		m.send(grandtree.FieldTheme, nextTheme(st.Theme))
	case key.Matches(msg, m.keys.Snow):
		m.send(grandtree.FieldIsSnowing, !st.IsSnowing)
	case key.Matches(msg, m.keys.Camera):
		m.send(grandtree.FieldUseCamera, !st.UseCamera)
	}
	return m, nil
}

// nextTheme returns the theme after t in panel order.
func nextTheme(t grandtree.Theme) grandtree.Theme {
	themes := grandtree.PanelThemes
	for i, th := range themes {
		if th == t {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// Step advances the model by dt without waiting for the ticker.
func (m Model) Step(dt time.Duration) Model {
	m.advance(dt.Seconds())
	return m
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phanxgames/grandtree"
)

// View renders the tree beside the control panel, with key help below.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.store.State()
	w, h := m.canvasSize()
	canvas := Rasterize(m.desc, m.composer.Rotation(), st.LightIntensity, w, h)
	if m.desc != nil && m.desc.Snow != nil {
		canvas.PlotSnow(m.flakes, m.desc.Snow.Color)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas.Render(), "  ", m.panelView(st))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func (m Model) panelView(st grandtree.ViewState) string {
	var lines []string
	lines = append(lines,
		titleStyle.Render(strings.ToUpper(grandtree.TextTitle)),
		subtitleStyle.Render(grandtree.TextSubtitle),
		"",
		m.cameraLine(st),
		"",
		labelStyle.Render(strings.ToUpper(grandtree.TextCollection)),
		themeLine(st.Theme),
		"",
		sliderLine(grandtree.RotationSlider, st.RotationSpeed, m.speedBar.ViewAs(grandtree.RotationSlider.Fraction(st.RotationSpeed))),
		sliderLine(grandtree.BrillianceSlider, st.LightIntensity, m.lightBar.ViewAs(grandtree.BrillianceSlider.Fraction(st.LightIntensity))),
		"",
		switchLine(st.IsSnowing),
	)
	if m.lastErr != nil {
		lines = append(lines, "", errorStyle.Render(m.lastErr.Error()))
	}
	lines = append(lines, footerStyle.Render(grandtree.TextFooter))
	return panelStyle.Width(panelWidth - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) cameraLine(st grandtree.ViewState) string {
	label := grandtree.CameraButtonLabel(st.UseCamera)
	if !st.UseCamera {
		return valueStyle.Render("[ " + label + " ]")
	}
	line := alarmStyle.Render("[ " + label + " ]")
	if m.bridge != nil {
		line += " " + inactiveStyle.Render(m.bridge.State().String())
	}
	return line
}

func themeLine(current grandtree.Theme) string {
	parts := make([]string, len(grandtree.PanelThemes))
	for i, t := range grandtree.PanelThemes {
		if t == current {
			parts[i] = activeStyle.Render(t.Label())
		} else {
			parts[i] = inactiveStyle.Render(t.Label())
		}
	}
	return strings.Join(parts, "  ")
}

func sliderLine(s grandtree.SliderSpec, v float64, bar string) string {
	head := fmt.Sprintf("%-12s %s", labelStyle.Render(strings.ToUpper(s.Label)), valueStyle.Render(grandtree.PercentLabel(v)))
	return head + "\n" + bar
}

func switchLine(on bool) string {
	state := inactiveStyle.Render("OFF")
	if on {
		state = activeStyle.Render("ON")
	}
	return labelStyle.Render(strings.ToUpper(grandtree.TextSnow)) + "  " + state
}

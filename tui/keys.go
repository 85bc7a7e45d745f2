package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap binds the panel's five controls to keys.
type keyMap struct {
	Slower   key.Binding
	Faster   key.Binding
	Dimmer   key.Binding
	Brighter key.Binding
	Theme    key.Binding
	Snow     key.Binding
	Camera   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Slower: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "slower"),
		),
		Faster: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "faster"),
		),
		Dimmer: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "dimmer"),
		),
		Brighter: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "brighter"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t", "tab"),
			key.WithHelp("t", "theme"),
		),
		Snow: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "snow"),
		),
		Camera: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "camera"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Faster, k.Brighter, k.Theme, k.Snow, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Slower, k.Faster, k.Dimmer, k.Brighter},
		{k.Theme, k.Snow, k.Camera},
		{k.Help, k.Quit},
	}
}

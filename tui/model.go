// Package tui renders the tree as colored characters in a terminal and binds
// the control panel's five controls to keys. It drives the same update
// entry point as the graphical panel.
package tui

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/phanxgames/grandtree"
)

const (
	// frameInterval is the redraw period.
	frameInterval = 50 * time.Millisecond
	snowFlakes    = 60
	panelWidth    = 34
	barWidth      = 20
	minCanvasW    = 12
	minCanvasH    = 8
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Options configures a Model.
type Options struct {
	// Store owns the view state. Required.
	Store grandtree.StateStore
	// Composer builds scene descriptions. Required.
	Composer *grandtree.Composer
	// Bridge, if set, follows useCamera and is polled every frame.
	Bridge *grandtree.CameraBridge
	// Seed drives the snowfall.
	Seed uint64
}

// Model is the bubbletea model of the terminal renderer.
type Model struct {
	store    grandtree.StateStore
	composer *grandtree.Composer
	bridge   *grandtree.CameraBridge

	desc     *grandtree.SceneDesc
	composed grandtree.ViewState

	keys     keyMap
	help     help.Model
	speedBar progress.Model
	lightBar progress.Model

	flakes []Flake
	rng    *rand.Rand

	width    int
	height   int
	lastErr  error
	quitting bool
}

// NewModel creates a model and composes the initial scene.
func NewModel(opts Options) Model {
	bar := func() progress.Model {
		return progress.New(
			progress.WithSolidFill(string(goldColor)),
			progress.WithoutPercentage(),
			progress.WithWidth(barWidth),
		)
	}
	m := Model{
		store:    opts.Store,
		composer: opts.Composer,
		bridge:   opts.Bridge,
		keys:     defaultKeyMap(),
		help:     help.New(),
		speedBar: bar(),
		lightBar: bar(),
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5eed)),
		width:    80,
		height:   24,
	}
	m.flakes = make([]Flake, snowFlakes)
	for i := range m.flakes {
		m.flakes[i] = m.newFlake(m.rng.Float64())
	}
	m.recompose()
	return m
}

// Init starts the frame ticker and syncs the camera bridge.
func (m Model) Init() tea.Cmd {
	if m.bridge != nil {
		m.bridge.Sync(m.store.State().UseCamera)
	}
	return tick()
}

// SceneDesc returns the description currently drawn.
func (m Model) SceneDesc() *grandtree.SceneDesc {
	return m.desc
}

// LastError returns the most recent rejected update, if any.
func (m Model) LastError() error {
	return m.lastErr
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}

func (m *Model) recompose() {
	m.composed = m.store.State()
	m.desc = m.composer.Compose(m.composed)
}

func (m *Model) newFlake(y float64) Flake {
	return Flake{X: m.rng.Float64(), Y: y, Speed: 0.05 + m.rng.Float64()*0.1}
}

// advance moves the tree and the snow by dt seconds.
func (m *Model) advance(dt float64) {
	if m.bridge != nil {
		m.bridge.Poll()
	}
	st := m.store.State()
	if st != m.composed {
		m.recompose()
	}
	m.composer.Tick(dt, st)
	if !st.IsSnowing {
		return
	}
	for i := range m.flakes {
		f := &m.flakes[i]
		f.Y += f.Speed * dt
		if f.Y >= 1 {
			*f = m.newFlake(0)
		}
	}
}

// send applies one control change through the store.
func (m *Model) send(field grandtree.Field, value any) {
	if err := m.store.Update(field, value); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
	if field == grandtree.FieldUseCamera && m.bridge != nil {
		m.bridge.Sync(m.store.State().UseCamera)
	}
	m.recompose()
}

func (m Model) canvasSize() (int, int) {
	w := max(m.width-panelWidth-2, minCanvasW)
	h := max(m.height-2, minCanvasH)
	return w, h
}

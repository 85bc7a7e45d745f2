package grandtree

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Panel copy.
const (
	TextTitle        = "Grand Holiday"
	TextSubtitle     = "The most luxurious celebration"
	TextCameraOpen   = "Live Camera View"
	TextCameraClose  = "Close Camera"
	TextCollection   = "Select Collection"
	TextRotation     = "Rotation"
	TextBrilliance   = "Brilliance"
	TextSnow         = "Atmospheric Snow"
	TextFooter       = "Est. 2024 • Limited Edition"
	panelMaxWidth    = 448
	panelPadding     = 24
	mediumBreakpoint = 768
)

// Intent is a requested change to one ViewState field.
type Intent struct {
	Field Field
	Value any
}

// SliderSpec describes a range control.
type SliderSpec struct {
	Field Field
	Label string
	Min   float64
	Max   float64
	Step  float64
}

// The two range controls.
var (
	RotationSlider   = SliderSpec{Field: FieldRotationSpeed, Label: TextRotation, Min: 0, Max: 2, Step: 0.1}
	BrillianceSlider = SliderSpec{Field: FieldLightIntensity, Label: TextBrilliance, Min: 0.5, Max: 3, Step: 0.1}
)

// Snap rounds v to the nearest step above Min and clamps it to the range.
func (s SliderSpec) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return s.Min
	}
	v = clampRange(v, s.Min, s.Max)
	if s.Step > 0 {
		n := math.Round((v - s.Min) / s.Step)
		v = s.Min + n*s.Step
		// Remove accumulated binary noise so 0.1 steps compare exactly.
		v = math.Round(v*1e9) / 1e9
	}
	return clampRange(v, s.Min, s.Max)
}

// Fraction returns v's position in the range as a value in [0, 1].
func (s SliderSpec) Fraction(v float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	return clamp01((v - s.Min) / (s.Max - s.Min))
}

// PercentLabel formats a slider value the way the panel shows it: ten times
// the value, rounded, with a percent sign.
func PercentLabel(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*10)))
}

// CameraButtonLabel returns the camera button text for the given state.
func CameraButtonLabel(useCamera bool) string {
	if useCamera {
		return TextCameraClose
	}
	return TextCameraOpen
}

// PanelThemes lists the collection options in display order.
var PanelThemes = []Theme{ThemeGold, ThemePatriot, ThemeDiamond}

// WidgetKind distinguishes panel controls.
type WidgetKind uint8

const (
	WidgetButton WidgetKind = iota // camera toggle
	WidgetOption                   // one theme in the collection selector
	WidgetSlider
	WidgetSwitch
)

// Widget is one laid-out control. Widgets are rebuilt from the state on
// every layout; they hold no state of their own.
type Widget struct {
	Kind   WidgetKind
	Field  Field
	Bounds Rect
	Label  string
	// Active is the camera-on, selected-option or switch-on state.
	Active bool
	// Option is the theme an option widget selects.
	Option Theme
	// Slider is the range of a slider widget; Value is its current value.
	Slider SliderSpec
	Value  float64
}

// IntentAt returns the update produced by activating the widget at (x, y).
// Sliders map x across their track.
func (w *Widget) IntentAt(x, _ float64) Intent {
	switch w.Kind {
	case WidgetOption:
		return Intent{Field: FieldTheme, Value: w.Option}
	case WidgetSlider:
		f := 0.0
		if w.Bounds.Width > 0 {
			f = clamp01((x - w.Bounds.X) / w.Bounds.Width)
		}
		v := w.Slider.Min + f*(w.Slider.Max-w.Slider.Min)
		return Intent{Field: w.Field, Value: w.Slider.Snap(v)}
	default:
		return Intent{Field: w.Field, Value: !w.Active}
	}
}

// PanelLayout is the screen arrangement of the overlay for one state.
type PanelLayout struct {
	Medium   bool
	Header   Rect
	TitleY   float64
	RuleY    float64
	SubY     float64
	Panel    Rect
	Widgets  []Widget
	Labels   []PanelLabel
	Footer   Vec2
	ShowFoot bool
}

// PanelLabel is static or value text positioned by the layout.
type PanelLabel struct {
	Text  string
	Font  *TTFFont
	X, Y  float64
	Align TextAlign
	Color Color
}

// WidgetAt returns the index of the widget containing (x, y), or -1.
func (l *PanelLayout) WidgetAt(x, y float64) int {
	for i := range l.Widgets {
		if l.Widgets[i].Bounds.Contains(x, y) {
			return i
		}
	}
	return -1
}

// Widget returns the first widget bound to f, or nil.
func (l *PanelLayout) Widget(f Field) *Widget {
	for i := range l.Widgets {
		if l.Widgets[i].Field == f {
			return &l.Widgets[i]
		}
	}
	return nil
}

// Option returns the option widget for theme t, or nil.
func (l *PanelLayout) Option(t Theme) *Widget {
	for i := range l.Widgets {
		if l.Widgets[i].Kind == WidgetOption && l.Widgets[i].Option == t {
			return &l.Widgets[i]
		}
	}
	return nil
}

// Panel colors.
var (
	colorPanelGold = Hex("#EAB308")
	colorGoldDeep  = Hex("#CA8A04")
	colorGoldDark  = Hex("#713F12")
	colorGoldPale  = Hex("#FEF9C3")
	colorGoldLight = Hex("#FACC15")
	colorAlarm     = Hex("#991B1B")
	colorAlarmEdge = Hex("#EF4444")
)

// LayoutPanel arranges the overlay for state inside bounds. Text is measured
// with fonts.
func LayoutPanel(state ViewState, bounds Rect, fonts *Fonts) PanelLayout {
	var l PanelLayout
	l.Medium = bounds.Width >= mediumBreakpoint
	pad := 24.0
	if l.Medium {
		pad = 48
	}

	// Header
	titleH := fonts.Title.LineHeight()
	subH := fonts.Subtitle.LineHeight()
	l.TitleY = bounds.Y + pad + 16
	l.RuleY = l.TitleY + titleH + 8
	l.SubY = l.RuleY + 8
	headerW, _ := fonts.Title.MeasureString(strings.ToUpper(TextTitle))
	headerH := l.SubY + subH - l.TitleY
	l.Header = Rect{X: bounds.X + (bounds.Width-headerW)/2, Y: l.TitleY, Width: headerW, Height: headerH}

	// Panel contents, top to bottom relative to the panel origin.
	w := math.Min(panelMaxWidth, bounds.Width-2*pad)
	inner := w - 2*panelPadding
	labelH := fonts.Label.LineHeight()
	bodyH := fonts.Body.LineHeight()

	y := float64(panelPadding)
	camText := strings.ToUpper(CameraButtonLabel(state.UseCamera))
	camW, _ := fonts.Body.MeasureString(camText)
	camW += 48
	camBtn := Rect{X: (w - camW) / 2, Y: y, Width: camW, Height: bodyH + 16}
	y += camBtn.Height + 24

	collLabelY := y
	y += labelH + 12
	optGap := 8.0
	optW := (inner - optGap*float64(len(PanelThemes)-1)) / float64(len(PanelThemes))
	optY := y
	optH := bodyH + 12
	y += optH + 24

	sliders := []SliderSpec{RotationSlider, BrillianceSlider}
	values := []float64{state.RotationSpeed, state.LightIntensity}
	sliderY := make([]float64, len(sliders))
	for i := range sliders {
		sliderY[i] = y
		y += labelH + 4 + 16
		if i < len(sliders)-1 {
			y += 16
		}
	}
	y += 24 + 16
	switchY := y
	y += 24 + panelPadding
	h := y

	// Place the panel: centered on small screens, left on medium ones,
	// vertically centered in the space between header and footer.
	footH := fonts.Small.LineHeight()
	px := bounds.X + (bounds.Width-w)/2
	if l.Medium {
		px = bounds.X + pad
	}
	top := l.Header.Y + l.Header.Height
	bottom := bounds.Y + bounds.Height - pad
	if l.Medium {
		bottom -= footH
	}
	py := top + (bottom-top-h)/2
	if !l.Medium {
		py = bottom - h
	}
	py = math.Max(py, top+8)
	l.Panel = Rect{X: px, Y: py, Width: w, Height: h}
	ox, oy := px, py

	l.Widgets = append(l.Widgets, Widget{
		Kind:   WidgetButton,
		Field:  FieldUseCamera,
		Bounds: Rect{X: ox + camBtn.X, Y: oy + camBtn.Y, Width: camBtn.Width, Height: camBtn.Height},
		Label:  camText,
		Active: state.UseCamera,
	})

	l.Labels = append(l.Labels, PanelLabel{
		Text: strings.ToUpper(TextCollection), Font: fonts.Label,
		X: ox + panelPadding, Y: oy + collLabelY, Color: colorPanelGold,
	})
	for i, t := range PanelThemes {
		l.Widgets = append(l.Widgets, Widget{
			Kind:   WidgetOption,
			Field:  FieldTheme,
			Bounds: Rect{X: ox + panelPadding + float64(i)*(optW+optGap), Y: oy + optY, Width: optW, Height: optH},
			Label:  strings.ToUpper(t.String()),
			Active: state.Theme == t,
			Option: t,
		})
	}

	for i, sp := range sliders {
		sy := oy + sliderY[i]
		l.Labels = append(l.Labels,
			PanelLabel{
				Text: strings.ToUpper(sp.Label), Font: fonts.Label,
				X: ox + panelPadding, Y: sy, Color: colorPanelGold.WithAlpha(0.8),
			},
			PanelLabel{
				Text: PercentLabel(values[i]), Font: fonts.Label,
				X: ox + w - panelPadding, Y: sy, Align: TextAlignRight, Color: colorPanelGold.WithAlpha(0.8),
			},
		)
		l.Widgets = append(l.Widgets, Widget{
			Kind:   WidgetSlider,
			Field:  sp.Field,
			Bounds: Rect{X: ox + panelPadding, Y: sy + labelH + 4, Width: inner, Height: 16},
			Label:  sp.Label,
			Slider: sp,
			Value:  values[i],
		})
	}

	l.Labels = append(l.Labels, PanelLabel{
		Text: strings.ToUpper(TextSnow), Font: fonts.Label,
		X: ox + panelPadding, Y: oy + switchY + (24-labelH)/2, Color: colorGoldLight,
	})
	l.Widgets = append(l.Widgets, Widget{
		Kind:   WidgetSwitch,
		Field:  FieldIsSnowing,
		Bounds: Rect{X: ox + w - panelPadding - 48, Y: oy + switchY, Width: 48, Height: 24},
		Label:  TextSnow,
		Active: state.IsSnowing,
	})

	l.ShowFoot = l.Medium
	l.Footer = Vec2{X: bounds.X + bounds.Width - pad, Y: bounds.Y + bounds.Height - pad - footH}
	return l
}

// panelRuleY returns the y of the divider above the snow switch.
func (l *PanelLayout) panelRuleY() float64 {
	sw := l.Widget(FieldIsSnowing)
	if sw == nil {
		return l.Panel.Y
	}
	return sw.Bounds.Y - 16
}

// --- Panel ---

// StateStore is the view state source and its single update entry point.
type StateStore interface {
	Updater
	State() ViewState
}

const (
	knobTravel    = 24.0
	knobDuration  = 0.3
	pulseDuration = 1.0
)

// Panel is the on-screen control overlay. It lays itself out from the
// store's state and turns pointer input into Intents sent through the
// store's Update. It is a PointerTarget.
//
// The panel holds no view state. What it keeps is cosmetic: the cached
// layout, the slider being dragged, and the knob and pulse tweens. The
// knob position trails IsSnowing and never feeds back into the store.
type Panel struct {
	store  StateStore
	fonts  *Fonts
	bounds Rect
	layout PanelLayout
	shown  ViewState // state the layout was built from
	logger zerolog.Logger

	// Visible hides the overlay and stops it from claiming input.
	Visible bool

	hover  bool
	slider int // widget index of the slider being dragged, or -1

	knob      float64 // 0 off, 1 on
	knobOn    bool
	knobTween *gween.Tween

	pulse      float64
	pulseUp    bool
	pulseTween *gween.Tween

	lastErr error
}

// NewPanel creates a panel over store covering bounds.
func NewPanel(store StateStore, bounds Rect, fonts *Fonts, logger zerolog.Logger) *Panel {
	p := &Panel{
		store:   store,
		fonts:   fonts,
		bounds:  bounds,
		logger:  logger,
		Visible: true,
		slider:  -1,
		pulse:   1,
	}
	st := store.State()
	p.knobOn = st.IsSnowing
	if st.IsSnowing {
		p.knob = 1
	}
	p.relayout()
	return p
}

// SetBounds resizes the panel's screen area.
func (p *Panel) SetBounds(r Rect) {
	p.bounds = r
	p.relayout()
}

// Layout returns the current arrangement.
func (p *Panel) Layout() *PanelLayout {
	return &p.layout
}

// LastError returns the most recent rejected update, if any.
func (p *Panel) LastError() error {
	return p.lastErr
}

func (p *Panel) relayout() {
	p.shown = p.store.State()
	p.layout = LayoutPanel(p.shown, p.bounds, p.fonts)
}

// Send applies an intent through the store's update entry point.
func (p *Panel) Send(in Intent) {
	if err := p.store.Update(in.Field, in.Value); err != nil {
		p.lastErr = err
		p.logger.Warn().Err(err).Str("field", string(in.Field)).Msg("panel update rejected")
	}
	p.relayout()
}

// Contains reports whether (x, y) is over the header or the control panel.
func (p *Panel) Contains(x, y float64) bool {
	if !p.Visible {
		return false
	}
	return p.layout.Panel.Contains(x, y) || p.layout.Header.Contains(x, y)
}

// HandlePointer turns presses, drags and clicks into intents.
func (p *Panel) HandlePointer(ev PointerEvent) {
	switch ev.Type {
	case EventPointerMove:
		p.hover = p.layout.Panel.Contains(ev.X, ev.Y)
	case EventPointerDown:
		i := p.layout.WidgetAt(ev.X, ev.Y)
		if i >= 0 && p.layout.Widgets[i].Kind == WidgetSlider {
			p.slider = i
			p.Send(p.layout.Widgets[i].IntentAt(ev.X, ev.Y))
		}
	case EventDragStart, EventDrag:
		if p.slider >= 0 && p.slider < len(p.layout.Widgets) {
			p.Send(p.layout.Widgets[p.slider].IntentAt(ev.X, ev.Y))
		}
	case EventClick:
		i := p.layout.WidgetAt(ev.X, ev.Y)
		if i >= 0 && p.layout.Widgets[i].Kind != WidgetSlider {
			p.Send(p.layout.Widgets[i].IntentAt(ev.X, ev.Y))
		}
	case EventPointerUp:
		p.slider = -1
	}
}

// Update relayouts if the state changed since the last layout and advances
// the switch and button animations by dt seconds.
func (p *Panel) Update(dt float32) {
	st := p.store.State()
	if st != p.shown {
		p.relayout()
	}

	if st.IsSnowing != p.knobOn {
		p.knobOn = st.IsSnowing
		to := float32(0)
		if st.IsSnowing {
			to = 1
		}
		p.knobTween = gween.New(float32(p.knob), to, knobDuration, ease.InOutQuad)
	}
	if p.knobTween != nil {
		v, done := p.knobTween.Update(dt)
		p.knob = float64(v)
		if done {
			p.knobTween = nil
		}
	}

	if !st.UseCamera {
		p.pulse = 1
		p.pulseTween = nil
		return
	}
	if p.pulseTween == nil {
		from, to := float32(1), float32(0.5)
		if p.pulseUp {
			from, to = to, from
		}
		p.pulseTween = gween.New(from, to, pulseDuration, ease.InOutSine)
	}
	v, done := p.pulseTween.Update(dt)
	p.pulse = float64(v)
	if done {
		p.pulseTween = nil
		p.pulseUp = !p.pulseUp
	}
}

// KnobPosition returns the snow switch knob position in [0, 1].
func (p *Panel) KnobPosition() float64 {
	return p.knob
}

// --- Drawing ---

func fillRect(dst *ebiten.Image, r Rect, c Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), c.toRGBA(), true)
}

func strokeRect(dst *ebiten.Image, r Rect, width float64, c Color) {
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), float32(width), c.toRGBA(), true)
}

func fillCircle(dst *ebiten.Image, x, y, r float64, c color.Color) {
	vector.DrawFilledCircle(dst, float32(x), float32(y), float32(r), c, true)
}

func (p *Panel) drawText(dst *ebiten.Image, s string, f *TTFFont, x, y float64, align TextAlign, c Color) {
	tb := NewTextBlock(s, f, c)
	tb.Align = align
	w, _ := tb.Measure()
	switch align {
	case TextAlignCenter:
		x -= w / 2
	case TextAlignRight:
		x -= w
	}
	tb.Align = TextAlignLeft
	tb.Draw(dst, x, y, 1)
}

// Draw renders the overlay.
func (p *Panel) Draw(dst *ebiten.Image) {
	if !p.Visible {
		return
	}
	l := &p.layout
	cx := p.bounds.X + p.bounds.Width/2

	// Header
	p.drawText(dst, strings.ToUpper(TextTitle), p.fonts.Title, cx+1, l.TitleY+2, TextAlignCenter, ColorBlack.WithAlpha(0.8))
	p.drawText(dst, strings.ToUpper(TextTitle), p.fonts.Title, cx, l.TitleY, TextAlignCenter, colorPanelGold)
	for i := 0; i < 16; i++ {
		// Rule fading out from the center.
		a := 0.8 * (1 - float64(i)/16)
		seg := Rect{X: cx + float64(i)*4, Y: l.RuleY, Width: 4, Height: 2}
		fillRect(dst, seg, colorPanelGold.WithAlpha(a))
		seg.X = cx - float64(i+1)*4
		fillRect(dst, seg, colorPanelGold.WithAlpha(a))
	}
	p.drawText(dst, TextSubtitle, p.fonts.Subtitle, cx, l.SubY, TextAlignCenter, colorGoldPale.WithAlpha(0.8))

	// Panel body
	bg, edge := 0.4, 0.3
	if p.hover {
		bg, edge = 0.5, 0.5
	}
	fillRect(dst, l.Panel, ColorBlack.WithAlpha(bg))
	strokeRect(dst, l.Panel, 1, colorGoldDeep.WithAlpha(edge))

	for _, lb := range l.Labels {
		p.drawText(dst, lb.Text, lb.Font, lb.X, lb.Y, lb.Align, lb.Color)
	}

	for i := range l.Widgets {
		w := &l.Widgets[i]
		switch w.Kind {
		case WidgetButton:
			p.drawCameraButton(dst, w)
		case WidgetOption:
			p.drawOption(dst, w)
		case WidgetSlider:
			p.drawSlider(dst, w)
		case WidgetSwitch:
			p.drawSwitch(dst, w)
		}
	}

	ry := l.panelRuleY()
	fillRect(dst, Rect{X: l.Panel.X + panelPadding, Y: ry, Width: l.Panel.Width - 2*panelPadding, Height: 1}, colorGoldDark.WithAlpha(0.3))

	if l.ShowFoot {
		p.drawText(dst, strings.ToUpper(TextFooter), p.fonts.Small, l.Footer.X, l.Footer.Y, TextAlignRight, colorGoldDeep.WithAlpha(0.4))
	}
}

func (p *Panel) drawCameraButton(dst *ebiten.Image, w *Widget) {
	b := w.Bounds
	fill, border, ink := colorGoldDeep, colorPanelGold, ColorBlack
	alpha := 1.0
	if w.Active {
		fill, border, ink = colorAlarm, colorAlarmEdge, ColorWhite
		alpha = p.pulse
		glow := Rect{X: b.X - 4, Y: b.Y - 4, Width: b.Width + 8, Height: b.Height + 8}
		fillRect(dst, glow, colorAlarmEdge.WithAlpha(0.2*alpha))
	}
	fillRect(dst, b, fill.WithAlpha(alpha))
	strokeRect(dst, b, 2, border.WithAlpha(alpha))
	th := p.fonts.Body.LineHeight()
	p.drawText(dst, w.Label, p.fonts.Body, b.X+b.Width/2, b.Y+(b.Height-th)/2, TextAlignCenter, ink.WithAlpha(alpha))
}

func (p *Panel) drawOption(dst *ebiten.Image, w *Widget) {
	b := w.Bounds
	ink := colorGoldDeep
	if w.Active {
		fillRect(dst, Rect{X: b.X - 3, Y: b.Y - 3, Width: b.Width + 6, Height: b.Height + 6}, colorGoldLight.WithAlpha(0.15))
		fillRect(dst, b, colorPanelGold)
		strokeRect(dst, b, 1, colorGoldLight)
		ink = ColorBlack
	} else {
		strokeRect(dst, b, 1, colorGoldDark.WithAlpha(0.5))
	}
	th := p.fonts.Body.LineHeight()
	p.drawText(dst, w.Label, p.fonts.Body, b.X+b.Width/2, b.Y+(b.Height-th)/2, TextAlignCenter, ink)
}

func (p *Panel) drawSlider(dst *ebiten.Image, w *Widget) {
	b := w.Bounds
	track := Rect{X: b.X, Y: b.Y + b.Height/2 - 2, Width: b.Width, Height: 4}
	fillRect(dst, track, colorGoldDark.WithAlpha(0.3))
	f := w.Slider.Fraction(w.Value)
	filled := track
	filled.Width = track.Width * f
	fillRect(dst, filled, colorPanelGold)
	fillCircle(dst, track.X+filled.Width, track.Y+2, 7, colorPanelGold.toRGBA())
}

func (p *Panel) drawSwitch(dst *ebiten.Image, w *Widget) {
	b := w.Bounds
	r := b.Height / 2
	bg := ColorBlack.WithAlpha(0.5)
	if w.Active {
		bg = colorGoldDark.WithAlpha(0.8)
	}
	fillRect(dst, Rect{X: b.X + r, Y: b.Y, Width: b.Width - 2*r, Height: b.Height}, bg)
	fillCircle(dst, b.X+r, b.Y+r, r, bg.toRGBA())
	fillCircle(dst, b.X+b.Width-r, b.Y+r, r, bg.toRGBA())

	knobX := b.X + 2 + 8 + p.knob*knobTravel
	fillCircle(dst, knobX, b.Y+r, 8, colorGoldLight.toRGBA())
}

package grandtree

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is the interface for text measurement and layout.
type Font interface {
	MeasureString(text string) (width, height float64)
	LineHeight() float64
}

// TextAlign controls horizontal placement of each line.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// --- TTFFont ---

// TTFFont wraps Ebitengine's text/v2 for TrueType font rendering.
type TTFFont struct {
	face   *text.GoTextFace
	source *text.GoTextFaceSource
	size   float64
	lh     float64 // cached line height
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("grandtree: failed to parse TTF data: %w", err)
	}
	return newTTFFont(source, size), nil
}

func newTTFFont(source *text.GoTextFaceSource, size float64) *TTFFont {
	face := &text.GoTextFace{
		Source: source,
		Size:   size,
	}

	// Compute line height from metrics
	m := face.Metrics()
	lh := m.HAscent + m.HDescent + m.HLineGap

	return &TTFFont{
		face:   face,
		source: source,
		size:   size,
		lh:     lh,
	}
}

// WithSize returns a font sharing f's typeface at a different size.
func (f *TTFFont) WithSize(size float64) *TTFFont {
	return newTTFFont(f.source, size)
}

// Size returns the font size in pixels.
func (f *TTFFont) Size() float64 {
	return f.size
}

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 {
	return f.lh
}

// Face returns the underlying GoTextFace for direct Ebitengine text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace {
	return f.face
}

// --- Go font set ---

// Fonts is the typeface set used by the control panel.
type Fonts struct {
	Title    *TTFFont // bold display heading
	Subtitle *TTFFont // italic tagline
	Label    *TTFFont // uppercase control labels
	Body     *TTFFont // button and value text
	Small    *TTFFont // footer
}

var goFonts *Fonts

// GoFonts returns the Go font family at the panel's sizes, scaled by scale.
// The faces are parsed once per process.
func GoFonts(scale float64) *Fonts {
	if goFonts == nil {
		goFonts = &Fonts{
			Title:    mustLoadFont(gobold.TTF, 26),
			Subtitle: mustLoadFont(goitalic.TTF, 13),
			Label:    mustLoadFont(gomedium.TTF, 11),
			Body:     mustLoadFont(goregular.TTF, 13),
			Small:    mustLoadFont(goregular.TTF, 10),
		}
	}
	if scale == 1 || scale <= 0 {
		return goFonts
	}
	return &Fonts{
		Title:    goFonts.Title.WithSize(goFonts.Title.size * scale),
		Subtitle: goFonts.Subtitle.WithSize(goFonts.Subtitle.size * scale),
		Label:    goFonts.Label.WithSize(goFonts.Label.size * scale),
		Body:     goFonts.Body.WithSize(goFonts.Body.size * scale),
		Small:    goFonts.Small.WithSize(goFonts.Small.size * scale),
	}
}

func mustLoadFont(data []byte, size float64) *TTFFont {
	f, err := LoadTTFFont(data, size)
	if err != nil {
		panic(err)
	}
	return f
}

// --- TextBlock ---

// TextBlock holds text content, formatting, and cached layout state.
type TextBlock struct {
	Content    string
	Font       Font
	Align      TextAlign
	WrapWidth  float64 // 0 disables wrapping
	Color      Color
	LineHeight float64 // override; 0 = use Font.LineHeight()

	// Cached layout (unexported)
	layoutDirty bool
	laidOut     string
	measuredW   float64
	measuredH   float64
	lines       []textLine
}

// textLine stores one laid-out line.
type textLine struct {
	text  string
	width float64
}

// NewTextBlock creates a text block in font f.
func NewTextBlock(content string, f Font, c Color) *TextBlock {
	return &TextBlock{Content: content, Font: f, Color: c, layoutDirty: true}
}

// SetContent replaces the text and invalidates the layout.
func (tb *TextBlock) SetContent(s string) {
	if s != tb.Content {
		tb.Content = s
		tb.layoutDirty = true
	}
}

// Invalidate forces a relayout, e.g. after changing Font or WrapWidth.
func (tb *TextBlock) Invalidate() {
	tb.layoutDirty = true
}

// lineHeight returns the effective line height for this text block.
func (tb *TextBlock) lineHeight() float64 {
	if tb.LineHeight > 0 {
		return tb.LineHeight
	}
	if tb.Font != nil {
		return tb.Font.LineHeight()
	}
	return 0
}

// Measure returns the laid-out width and height.
func (tb *TextBlock) Measure() (w, h float64) {
	tb.layout()
	return tb.measuredW, tb.measuredH
}

// layout recomputes line breaks if dirty. Returns the cached lines.
func (tb *TextBlock) layout() []textLine {
	if !tb.layoutDirty && tb.laidOut == tb.Content {
		return tb.lines
	}
	tb.layoutDirty = false
	tb.laidOut = tb.Content
	tb.lines = tb.lines[:0]
	tb.measuredW, tb.measuredH = 0, 0

	if tb.Font == nil || tb.Content == "" {
		return tb.lines
	}

	for _, para := range strings.Split(tb.Content, "\n") {
		tb.wrapParagraph(para)
	}
	for _, l := range tb.lines {
		tb.measuredW = max(tb.measuredW, l.width)
	}
	tb.measuredH = float64(len(tb.lines)) * tb.lineHeight()
	return tb.lines
}

// wrapParagraph breaks para at spaces so no line exceeds WrapWidth, unless
// a single word is wider.
func (tb *TextBlock) wrapParagraph(para string) {
	if tb.WrapWidth <= 0 {
		w, _ := tb.Font.MeasureString(para)
		tb.lines = append(tb.lines, textLine{text: para, width: w})
		return
	}
	var cur string
	var curW float64
	for _, word := range strings.Fields(para) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		w, _ := tb.Font.MeasureString(candidate)
		if cur != "" && w > tb.WrapWidth {
			tb.lines = append(tb.lines, textLine{text: cur, width: curW})
			cur = word
			curW, _ = tb.Font.MeasureString(word)
			continue
		}
		cur, curW = candidate, w
	}
	tb.lines = append(tb.lines, textLine{text: cur, width: curW})
}

// lineOffset returns the x offset of a line of width w inside the block.
func (tb *TextBlock) lineOffset(w float64) float64 {
	box := tb.measuredW
	if tb.WrapWidth > 0 {
		box = tb.WrapWidth
	}
	switch tb.Align {
	case TextAlignCenter:
		return (box - w) / 2
	case TextAlignRight:
		return box - w
	default:
		return 0
	}
}

// Draw renders the block with its top-left corner at (x, y). alpha scales
// the block's color alpha. Only TTF fonts draw; other fonts only measure.
func (tb *TextBlock) Draw(dst *ebiten.Image, x, y, alpha float64) {
	f, ok := tb.Font.(*TTFFont)
	if !ok {
		return
	}
	lh := tb.lineHeight()
	for i, l := range tb.layout() {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+tb.lineOffset(l.width), y+float64(i)*lh)
		op.ColorScale.ScaleWithColor(tb.Color.WithAlpha(tb.Color.A * alpha).toRGBA())
		text.Draw(dst, l.text, f.face, op)
	}
}

package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/grandtree"
)

// Glyphs per tree part.
const (
	glyphFoliage  = '^'
	glyphFoliageF = '.' // foliage on the far side
	glyphOrnament = 'o'
	glyphLight    = '+'
	glyphRibbon   = '~'
	glyphTrunk    = '#'
	glyphStar     = '*'
	glyphSnow     = '\''
)

// cellAspect is a terminal cell's height over its width.
const cellAspect = 2.0

// ribbonSamples is how many points of the ribbon path are plotted.
const ribbonSamples = 240

type cell struct {
	glyph rune
	color grandtree.Color
	depth float64
	set   bool
}

// Canvas is a character grid with a depth buffer. Nearer plots win.
type Canvas struct {
	W, H  int
	cells []cell
}

// NewCanvas creates an empty w×h canvas.
func NewCanvas(w, h int) *Canvas {
	w, h = max(w, 0), max(h, 0)
	return &Canvas{W: w, H: h, cells: make([]cell, w*h)}
}

// Plot sets (col, row) to glyph if depth is nearer than what is there.
// Out-of-range cells are ignored.
func (c *Canvas) Plot(col, row int, glyph rune, clr grandtree.Color, depth float64) {
	if col < 0 || row < 0 || col >= c.W || row >= c.H {
		return
	}
	p := &c.cells[row*c.W+col]
	if p.set && p.depth > depth {
		return
	}
	*p = cell{glyph: glyph, color: clr, depth: depth, set: true}
}

// At returns the glyph at (col, row), or a space.
func (c *Canvas) At(col, row int) rune {
	if col < 0 || row < 0 || col >= c.W || row >= c.H {
		return ' '
	}
	if p := c.cells[row*c.W+col]; p.set {
		return p.glyph
	}
	return ' '
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.H; row++ {
		for col := 0; col < c.W; col++ {
			b.WriteRune(c.At(col, row))
		}
		if row < c.H-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render renders the canvas with each run of same-colored cells styled once.
func (c *Canvas) Render() string {
	var b strings.Builder
	var run strings.Builder
	for row := 0; row < c.H; row++ {
		var runColor grandtree.Color
		runSet := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runSet {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor.Hex())).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < c.W; col++ {
			p := c.cells[row*c.W+col]
			if p.set != runSet || (p.set && p.color != runColor) {
				flush()
				runSet, runColor = p.set, p.color
			}
			if p.set {
				run.WriteRune(p.glyph)
			} else {
				run.WriteByte(' ')
			}
		}
		flush()
		if row < c.H-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// projection maps tree space to canvas cells for a front view rotated by
// angle about +Y.
type projection struct {
	cx, top  float64
	sx, sy   float64
	sin, cos float64
}

func newProjection(d *grandtree.SceneDesc, angle float64, w, h int) projection {
	minY, maxY, radius := treeExtent(d)
	span := math.Max(maxY-minY, 1e-6)
	sy := float64(h-1) / span
	sx := sy * cellAspect
	if radius > 0 && radius*sx*2 > float64(w-1) {
		sx = float64(w-1) / (radius * 2)
		sy = sx / cellAspect
	}
	sin, cos := math.Sincos(angle)
	return projection{
		cx:  float64(w-1) / 2,
		top: maxY,
		sx:  sx,
		sy:  sy,
		sin: sin,
		cos: cos,
	}
}

// project returns the cell for p and its depth toward the viewer at +Z.
func (pr projection) project(p mgl64.Vec3) (col, row int, depth float64) {
	x := p[0]*pr.cos + p[2]*pr.sin
	z := -p[0]*pr.sin + p[2]*pr.cos
	col = int(math.Round(pr.cx + x*pr.sx))
	row = int(math.Round((pr.top - p[1]) * pr.sy))
	return col, row, z
}

// treeExtent returns the vertical range and horizontal radius covered by
// the tree's parts.
func treeExtent(d *grandtree.SceneDesc) (minY, maxY, radius float64) {
	minY, maxY = math.Inf(1), math.Inf(-1)
	grow := func(p mgl64.Vec3) {
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
		radius = math.Max(radius, math.Hypot(p[0], p[2]))
	}
	for _, in := range d.Tree.Foliage.Instances {
		grow(in.Position)
	}
	for _, in := range d.Tree.Ornaments.Instances {
		grow(in.Position)
	}
	grow(d.Tree.Star.Mesh.Position)
	t := d.Tree.Trunk
	grow(t.Position.Sub(mgl64.Vec3{0, t.Geometry.Height / 2, 0}))
	if math.IsInf(minY, 0) {
		return 0, 1, 1
	}
	return minY, maxY, radius
}

// Rasterize draws the tree of d onto a w×h canvas, rotated by angle and lit
// at brilliance (1.5 is neutral).
func Rasterize(d *grandtree.SceneDesc, angle, brilliance float64, w, h int) *Canvas {
	c := NewCanvas(w, h)
	if d == nil || w < 3 || h < 3 {
		return c
	}
	pr := newProjection(d, angle, w, h)
	lit := func(clr grandtree.Color) grandtree.Color {
		k := brilliance / 1.5
		return grandtree.Color{
			R: math.Min(clr.R*k, 1),
			G: math.Min(clr.G*k, 1),
			B: math.Min(clr.B*k, 1),
			A: 1,
		}
	}

	t := d.Tree
	trunkColor := lit(t.Trunk.Material.Color.Scale(2.5))
	trunkTop := t.Trunk.Position[1] + t.Trunk.Geometry.Height/2
	trunkBottom := t.Trunk.Position[1] - t.Trunk.Geometry.Height/2
	_, rowTop, _ := pr.project(mgl64.Vec3{0, trunkTop, 0})
	_, rowBottom, _ := pr.project(mgl64.Vec3{0, trunkBottom, 0})
	col := int(math.Round(pr.cx))
	for row := rowTop; row <= rowBottom; row++ {
		c.Plot(col, row, glyphTrunk, trunkColor, -math.MaxFloat64/2)
	}

	for _, in := range t.Foliage.Instances {
		cl, row, z := pr.project(in.Position)
		g := glyphFoliage
		if z < 0 {
			g = glyphFoliageF
		}
		c.Plot(cl, row, g, lit(in.Color.Mul(t.Foliage.Material.Color)), z)
	}

	if path := t.Ribbon.Geometry.Path; path != nil {
		clr := lit(t.Ribbon.Material.Color)
		for i := 0; i < ribbonSamples; i++ {
			p := path.PointAt(float64(i) / ribbonSamples)
			cl, row, z := pr.project(p)
			if z >= 0 {
				c.Plot(cl, row, glyphRibbon, clr, z+0.2)
			}
		}
	}

	for _, in := range t.Ornaments.Instances {
		cl, row, z := pr.project(in.Position)
		c.Plot(cl, row, glyphOrnament, lit(in.Color.Mul(t.Ornaments.Material.Color)), z+0.3)
	}
	for _, in := range t.Lights.Instances {
		cl, row, z := pr.project(in.Position)
		c.Plot(cl, row, glyphLight, in.Color.Mul(t.Lights.Material.Color), z+0.3)
	}

	cl, row, _ := pr.project(t.Star.Mesh.Position)
	c.Plot(cl, row, glyphStar, t.Star.Mesh.Material.Color, math.MaxFloat64)
	return c
}

// Flake is a snowflake in canvas fractions: X and Y in [0, 1).
type Flake struct {
	X, Y  float64
	Speed float64
}

// PlotSnow draws flakes behind everything already on the canvas.
func (c *Canvas) PlotSnow(flakes []Flake, clr grandtree.Color) {
	for _, f := range flakes {
		col := int(f.X * float64(c.W))
		row := int(f.Y * float64(c.H))
		if c.At(col, row) == ' ' {
			c.Plot(col, row, glyphSnow, clr, -math.MaxFloat64)
		}
	}
}

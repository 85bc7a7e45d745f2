package grandtree

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for full-frame effects applied to the scene's
// rendered output.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect (e.g. blur radius). Zero means no padding.
	Padding() int
}

// animatedFilter is implemented by filters whose output changes over time.
type animatedFilter interface {
	update(dt float64)
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders un-premultiply before processing
// and re-premultiply output where needed.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	// Un-premultiply alpha.
	if c.a > 0 {
		c.rgb /= c.a
	}
	// Apply 4x5 color matrix (row-major, offset in elements 4,9,14,19).
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	// Clamp and re-premultiply.
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// brightPassShaderSrc keeps pixels whose brightest channel clears the
// threshold, with a smooth knee of width 2*Smoothing.
const brightPassShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Smoothing float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return vec4(0)
	}
	rgb := c.rgb / c.a
	v := max(rgb.r, max(rgb.g, rgb.b))
	k := smoothstep(Threshold-Smoothing, Threshold+Smoothing, v)
	return vec4(rgb*k*c.a, c.a*k)
}
`

const vignetteShaderSrc = `//kage:unit pixels
package main

var Offset float
var Darkness float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	uv := (src - imageSrc0Origin()) / imageSrc0Size()
	d := distance(uv, vec2(0.5)) * (Darkness + Offset)
	e0 := 0.8
	e1 := Offset * 0.799
	t := clamp((d-e0)/(e1-e0), 0, 1)
	k := t * t * (3 - 2*t)
	return vec4(c.rgb*k, c.a)
}
`

const noiseShaderSrc = `//kage:unit pixels
package main

var Seed float
var Opacity float

func rand(co vec2) float {
	return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return c
	}
	rgb := c.rgb / c.a
	uv := (src - imageSrc0Origin()) / imageSrc0Size()
	n := rand(uv + vec2(Seed, Seed*0.37))
	screen := 1 - (1-rgb)*(1-vec3(n))
	rgb = mix(rgb, screen, Opacity)
	return vec4(rgb*c.a, c.a)
}
`

// --- Lazy shader compilation (no sync.Once; the engine is single-threaded) ---

var (
	colorMatrixShader *ebiten.Shader
	brightPassShader  *ebiten.Shader
	vignetteShader    *ebiten.Shader
	noiseShader       *ebiten.Shader
)

func compileShader(dst **ebiten.Shader, src, name string) *ebiten.Shader {
	if *dst == nil {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			panic("grandtree: failed to compile " + name + " shader: " + err.Error())
		}
		*dst = s
	}
	return *dst
}

func ensureColorMatrixShader() *ebiten.Shader {
	return compileShader(&colorMatrixShader, colorMatrixShaderSrc, "color matrix")
}

func ensureBrightPassShader() *ebiten.Shader {
	return compileShader(&brightPassShader, brightPassShaderSrc, "bright pass")
}

func ensureVignetteShader() *ebiten.Shader {
	return compileShader(&vignetteShader, vignetteShaderSrc, "vignette")
}

func ensureNoiseShader() *ebiten.Shader {
	return compileShader(&noiseShader, noiseShaderSrc, "noise")
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix transformation using a Kage shader.
// The matrix is stored in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	Matrix      [20]float64
	uniforms    map[string]any
	matrixF32   [20]float32 // persistent buffer to avoid per-frame slice escape
	matrixSlice []float32   // persistent slice header pointing into matrixF32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{
		uniforms: make(map[string]any, 1),
	}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	f.Matrix = identityColorMatrix
	return f
}

var identityColorMatrix = [20]float64{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// SetBrightness sets the matrix to adjust brightness by the given offset [-1, 1].
func (f *ColorMatrixFilter) SetBrightness(b float64) {
	f.Matrix = [20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// SetContrast sets the matrix to adjust contrast. c=1 is normal, 0=gray, >1 is higher.
func (f *ColorMatrixFilter) SetContrast(c float64) {
	t := (1.0 - c) / 2.0
	f.Matrix = [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SetSaturation sets the matrix to adjust saturation. s=1 is normal, 0=grayscale.
func (f *ColorMatrixFilter) SetSaturation(s float64) {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	f.Matrix = [20]float64{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetGrade sets the matrix to adjust saturation, then contrast.
func (f *ColorMatrixFilter) SetGrade(contrast, saturation float64) {
	f.SetSaturation(saturation)
	t := (1.0 - contrast) / 2.0
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			f.Matrix[row*5+col] *= contrast
		}
		f.Matrix[row*5+4] = t
	}
}

// Apply renders the color matrix transformation from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// Padding returns 0; color matrix transforms don't expand the image bounds.
func (f *ColorMatrixFilter) Padding() int { return 0 }

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// No Kage shader needed; bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// blurPasses returns the number of halvings for a radius: log2(radius),
// minimum 1.
func blurPasses(radius int) int {
	passes := int(math.Ceil(math.Log2(float64(radius))))
	if passes < 1 {
		passes = 1
	}
	return passes
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	if f.Radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := blurPasses(f.Radius)
	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	// Deallocate excess temp images from previous larger radius.
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	// Downscale passes: each half-size
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	// Upscale passes: draw each back up
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	drawScaled(dst, current, op)
}

// drawScaled draws src stretched over all of dst with bilinear filtering.
func drawScaled(dst, src *ebiten.Image, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// Padding returns the blur radius.
func (f *BlurFilter) Padding() int { return f.Radius }

// --- BloomFilter ---

// BloomFilter adds a blurred copy of the frame's bright areas back onto it.
type BloomFilter struct {
	// Threshold is the brightest-channel level where glow begins.
	Threshold float64
	// Smoothing widens the threshold into a soft knee.
	Smoothing float64
	// Intensity scales the added glow.
	Intensity float64
	// Radius is the glow spread as a fraction of the frame height.
	Radius float64

	blur     BlurFilter
	bright   *ebiten.Image
	glow     *ebiten.Image
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
	imgOp    ebiten.DrawImageOptions
}

// NewBloomFilter creates a bloom filter.
func NewBloomFilter(threshold, smoothing, intensity, radius float64) *BloomFilter {
	return &BloomFilter{
		Threshold: threshold,
		Smoothing: smoothing,
		Intensity: intensity,
		Radius:    radius,
		uniforms:  make(map[string]any, 2),
	}
}

// blurRadius converts Radius into pixels for a frame of height h.
func (f *BloomFilter) blurRadius(h int) int {
	return max(1, int(math.Round(f.Radius*0.05*float64(h))))
}

// Apply copies src into dst and adds the glow.
func (f *BloomFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	f.bright = ensureSized(f.bright, w, h)
	f.glow = ensureSized(f.glow, w, h)

	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(src, op)

	f.uniforms["Threshold"] = float32(f.Threshold)
	f.uniforms["Smoothing"] = float32(f.Smoothing)
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	f.bright.DrawRectShader(w, h, ensureBrightPassShader(), &f.shaderOp)

	f.blur.Radius = f.blurRadius(h)
	f.blur.Apply(f.bright, f.glow)

	op.GeoM.Reset()
	op.ColorScale.Reset()
	k := float32(f.Intensity)
	op.ColorScale.Scale(k, k, k, k)
	op.Blend = BlendAdd.EbitenBlend()
	dst.DrawImage(f.glow, op)
}

// Padding returns 0; glow is clipped at the frame edge.
func (f *BloomFilter) Padding() int { return 0 }

// ensureSized returns img if it is exactly w x h, cleared, or a new image.
func ensureSized(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			img.Clear()
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}

// --- VignetteFilter ---

// VignetteFilter darkens the frame toward its corners.
type VignetteFilter struct {
	Offset   float64
	Darkness float64
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewVignetteFilter creates a vignette filter.
func NewVignetteFilter(offset, darkness float64) *VignetteFilter {
	return &VignetteFilter{Offset: offset, Darkness: darkness, uniforms: make(map[string]any, 2)}
}

// Apply renders the vignetted src into dst.
func (f *VignetteFilter) Apply(src, dst *ebiten.Image) {
	f.uniforms["Offset"] = float32(f.Offset)
	f.uniforms["Darkness"] = float32(f.Darkness)
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), ensureVignetteShader(), &f.shaderOp)
}

// Padding returns 0.
func (f *VignetteFilter) Padding() int { return 0 }

// vignetteFactor mirrors the shader's falloff for a normalized distance d
// from the frame center.
func vignetteFactor(d, offset, darkness float64) float64 {
	x := d * (darkness + offset)
	e0, e1 := 0.8, offset*0.799
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

// --- NoiseFilter ---

// NoiseFilter screens animated film grain over the frame.
type NoiseFilter struct {
	Opacity  float64
	seed     float64
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewNoiseFilter creates a noise filter.
func NewNoiseFilter(opacity float64) *NoiseFilter {
	return &NoiseFilter{Opacity: opacity, uniforms: make(map[string]any, 2)}
}

func (f *NoiseFilter) update(dt float64) {
	f.seed = math.Mod(f.seed+dt*7.31, 1000)
}

// Apply renders the grained src into dst.
func (f *NoiseFilter) Apply(src, dst *ebiten.Image) {
	f.uniforms["Seed"] = float32(f.seed)
	f.uniforms["Opacity"] = float32(f.Opacity)
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), ensureNoiseShader(), &f.shaderOp)
}

// Padding returns 0.
func (f *NoiseFilter) Padding() int { return 0 }

// --- Filter chain helpers ---

// filterChainPadding returns the cumulative padding required by a slice of filters.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// applyFilters runs a filter chain on src, ping-ponging between two images.
// Returns the image containing the final result (either src or the pooled
// scratch image). Whichever of the two is not returned has been released
// back to the pool if it was acquired here.
func applyFilters(filters []Filter, src *ebiten.Image, pool *renderTexturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var scratch *ebiten.Image

	for _, f := range filters {
		if scratch == nil {
			scratch = pool.Acquire(w, h)
		} else {
			scratch.Clear()
		}
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}
	if scratch != src {
		pool.Release(scratch)
	}
	return current
}

package grandtree

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// GoldenAngle is the angular step, in radians, between consecutive foliage
// samples. Spacing points by it keeps any two of them from lining up.
const GoldenAngle = 2.39996

// minFoliageRadius is the cone radius below which foliage samples are dropped.
const minFoliageRadius = 0.1

// LayoutParams are the geometric constants of the tree cone.
type LayoutParams struct {
	// Height is the vertical extent of the cone.
	Height float64
	// Radius is the cone radius at its base.
	Radius float64
	// BaseY is the world Y of the cone base.
	BaseY float64
	// Foliage is the number of foliage samples attempted. Samples near the
	// apex are dropped, so fewer may be produced.
	Foliage int
	// Ornaments is the number of ornaments placed along the spiral.
	Ornaments int
	// Lights is the number of string lights placed along the spiral.
	Lights int
}

// DefaultLayoutParams returns the dimensions of the grand tree.
func DefaultLayoutParams() LayoutParams {
	return LayoutParams{
		Height:    8,
		Radius:    3.2,
		BaseY:     -3.5,
		Foliage:   1200,
		Ornaments: 70,
		Lights:    150,
	}
}

// progress returns the normalized height of y along the cone in [0, 1].
func (p LayoutParams) progress(y float64) float64 {
	return (y - p.BaseY) / p.Height
}

// ConeRadius returns the cone radius at world height y.
func (p LayoutParams) ConeRadius(y float64) float64 {
	return p.Radius * (1 - p.progress(y))
}

// InstanceSample is one placed instance of a group.
type InstanceSample struct {
	// Index is the sample's generator index. Foliage indices stay contiguous
	// from zero because only apex samples are dropped.
	Index int
	// Position is the instance's local position in the tree group.
	Position mgl64.Vec3
	// Orientation rotates the instance's +Z axis outward. Identity for
	// ornaments and lights.
	Orientation mgl64.Quat
	// Scale is the uniform scale factor. 1 for ornaments and lights.
	Scale float64
	// Accent selects the alternate foliage shade.
	Accent bool
}

// GenerateFoliage places foliage branches on a golden-angle spiral over the
// cone. rng supplies radial jitter, scale jitter and the accent shade; the
// result is deterministic for a given seed. The returned slice may hold fewer
// than p.Foliage samples.
func GenerateFoliage(p LayoutParams, rng *rand.Rand) []InstanceSample {
	out := make([]InstanceSample, 0, p.Foliage)
	for i := 0; i < p.Foliage; i++ {
		t := float64(i) / float64(p.Foliage)
		y := p.BaseY + t*p.Height
		prog := p.progress(y)

		radius := p.Radius * (1 - prog)
		if radius < minFoliageRadius {
			continue
		}

		angle := float64(i) * GoldenAngle
		r := radius * (0.6 + 0.4*rng.Float64())
		x := math.Cos(angle) * r
		z := math.Sin(angle) * r

		pos := mgl64.Vec3{x, y, z}
		target := mgl64.Vec3{x * 2, y + (1.5 - prog), z * 2}
		scale := (1 - prog*0.6) * (0.8 + rng.Float64()*0.4)

		out = append(out, InstanceSample{
			Index:       i,
			Position:    pos,
			Orientation: lookRotation(pos, target),
			Scale:       scale,
			Accent:      rng.Float64() > 0.6,
		})
	}
	return out
}

// GenerateOrnaments places ornaments on a nine-turn spiral sitting just
// outside the foliage. Exactly p.Ornaments samples are returned, in
// increasing height.
func GenerateOrnaments(p LayoutParams) []InstanceSample {
	return spiral(p, p.Ornaments, 9, p.Height-1, func(coneR float64) float64 {
		return coneR + 0.2
	})
}

// GenerateLights places string lights on a thirteen-turn spiral just inside
// the foliage. Exactly p.Lights samples are returned, in increasing height.
func GenerateLights(p LayoutParams) []InstanceSample {
	return spiral(p, p.Lights, 13, p.Height-1.2, func(coneR float64) float64 {
		return coneR * 0.95
	})
}

// spiral places n points at a fixed angular velocity of turns revolutions,
// rising span units from half a unit above the base.
func spiral(p LayoutParams, n int, turns, span float64, radius func(float64) float64) []InstanceSample {
	out := make([]InstanceSample, n)
	for i := range out {
		t := float64(i) / float64(n)
		angle := t * math.Pi * 2 * turns
		y := p.BaseY + 0.5 + t*span
		r := radius(p.ConeRadius(y))
		out[i] = InstanceSample{
			Index:       i,
			Position:    mgl64.Vec3{math.Cos(angle) * r, y, math.Sin(angle) * r},
			Orientation: mgl64.QuatIdent(),
			Scale:       1,
		}
	}
	return out
}

// lookRotation returns the rotation that turns +Z from eye toward target,
// keeping +Y as close to up as possible.
func lookRotation(eye, target mgl64.Vec3) mgl64.Quat {
	z := target.Sub(eye)
	if z.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	z = z.Normalize()
	up := mgl64.Vec3{0, 1, 0}
	x := up.Cross(z)
	if x.Len() < 1e-12 {
		// Looking straight up or down; any horizontal axis will do.
		x = mgl64.Vec3{1, 0, 0}
	}
	x = x.Normalize()
	y := z.Cross(x)
	m := mgl64.Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize()
}

// Layout is the memoized output of the generators for one LayoutParams.
type Layout struct {
	Params    LayoutParams
	Foliage   []InstanceSample
	Ornaments []InstanceSample
	Lights    []InstanceSample
	// Ribbon is the closed path the ribbon tube follows through the ornaments.
	Ribbon *Curve
}

// ribbonSpread pushes the ribbon path slightly outside the ornaments.
const ribbonSpread = 1.05

// NewLayout runs every generator once. Nothing in the result depends on view
// state, so callers compute it once per process and share it.
func NewLayout(p LayoutParams, rng *rand.Rand) *Layout {
	l := &Layout{
		Params:    p,
		Foliage:   GenerateFoliage(p, rng),
		Ornaments: GenerateOrnaments(p),
		Lights:    GenerateLights(p),
	}
	pts := make([]mgl64.Vec3, len(l.Ornaments))
	for i, o := range l.Ornaments {
		pts[i] = mgl64.Vec3{o.Position[0] * ribbonSpread, o.Position[1], o.Position[2] * ribbonSpread}
	}
	l.Ribbon = NewCurve(pts, true, 0.5)
	return l
}

// NewSeededRand returns a PCG source seeded from seed. A zero seed yields a
// random seed.
func NewSeededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

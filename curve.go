package grandtree

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// curveDivisions is the resolution of the arc-length lookup table.
const curveDivisions = 200

// Curve is a Catmull-Rom spline through an ordered list of control points.
type Curve struct {
	points  []mgl64.Vec3
	closed  bool
	tension float64
	cumLen  []float64 // arc length at each of curveDivisions+1 samples
}

// NewCurve creates a Catmull-Rom curve. When closed, the last point connects
// back to the first. tension 0.5 gives the classic uniform spline.
func NewCurve(points []mgl64.Vec3, closed bool, tension float64) *Curve {
	c := &Curve{
		points:  append([]mgl64.Vec3(nil), points...),
		closed:  closed,
		tension: tension,
	}
	c.buildLengths()
	return c
}

// Points returns the control points.
func (c *Curve) Points() []mgl64.Vec3 {
	return c.points
}

// Closed reports whether the curve loops back to its first point.
func (c *Curve) Closed() bool {
	return c.closed
}

// Length returns the approximate arc length of the curve.
func (c *Curve) Length() float64 {
	if len(c.cumLen) == 0 {
		return 0
	}
	return c.cumLen[len(c.cumLen)-1]
}

// Point returns the point at parameter t in [0, 1]. Parameter spacing
// follows control points, not arc length.
func (c *Curve) Point(t float64) mgl64.Vec3 {
	n := len(c.points)
	switch n {
	case 0:
		return mgl64.Vec3{}
	case 1:
		return c.points[0]
	}

	segs := n - 1
	if c.closed {
		segs = n
	}
	p := t * float64(segs)
	i := int(math.Floor(p))
	w := p - float64(i)
	if !c.closed && i >= n-1 {
		i = n - 2
		w = 1
	}

	p0 := c.at(i - 1)
	p1 := c.at(i)
	p2 := c.at(i + 1)
	p3 := c.at(i + 2)

	var out mgl64.Vec3
	for k := 0; k < 3; k++ {
		out[k] = hermite(p1[k], p2[k], c.tension*(p2[k]-p0[k]), c.tension*(p3[k]-p1[k]), w)
	}
	return out
}

// at returns control point i, wrapping for closed curves and extrapolating
// past the ends of open ones.
func (c *Curve) at(i int) mgl64.Vec3 {
	n := len(c.points)
	if c.closed {
		return c.points[((i%n)+n)%n]
	}
	if i < 0 {
		return c.points[0].Mul(2).Sub(c.points[1])
	}
	if i >= n {
		return c.points[n-1].Mul(2).Sub(c.points[n-2])
	}
	return c.points[i]
}

func hermite(x0, x1, t0, t1, w float64) float64 {
	c2 := -3*x0 + 3*x1 - 2*t0 - t1
	c3 := 2*x0 - 2*x1 + t0 + t1
	return x0 + t0*w + c2*w*w + c3*w*w*w
}

func (c *Curve) buildLengths() {
	c.cumLen = make([]float64, curveDivisions+1)
	prev := c.Point(0)
	for i := 1; i <= curveDivisions; i++ {
		cur := c.Point(float64(i) / curveDivisions)
		c.cumLen[i] = c.cumLen[i-1] + cur.Sub(prev).Len()
		prev = cur
	}
}

// PointAt returns the point at fraction u of the curve's arc length.
func (c *Curve) PointAt(u float64) mgl64.Vec3 {
	return c.Point(c.arcToT(u))
}

// TangentAt returns the unit tangent at fraction u of the arc length.
func (c *Curve) TangentAt(u float64) mgl64.Vec3 {
	const delta = 1e-4
	t := c.arcToT(u)
	t0, t1 := t-delta, t+delta
	if !c.closed {
		t0 = math.Max(t0, 0)
		t1 = math.Min(t1, 1)
	}
	d := c.Point(t1).Sub(c.Point(t0))
	if d.Len() < 1e-12 {
		return mgl64.Vec3{0, 0, 1}
	}
	return d.Normalize()
}

// arcToT maps an arc-length fraction to the curve parameter.
func (c *Curve) arcToT(u float64) float64 {
	total := c.Length()
	if total == 0 {
		return u
	}
	target := u * total
	i := sort.SearchFloat64s(c.cumLen, target)
	if i <= 0 {
		return 0
	}
	if i > curveDivisions {
		return 1
	}
	seg := c.cumLen[i] - c.cumLen[i-1]
	frac := 0.0
	if seg > 0 {
		frac = (target - c.cumLen[i-1]) / seg
	}
	return (float64(i-1) + frac) / curveDivisions
}

// Frame is a point on a curve with an orthonormal basis.
type Frame struct {
	Position mgl64.Vec3
	Tangent  mgl64.Vec3
	Normal   mgl64.Vec3
	Binormal mgl64.Vec3
}

// Frames samples segments+1 evenly spaced frames along the curve using
// parallel transport, so the basis never flips between neighbors.
func (c *Curve) Frames(segments int) []Frame {
	if segments < 1 {
		segments = 1
	}
	frames := make([]Frame, segments+1)
	for i := range frames {
		u := float64(i) / float64(segments)
		frames[i].Position = c.PointAt(u)
		frames[i].Tangent = c.TangentAt(u)
	}

	// Seed the first normal from the tangent's smallest component axis.
	t0 := frames[0].Tangent
	axis := mgl64.Vec3{1, 0, 0}
	lo := math.Abs(t0[0])
	if math.Abs(t0[1]) <= lo {
		lo = math.Abs(t0[1])
		axis = mgl64.Vec3{0, 1, 0}
	}
	if math.Abs(t0[2]) <= lo {
		axis = mgl64.Vec3{0, 0, 1}
	}
	v := t0.Cross(axis).Normalize()
	frames[0].Normal = t0.Cross(v).Normalize()
	frames[0].Binormal = t0.Cross(frames[0].Normal)

	for i := 1; i < len(frames); i++ {
		n := frames[i-1].Normal
		axis := frames[i-1].Tangent.Cross(frames[i].Tangent)
		if l := axis.Len(); l > 1e-12 {
			axis = axis.Mul(1 / l)
			dot := frames[i-1].Tangent.Dot(frames[i].Tangent)
			theta := math.Acos(math.Max(-1, math.Min(1, dot)))
			n = mgl64.QuatRotate(theta, axis).Rotate(n)
		}
		frames[i].Normal = n
		frames[i].Binormal = frames[i].Tangent.Cross(n)
	}
	return frames
}

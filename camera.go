package grandtree

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// minPolar keeps the camera off the pole so LookAt stays well defined.
const minPolar = 1e-3

// orbitAnim holds active orbit-to tweens for the three spherical coordinates.
type orbitAnim struct {
	theta, phi, radius *gween.Tween
	done               [3]bool
}

// Camera is a perspective camera orbiting a target point. Drag and wheel
// input move goal angles; harmonica springs ease the actual angles toward
// them.
type Camera struct {
	// Target is the world point the camera looks at and orbits.
	Target mgl64.Vec3
	// FOV is the vertical field of view in degrees.
	FOV       float64
	Near, Far float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	MinDistance, MaxDistance float64
	// MaxPolar limits how far below the zenith the camera may swing.
	MaxPolar float64
	// RotateSpeed scales drag rotation. A drag across the full viewport
	// height turns the camera by 2*pi*RotateSpeed.
	RotateSpeed float64
	ZoomSpeed   float64
	// EnablePan is carried from the rig description. Panning is not
	// implemented; the target stays fixed.
	EnablePan bool

	theta, phi, radius             float64
	goalTheta, goalPhi, goalRadius float64
	velTheta, velPhi, velRadius    float64

	damping float64
	spring  harmonica.Spring
	placed  bool

	view, proj, viewProj mgl64.Mat4
	dirty                bool

	orbit *orbitAnim
}

// newCamera creates a Camera with default values and the given viewport.
func newCamera(viewport Rect) *Camera {
	c := &Camera{
		FOV:         45,
		Near:        0.1,
		Far:         200,
		Viewport:    viewport,
		MinDistance: 0,
		MaxDistance: math.Inf(1),
		MaxPolar:    math.Pi,
		RotateSpeed: 1,
		ZoomSpeed:   1,
		dirty:       true,
	}
	c.SetPosition(mgl64.Vec3{0, 0, 10})
	return c
}

// Apply configures the camera from a rig description. The position is
// only taken the first time so that user orbiting survives recomposition.
func (c *Camera) Apply(d CameraRigDesc) {
	c.Target = d.Target
	c.FOV = d.FOV
	c.Near, c.Far = d.Near, d.Far
	c.MinDistance, c.MaxDistance = d.MinDistance, d.MaxDistance
	if c.MaxDistance <= 0 {
		c.MaxDistance = math.Inf(1)
	}
	c.MaxPolar = d.MaxPolar
	if c.MaxPolar <= 0 {
		c.MaxPolar = math.Pi
	}
	c.RotateSpeed = d.RotateSpeed
	c.EnablePan = d.EnablePan
	c.SetDamping(d.Damping)
	if !c.placed {
		c.SetPosition(d.Position)
		c.placed = true
	}
	c.clampGoals()
	c.dirty = true
}

// SetDamping sets the per-frame approach factor in (0, 1). Zero snaps the
// camera to its goal every frame.
func (c *Camera) SetDamping(d float64) {
	if d == c.damping {
		return
	}
	c.damping = d
	if d > 0 && d < 1 {
		c.spring = harmonica.NewSpring(harmonica.FPS(60), springFrequency(d), 1)
	}
}

// springFrequency converts a per-frame approach factor at 60 FPS into the
// angular frequency of a critically damped spring with a similar settle time.
func springFrequency(d float64) float64 {
	return -math.Log(1-d) * 60
}

// SetPosition places the camera at p immediately, cancelling any motion.
func (c *Camera) SetPosition(p mgl64.Vec3) {
	off := p.Sub(c.Target)
	r := off.Len()
	if r < 1e-9 {
		r = 1e-9
	}
	c.radius = r
	c.phi = math.Acos(clampRange(off.Y()/r, -1, 1))
	c.theta = math.Atan2(off.X(), off.Z())
	c.goalTheta, c.goalPhi, c.goalRadius = c.theta, c.phi, c.radius
	c.velTheta, c.velPhi, c.velRadius = 0, 0, 0
	c.orbit = nil
	c.dirty = true
}

// Position returns the camera's world position.
func (c *Camera) Position() mgl64.Vec3 {
	return c.Target.Add(sphericalOffset(c.theta, c.phi, c.radius))
}

// Spherical returns the current azimuth, polar angle and distance.
func (c *Camera) Spherical() (theta, phi, radius float64) {
	return c.theta, c.phi, c.radius
}

func sphericalOffset(theta, phi, r float64) mgl64.Vec3 {
	sp, cp := math.Sincos(phi)
	st, ct := math.Sincos(theta)
	return mgl64.Vec3{r * sp * st, r * cp, r * sp * ct}
}

// Rotate orbits the goal by a pointer drag of (dx, dy) pixels.
func (c *Camera) Rotate(dx, dy float64) {
	h := c.Viewport.Height
	if h <= 0 {
		return
	}
	c.orbit = nil
	c.goalTheta -= 2 * math.Pi * dx / h * c.RotateSpeed
	c.goalPhi -= 2 * math.Pi * dy / h * c.RotateSpeed
	c.clampGoals()
}

// Zoom dollies the goal distance. Positive wheel deltas move closer.
func (c *Camera) Zoom(wheel float64) {
	if wheel == 0 {
		return
	}
	c.orbit = nil
	scale := math.Pow(0.95, c.ZoomSpeed*math.Abs(wheel))
	if wheel > 0 {
		c.goalRadius *= scale
	} else {
		c.goalRadius /= scale
	}
	c.clampGoals()
}

// OrbitTo animates the camera to the given spherical coordinates over
// duration seconds. Limits are applied to the destination.
func (c *Camera) OrbitTo(theta, phi, radius float64, duration float32, easeFn ease.TweenFunc) {
	phi = clampRange(phi, minPolar, c.MaxPolar)
	radius = clampRange(radius, c.MinDistance, c.MaxDistance)
	c.orbit = &orbitAnim{
		theta:  gween.New(float32(c.theta), float32(theta), duration, easeFn),
		phi:    gween.New(float32(c.phi), float32(phi), duration, easeFn),
		radius: gween.New(float32(c.radius), float32(radius), duration, easeFn),
	}
}

func (c *Camera) clampGoals() {
	c.goalPhi = clampRange(c.goalPhi, minPolar, math.Min(c.MaxPolar, math.Pi-minPolar))
	c.goalRadius = clampRange(c.goalRadius, c.MinDistance, c.MaxDistance)
}

// update advances orbit animation and damping. Called from Scene.Update().
func (c *Camera) update(dt float32) {
	prevT, prevP, prevR := c.theta, c.phi, c.radius

	if o := c.orbit; o != nil {
		tweens := [3]*gween.Tween{o.theta, o.phi, o.radius}
		vals := [3]*float64{&c.goalTheta, &c.goalPhi, &c.goalRadius}
		for i, tw := range tweens {
			if o.done[i] {
				continue
			}
			v, done := tw.Update(dt)
			*vals[i] = float64(v)
			o.done[i] = done
		}
		c.theta, c.phi, c.radius = c.goalTheta, c.goalPhi, c.goalRadius
		if o.done[0] && o.done[1] && o.done[2] {
			c.orbit = nil
		}
	} else if c.damping > 0 && c.damping < 1 {
		c.theta, c.velTheta = c.spring.Update(c.theta, c.velTheta, c.goalTheta)
		c.phi, c.velPhi = c.spring.Update(c.phi, c.velPhi, c.goalPhi)
		c.radius, c.velRadius = c.spring.Update(c.radius, c.velRadius, c.goalRadius)
	} else {
		c.theta, c.phi, c.radius = c.goalTheta, c.goalPhi, c.goalRadius
	}

	if c.theta != prevT || c.phi != prevP || c.radius != prevR {
		c.dirty = true
	}
}

// Settled reports whether the camera has reached its goal.
func (c *Camera) Settled() bool {
	const eps = 1e-4
	return c.orbit == nil &&
		math.Abs(c.theta-c.goalTheta) < eps &&
		math.Abs(c.phi-c.goalPhi) < eps &&
		math.Abs(c.radius-c.goalRadius) < eps
}

// MarkDirty forces a recomputation of the view and projection matrices.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// SetViewport sets the screen rectangle and marks the projection dirty.
func (c *Camera) SetViewport(r Rect) {
	if c.Viewport != r {
		c.Viewport = r
		c.dirty = true
	}
}

func (c *Camera) computeMatrices() {
	if !c.dirty {
		return
	}
	c.dirty = false
	aspect := 1.0
	if c.Viewport.Height > 0 {
		aspect = c.Viewport.Width / c.Viewport.Height
	}
	c.proj = mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
	c.view = mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
	c.viewProj = c.proj.Mul4(c.view)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	c.computeMatrices()
	return c.view
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	c.computeMatrices()
	return c.proj
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	c.computeMatrices()
	return c.viewProj
}

// WorldToScreen projects a world point to screen coordinates. depth is the
// distance in front of the camera along its view axis; ok is false for
// points at or behind the near plane.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	c.computeMatrices()
	return projectPoint(c.viewProj, c.view, c.Viewport, c.Near, p)
}

// projectPoint is WorldToScreen with the matrices passed in, so the renderer
// can project without re-checking the dirty flag per vertex.
func projectPoint(viewProj, view mgl64.Mat4, vp Rect, near float64, p mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	depth = -(view[2]*p[0] + view[6]*p[1] + view[10]*p[2] + view[14])
	if depth < near {
		return 0, 0, depth, false
	}
	clip := viewProj.Mul4x1(p.Vec4(1))
	w := clip[3]
	nx, ny := clip[0]/w, clip[1]/w
	sx = vp.X + (nx+1)/2*vp.Width
	sy = vp.Y + (1-ny)/2*vp.Height
	return sx, sy, depth, true
}

// pixelsPerUnit returns the screen size in pixels of one world unit at the
// given view depth.
func (c *Camera) pixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	f := 1 / math.Tan(mgl64.DegToRad(c.FOV)/2)
	return f * c.Viewport.Height / 2 / depth
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

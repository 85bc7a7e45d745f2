package grandtree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenAlpha, TweenRotationY) and call Update(dt) each frame. The group
// auto-applies values and marks the node dirty. If the target node is
// disposed, the group stops immediately.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	// after runs once per Update, after the fields are written.
	after func()
	Done  bool
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.after != nil {
		g.after()
	}
	if g.target != nil {
		g.target.MarkDirty()
	}
}

// TweenPosition creates a TweenGroup that animates node.Position to the
// given point over the specified duration using the easing function.
func TweenPosition(node *Node, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: node}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(float32(node.Position[i]), float32(to[i]), duration, fn)
		g.fields[i] = &node.Position[i]
	}
	return g
}

// TweenScale creates a TweenGroup that animates all three scale axes of node
// to the uniform value s.
func TweenScale(node *Node, s float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: node}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(float32(node.Scale[i]), float32(s), duration, fn)
		g.fields[i] = &node.Scale[i]
	}
	return g
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value
// over the specified duration using the easing function.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.Alpha), float32(to), duration, fn)
	g.fields[0] = &node.Alpha
	return g
}

// TweenRotationY creates a TweenGroup that spins node about +Y from angle
// from to angle to (radians). The node's rotation is replaced each update.
func TweenRotationY(node *Node, from, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	angle := from
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(from), float32(to), duration, fn)
	g.fields[0] = &angle
	g.after = func() { node.Rotation = mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0}) }
	return g
}

// TweenValue creates a TweenGroup that animates an arbitrary field with no
// target node.
func TweenValue(field *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1}
	g.tweens[0] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[0] = field
	return g
}

// --- Idle float ---

// Floater bobs and rocks a node around its rest pose. Speed scales time;
// RotationIntensity and FloatIntensity scale the rocking and the vertical
// bob respectively.
type Floater struct {
	Speed             float64
	RotationIntensity float64
	FloatIntensity    float64

	node    *Node
	rest    mgl64.Vec3
	elapsed float64
	offset  float64
}

// floatRange bounds the vertical bob before FloatIntensity is applied.
const floatRange = 0.1

// NewFloater attaches a Floater to node, using its current position as the
// rest position. offset desynchronizes several floaters.
func NewFloater(node *Node, speed, rotationIntensity, floatIntensity, offset float64) *Floater {
	return &Floater{
		Speed:             speed,
		RotationIntensity: rotationIntensity,
		FloatIntensity:    floatIntensity,
		node:              node,
		rest:              node.Position,
		offset:            offset,
	}
}

// SetRest moves the rest position.
func (f *Floater) SetRest(p mgl64.Vec3) {
	f.rest = p
}

// Update advances the float by dt seconds and poses the node.
func (f *Floater) Update(dt float64) {
	if f.node == nil || f.node.IsDisposed() {
		return
	}
	f.elapsed += dt
	t := f.offset + f.elapsed*f.Speed

	rx := math.Cos(t/4) / 8 * f.RotationIntensity
	ry := math.Sin(t/4) / 8 * f.RotationIntensity
	rz := math.Sin(t/4) / 20 * f.RotationIntensity
	f.node.Rotation = mgl64.AnglesToQuat(rx, ry, rz, mgl64.XYZ)

	bob := math.Sin(t/4) / 10 * f.FloatIntensity
	bob = math.Max(-floatRange, math.Min(floatRange, bob))
	f.node.Position = f.rest.Add(mgl64.Vec3{0, bob, 0})
	f.node.MarkDirty()
}

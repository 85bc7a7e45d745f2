package grandtree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Light is a light source in a LightRig.
type Light struct {
	Name      string
	Kind      LightKind
	Position  mgl64.Vec3
	Color     Color
	Intensity float64
	// Distance is the point light cutoff. Zero means no falloff.
	Distance float64
	// Angle is the spot cone half angle in radians. Penumbra in [0, 1]
	// softens the cone edge.
	Angle    float64
	Penumbra float64
	// SpotTarget is the point a spot light aims at.
	SpotTarget mgl64.Vec3
	// Enabled determines whether the light contributes. Disabled lights are
	// skipped entirely.
	Enabled bool
	// Target, if set, makes the light follow this node's world origin each
	// frame.
	Target *Node
	// Offset is added to the target's world origin.
	Offset mgl64.Vec3
	// CastShadow is carried for parity with the scene description; the
	// renderer does not draw shadows.
	CastShadow bool
}

// Environment is a two-tone gradient reflected by metallic surfaces.
type Environment struct {
	Sky       Color
	Ground    Color
	Intensity float64
}

// CityEnvironment is a cool overcast sky over warm pavement.
var CityEnvironment = Environment{
	Sky:       Hex("#C8D4E0"),
	Ground:    Hex("#3A3128"),
	Intensity: 1,
}

// Fog is linear distance fog.
type Fog struct {
	Color     Color
	Near, Far float64
}

// LightRig holds the scene's lights and the global shading parameters.
type LightRig struct {
	lights []*Light

	// Environment is reflected by metals. Nil disables the term.
	Environment *Environment
	// Fog, if set, blends lit surfaces toward Fog.Color with camera distance.
	Fog *Fog
	// Exposure scales tone-mapped output. Zero means 1.
	Exposure float64
}

// NewLightRig creates an empty rig.
func NewLightRig() *LightRig {
	return &LightRig{Exposure: 1}
}

// AddLight adds a light to the rig.
func (r *LightRig) AddLight(l *Light) {
	r.lights = append(r.lights, l)
}

// RemoveLight removes a light from the rig.
func (r *LightRig) RemoveLight(l *Light) {
	for i, existing := range r.lights {
		if existing == l {
			r.lights = append(r.lights[:i], r.lights[i+1:]...)
			return
		}
	}
}

// ClearLights removes all lights from the rig.
func (r *LightRig) ClearLights() {
	r.lights = r.lights[:0]
}

// Lights returns the current light list. The returned slice MUST NOT be mutated.
func (r *LightRig) Lights() []*Light {
	return r.lights
}

// Light returns the light named name, or nil.
func (r *LightRig) Light(name string) *Light {
	for _, l := range r.lights {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// sync moves attached lights to their target nodes. Call after world
// transforms are up to date.
func (r *LightRig) sync() {
	for _, l := range r.lights {
		if l.Target == nil || l.Target.IsDisposed() {
			continue
		}
		l.Position = l.Target.WorldPosition().Add(l.Offset)
	}
}

// Shade computes the lit color of a surface point. base is the material
// color already multiplied by any instance color; p and n are the world
// position and unit normal; eye is the camera position.
func (r *LightRig) Shade(m *Material, base Color, p, n, eye mgl64.Vec3) Color {
	if m.Unlit {
		return r.toneMap(m, base)
	}
	toEye := eye.Sub(p)
	viewDist := toEye.Len()
	v := mgl64.Vec3{0, 0, 1}
	if viewDist > 1e-9 {
		v = toEye.Mul(1 / viewDist)
	}

	diffuse := m.diffuseColor(base)
	specTint := m.specularColor(base)
	shin := m.shininess()

	var lit Color
	for _, l := range r.lights {
		if !l.Enabled || l.Intensity <= 0 {
			continue
		}
		lc := l.Color.Scale(l.Intensity)
		if l.Kind == LightAmbient {
			lit = lit.Add(diffuse.Mul(lc))
			continue
		}

		toLight := l.Position.Sub(p)
		d := toLight.Len()
		if d < 1e-9 {
			continue
		}
		ld := toLight.Mul(1 / d)
		atten := l.attenuation(d, ld)
		if atten <= 0 {
			continue
		}
		ndl := n.Dot(ld)
		if ndl <= 0 {
			continue
		}
		k := atten * ndl
		lit = lit.Add(diffuse.Mul(lc).Scale(k))

		h := ld.Add(v)
		if hl := h.Len(); hl > 1e-9 {
			ndh := math.Max(0, n.Dot(h.Mul(1/hl)))
			norm := (shin + 8) / (8 * math.Pi)
			spec := math.Pow(ndh, shin) * norm
			lit = lit.Add(specTint.Mul(lc).Scale(spec * k))
		}
	}

	if env := r.Environment; env != nil {
		ei := m.EnvIntensity
		if ei == 0 {
			ei = 1
		}
		refl := n.Mul(2 * n.Dot(v)).Sub(v)
		t := clamp01((refl.Y() + 1) / 2)
		sample := env.Ground.Lerp(env.Sky, t).Scale(env.Intensity * ei)
		gloss := 1 - 0.7*clamp01(m.Roughness)
		lit = lit.Add(specTint.Mul(sample).Scale(gloss * clamp01(m.Metalness+0.1)))
	}

	lit = lit.Add(m.emission())
	lit.A = base.A
	out := r.toneMap(m, lit)
	return r.fog(out, viewDist)
}

// attenuation returns the distance and cone falloff for a light reaching a
// point d away along unit direction ld (point to light).
func (l *Light) attenuation(d float64, ld mgl64.Vec3) float64 {
	a := 1.0
	if l.Distance > 0 {
		if d >= l.Distance {
			return 0
		}
		f := 1 - d/l.Distance
		a = f * f
	}
	if l.Kind == LightSpot {
		axis := l.SpotTarget.Sub(l.Position)
		if axis.Len() < 1e-9 {
			return 0
		}
		cosTheta := ld.Mul(-1).Dot(axis.Normalize())
		outer := math.Cos(l.Angle)
		inner := math.Cos(l.Angle * (1 - clamp01(l.Penumbra)))
		a *= smoothstep(outer, inner, cosTheta)
	}
	return a
}

func (r *LightRig) toneMap(m *Material, c Color) Color {
	if m.NoToneMap {
		return c
	}
	e := r.Exposure
	if e == 0 {
		e = 1
	}
	return c.Scale(e)
}

func (r *LightRig) fog(c Color, dist float64) Color {
	f := r.Fog
	if f == nil || f.Far <= f.Near {
		return c
	}
	t := clamp01((dist - f.Near) / (f.Far - f.Near))
	out := c.Lerp(f.Color, t)
	out.A = c.A
	return out
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

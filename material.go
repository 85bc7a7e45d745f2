package grandtree

import "math"

// Material describes how a surface responds to light.
type Material struct {
	Color             Color
	Emissive          Color
	EmissiveIntensity float64
	Roughness         float64
	Metalness         float64
	// EnvIntensity scales the environment reflection term.
	EnvIntensity float64
	// Unlit materials ignore lights and fog shading and output Color.
	Unlit bool
	// NoToneMap excludes the surface from exposure scaling so it can bloom.
	NoToneMap bool
	// Reflectivity, when positive, mirrors the scene in the surface.
	Reflectivity float64
}

// shininess maps roughness to a Blinn-Phong exponent.
func (m *Material) shininess() float64 {
	r := clamp01(m.Roughness)
	return 2 / math.Max(r*r*r*r, 1e-4)
}

// specularColor returns the reflected highlight tint. Metals tint their
// highlights with the base color; dielectrics reflect about 4% white.
func (m *Material) specularColor(base Color) Color {
	mt := clamp01(m.Metalness)
	return ColorWhite.Scale(0.04).Lerp(base, mt)
}

// diffuseColor returns the albedo after the metallic share is removed.
func (m *Material) diffuseColor(base Color) Color {
	return base.Scale(1 - clamp01(m.Metalness)*0.9)
}

func (m *Material) emission() Color {
	return m.Emissive.Scale(m.EmissiveIntensity)
}

package grandtree

import "github.com/go-gl/mathgl/mgl64"

// GeometryKind selects a geometry builder.
type GeometryKind uint8

const (
	GeometryCone GeometryKind = iota
	GeometryCylinder
	GeometrySphere
	GeometryOctahedron
	GeometryPlane
	GeometryTube
)

// GeometryDesc parameterizes one of the geometry builders. Only the fields
// relevant to Kind are read.
type GeometryDesc struct {
	Kind GeometryKind
	// Radius is the cone base, sphere, octahedron or tube radius.
	Radius float64
	// RadiusTop is the cylinder top radius; Radius is its bottom radius.
	RadiusTop float64
	// Height is the cone or cylinder height.
	Height float64
	// Width and Depth size the plane, which lies in XZ.
	Width, Depth float64
	// Segments is the radial segment count, or the tube's length segments.
	Segments int
	// Rings is the sphere ring count, or the tube's radial segments.
	Rings int
	// Path is the tube centerline.
	Path *Curve
}

// MeshDesc is a single mesh.
type MeshDesc struct {
	Name          string
	Geometry      GeometryDesc
	Material      Material
	Position      mgl64.Vec3
	Rotation      mgl64.Quat
	CastShadow    bool
	ReceiveShadow bool
}

// InstancedDesc is a geometry drawn once per instance with a shared material.
// Instance colors multiply the material color.
type InstancedDesc struct {
	Name          string
	Geometry      GeometryDesc
	Material      Material
	Instances     []Instance
	CastShadow    bool
	ReceiveShadow bool
}

// LightKind distinguishes light types.
type LightKind uint8

const (
	LightAmbient LightKind = iota
	LightSpot
	LightPoint
)

// LightDesc is a light source. Position is unused for ambient lights.
type LightDesc struct {
	Name      string
	Kind      LightKind
	Position  mgl64.Vec3
	Color     Color
	Intensity float64
	// Distance is the point light cutoff. Zero means unbounded.
	Distance float64
	// Angle is the spot cone half angle in radians; Penumbra in [0, 1] softens its edge.
	Angle      float64
	Penumbra   float64
	CastShadow bool
}

// SparklesDesc is a field of twinkling particles in a cube.
type SparklesDesc struct {
	Name   string
	Count  int
	Center mgl64.Vec3
	// Extent is the cube edge length.
	Extent  float64
	Size    float64
	Speed   float64
	Opacity float64
	Color   Color
}

// FogDesc is linear distance fog.
type FogDesc struct {
	Color     Color
	Near, Far float64
}

// FloatDesc is an idle bobbing and rocking motion.
type FloatDesc struct {
	Speed             float64
	RotationIntensity float64
	FloatIntensity    float64
}

// StarDesc is the tree topper with its light and sparkles.
type StarDesc struct {
	Mesh     MeshDesc
	Light    LightDesc
	Sparkles SparklesDesc
	Float    FloatDesc
}

// TreeDesc is the rotating tree group.
type TreeDesc struct {
	// Rotation is the group's current angle about +Y in radians.
	Rotation  float64
	Trunk     MeshDesc
	Foliage   InstancedDesc
	Star      StarDesc
	Ornaments InstancedDesc
	Lights    InstancedDesc
	Ribbon    MeshDesc
}

// EffectKind identifies a post-processing stage.
type EffectKind uint8

const (
	EffectBloom EffectKind = iota
	EffectVignette
	EffectNoise
)

// String returns the effect's name.
func (k EffectKind) String() string {
	switch k {
	case EffectBloom:
		return "bloom"
	case EffectVignette:
		return "vignette"
	case EffectNoise:
		return "noise"
	}
	return "effect"
}

// EffectDesc parameterizes a post-processing stage. Only the fields relevant
// to Kind are read.
type EffectDesc struct {
	Kind EffectKind
	// Bloom.
	Threshold float64
	Intensity float64
	Radius    float64
	Smoothing float64
	// Vignette.
	Offset   float64
	Darkness float64
	// Noise.
	Opacity float64
	Blend   BlendMode
}

// CameraRigDesc describes the viewing camera and its orbit limits.
type CameraRigDesc struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	// FOV is the vertical field of view in degrees.
	FOV         float64
	Near, Far   float64
	Damping     float64
	EnablePan   bool
	MaxPolar    float64
	MinDistance float64
	MaxDistance float64
	RotateSpeed float64
}

// SceneDesc is a complete declarative description of what the scene should
// look like for one ViewState. Optional parts are nil when absent.
type SceneDesc struct {
	Background *Color
	Fog        *FogDesc
	Floor      *MeshDesc
	Lights     []LightDesc
	// Environment is the gradient reflected by metallic materials.
	Environment *Environment
	Tree        TreeDesc
	Snow        *SparklesDesc
	Effects     []EffectDesc
	Camera      CameraRigDesc
	// Exposure scales tone-mapped output.
	Exposure float64
	// Transparent leaves uncovered pixels clear so a backdrop shows through.
	Transparent bool
}

// Light returns the light named name.
func (d *SceneDesc) Light(name string) (LightDesc, bool) {
	for _, l := range d.Lights {
		if l.Name == name {
			return l, true
		}
	}
	return LightDesc{}, false
}

// Effect returns the first effect of kind k.
func (d *SceneDesc) Effect(k EffectKind) (EffectDesc, bool) {
	for _, e := range d.Effects {
		if e.Kind == k {
			return e, true
		}
	}
	return EffectDesc{}, false
}

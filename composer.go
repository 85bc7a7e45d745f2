package grandtree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RotationDamping slows the nominal rotation speed control down.
const RotationDamping = 0.2

// Names of composed lights and meshes.
const (
	NameAmbient     = "ambient"
	NameKeySpot     = "key"
	NameFillLeft    = "fill-left"
	NameFillRight   = "fill-right"
	NameFront       = "front"
	NameStarLight   = "star-light"
	NameTrunk       = "trunk"
	NameFoliage     = "foliage"
	NameStar        = "star"
	NameOrnaments   = "ornaments"
	NameLights      = "lights"
	NameRibbon      = "ribbon"
	NameFloor       = "floor"
	NameSnow        = "snow"
	NameStarSparkle = "star-sparkles"
)

var (
	colorBackground = Hex("#010603")
	colorFoliage    = Hex("#0B6623")
	colorFoliageAlt = Hex("#138808")
	colorStar       = Hex("#FFD700")
)

// Composer turns a ViewState into a SceneDesc. The layout is computed once
// and shared by every composition; theme-dependent instance lists are cached
// per theme. Composer also owns the tree's rotation angle.
type Composer struct {
	layout   *Layout
	rotation float64

	foliage   []Instance
	ornaments map[Theme][]Instance
	lights    map[Theme][]Instance
}

// NewComposer creates a Composer over layout.
func NewComposer(layout *Layout) *Composer {
	return &Composer{
		layout:    layout,
		ornaments: make(map[Theme][]Instance),
		lights:    make(map[Theme][]Instance),
	}
}

// Layout returns the memoized layout.
func (c *Composer) Layout() *Layout {
	return c.layout
}

// Rotation returns the tree's current angle about +Y in radians.
func (c *Composer) Rotation() float64 {
	return c.rotation
}

// Tick advances the tree rotation by dt seconds at the state's rotation speed
// and returns the new angle. This is the only per-frame mutation.
func (c *Composer) Tick(dt float64, s ViewState) float64 {
	c.rotation += dt * s.RotationSpeed * RotationDamping
	return c.rotation
}

// Compose builds the scene description for s.
func (c *Composer) Compose(s ViewState) *SceneDesc {
	p := c.layout.Params
	pal := ResolvePalette(s.Theme)

	d := &SceneDesc{
		Exposure:    1.2,
		Transparent: true,
		Camera: CameraRigDesc{
			Position:    mgl64.Vec3{0, 4, 12},
			FOV:         45,
			Near:        0.1,
			Far:         200,
			Damping:     0.05,
			EnablePan:   false,
			MaxPolar:    math.Pi/2 - 0.1,
			MinDistance: 5,
			MaxDistance: 20,
			RotateSpeed: 0.5,
		},
	}

	if !s.UseCamera {
		bg := colorBackground
		d.Background = &bg
		d.Fog = &FogDesc{Color: colorBackground, Near: 5, Far: 25}
		d.Floor = &MeshDesc{
			Name:     NameFloor,
			Geometry: GeometryDesc{Kind: GeometryPlane, Width: 50, Depth: 50},
			Material: Material{
				Color:        Hex("#050505"),
				Roughness:    1,
				Metalness:    0.5,
				Reflectivity: 0.4,
			},
			Position:      mgl64.Vec3{0, p.BaseY, 0},
			Rotation:      mgl64.QuatIdent(),
			ReceiveShadow: true,
		}
	}

	ambient := 0.2
	if s.UseCamera {
		ambient = 0.8
	}
	d.Lights = []LightDesc{
		{Name: NameAmbient, Kind: LightAmbient, Color: pal.Ambient, Intensity: ambient},
		{
			Name:       NameKeySpot,
			Kind:       LightSpot,
			Position:   mgl64.Vec3{10, 20, 10},
			Color:      Hex("#FFF5CC"),
			Intensity:  s.LightIntensity * 2.5,
			Angle:      0.25,
			Penumbra:   1,
			CastShadow: true,
		},
		{Name: NameFillLeft, Kind: LightPoint, Position: mgl64.Vec3{-10, 5, -10}, Color: pal.FillLeft, Intensity: 0.8},
		{Name: NameFillRight, Kind: LightPoint, Position: mgl64.Vec3{10, 5, -10}, Color: pal.FillRight, Intensity: 0.8},
		{Name: NameFront, Kind: LightPoint, Position: mgl64.Vec3{0, 0, 10}, Color: ColorWhite, Intensity: 0.5},
	}

	env := CityEnvironment
	d.Environment = &env
	d.Tree = c.composeTree(pal)

	if s.IsSnowing {
		d.Snow = &SparklesDesc{
			Name:    NameSnow,
			Count:   300,
			Extent:  15,
			Size:    4,
			Speed:   0.4,
			Opacity: 0.6,
			Color:   pal.Snow,
		}
	}

	d.Effects = append(d.Effects, EffectDesc{
		Kind: EffectBloom, Threshold: 0.9, Intensity: 1.2, Radius: 0.4, Smoothing: 0.025,
	})
	if !s.UseCamera {
		d.Effects = append(d.Effects, EffectDesc{Kind: EffectVignette, Offset: 0.1, Darkness: 1.1})
	}
	d.Effects = append(d.Effects, EffectDesc{Kind: EffectNoise, Opacity: 0.02, Blend: BlendScreen})
	return d
}

func (c *Composer) composeTree(pal Palette) TreeDesc {
	p := c.layout.Params
	starY := p.BaseY + p.Height
	return TreeDesc{
		Rotation: c.rotation,
		Trunk: MeshDesc{
			Name: NameTrunk,
			Geometry: GeometryDesc{
				Kind: GeometryCylinder, RadiusTop: 0.2, Radius: 0.6, Height: p.Height * 0.8, Segments: 8,
			},
			Material:   Material{Color: Hex("#2E1C11"), Roughness: 0.9},
			Position:   mgl64.Vec3{0, p.BaseY + p.Height*0.4, 0},
			Rotation:   mgl64.QuatIdent(),
			CastShadow: true,
		},
		Foliage: InstancedDesc{
			Name:     NameFoliage,
			Geometry: GeometryDesc{Kind: GeometryCone, Radius: 0.35, Height: 1.2, Segments: 4},
			Material: Material{
				Color:             ColorWhite,
				Roughness:         0.6,
				Metalness:         0.1,
				Emissive:          Hex("#002200"),
				EmissiveIntensity: 0.2,
			},
			Instances:     c.foliageInstances(),
			CastShadow:    true,
			ReceiveShadow: true,
		},
		Star: StarDesc{
			Mesh: MeshDesc{
				Name:     NameStar,
				Geometry: GeometryDesc{Kind: GeometryOctahedron, Radius: 0.6},
				Material: Material{
					Color:             colorStar,
					Emissive:          Hex("#FFAA00"),
					EmissiveIntensity: 2,
					NoToneMap:         true,
					Roughness:         0.2,
					Metalness:         1,
				},
				Position: mgl64.Vec3{0, starY, 0},
				Rotation: mgl64.QuatIdent(),
			},
			Light: LightDesc{
				Name:      NameStarLight,
				Kind:      LightPoint,
				Position:  mgl64.Vec3{0, starY, 0},
				Color:     colorStar,
				Intensity: 3,
				Distance:  8,
			},
			Sparkles: SparklesDesc{
				Name:    NameStarSparkle,
				Count:   20,
				Center:  mgl64.Vec3{0, starY, 0},
				Extent:  2,
				Size:    6,
				Speed:   0.4,
				Opacity: 1,
				Color:   ColorWhite,
			},
			Float: FloatDesc{Speed: 2, RotationIntensity: 0.5, FloatIntensity: 0.5},
		},
		Ornaments: InstancedDesc{
			Name:     NameOrnaments,
			Geometry: GeometryDesc{Kind: GeometrySphere, Radius: 0.18, Segments: 16, Rings: 12},
			Material: Material{
				Color:        ColorWhite,
				Roughness:    0.1,
				Metalness:    0.9,
				EnvIntensity: 1.5,
			},
			Instances:  c.ornamentInstances(pal),
			CastShadow: true,
		},
		Lights: InstancedDesc{
			Name:      NameLights,
			Geometry:  GeometryDesc{Kind: GeometrySphere, Radius: 0.06, Segments: 8, Rings: 6},
			Material:  Material{Color: ColorWhite, Unlit: true, NoToneMap: true},
			Instances: c.lightInstances(pal),
		},
		Ribbon: MeshDesc{
			Name: NameRibbon,
			Geometry: GeometryDesc{
				Kind: GeometryTube, Path: c.layout.Ribbon, Segments: 200, Radius: 0.08, Rings: 8,
			},
			Material: Material{
				Color:             pal.Ribbon,
				Emissive:          pal.RibbonEmissive,
				EmissiveIntensity: 1,
				Roughness:         0.3,
				Metalness:         1,
			},
			Rotation:   mgl64.QuatIdent(),
			CastShadow: true,
		},
	}
}

func (c *Composer) foliageInstances() []Instance {
	if c.foliage != nil {
		return c.foliage
	}
	c.foliage = make([]Instance, len(c.layout.Foliage))
	for i, f := range c.layout.Foliage {
		col := colorFoliage
		if f.Accent {
			col = colorFoliageAlt
		}
		c.foliage[i] = Instance{Position: f.Position, Orientation: f.Orientation, Scale: f.Scale, Color: col}
	}
	return c.foliage
}

func (c *Composer) ornamentInstances(pal Palette) []Instance {
	if cached, ok := c.ornaments[pal.Theme]; ok {
		return cached
	}
	out := make([]Instance, len(c.layout.Ornaments))
	for i, o := range c.layout.Ornaments {
		out[i] = Instance{Position: o.Position, Orientation: o.Orientation, Scale: o.Scale, Color: pal.OrnamentColor(i)}
	}
	c.ornaments[pal.Theme] = out
	return out
}

func (c *Composer) lightInstances(pal Palette) []Instance {
	if cached, ok := c.lights[pal.Theme]; ok {
		return cached
	}
	out := make([]Instance, len(c.layout.Lights))
	for i, l := range c.layout.Lights {
		out[i] = Instance{Position: l.Position, Orientation: l.Orientation, Scale: l.Scale, Color: pal.Light}
	}
	c.lights[pal.Theme] = out
	return out
}

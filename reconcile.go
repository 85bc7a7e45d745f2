package grandtree

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Names of the group nodes Apply creates.
const (
	NameTree      = "tree"
	NameStarGroup = "star-group"
)

// sceneNodes holds the nodes and filters created by the first Apply.
type sceneNodes struct {
	built bool

	floor     *Node
	tree      *Node
	trunk     *Node
	foliage   *Node
	ornaments *Node
	lights    *Node
	ribbon    *Node
	starGroup *Node
	star      *Node
	sparkles  *Node
	snow      *Node
	starFloat *Floater

	geometry map[GeometryDesc]*Geometry

	effects  []EffectDesc
	bloom    *BloomFilter
	vignette *VignetteFilter
	noise    *NoiseFilter
}

// Apply reconciles the node tree, light rig, camera and filter chain with d.
// The first call builds every node; later calls only update colors,
// visibility, instances, lights and filters, so node identity and particle
// state survive across calls.
func (s *Scene) Apply(d *SceneDesc) {
	sn := &s.nodes
	if !sn.built {
		s.build(d)
	}

	s.Background = nil
	if d.Background != nil {
		bg := *d.Background
		s.Background = &bg
	}

	s.applyRig(d)
	s.applyFloor(d.Floor)
	s.applyTree(&d.Tree)
	s.applySnow(d.Snow)
	s.applyEffects(d.Effects)
	s.camera.Apply(d.Camera)
}

// build creates the node tree once. Optional parts are created hidden so
// later descriptions can toggle them.
func (s *Scene) build(d *SceneDesc) {
	sn := &s.nodes
	sn.geometry = make(map[GeometryDesc]*Geometry)
	t := &d.Tree

	sn.floor = NewMesh(NameFloor, nil, Material{})
	sn.floor.RenderLayer = LayerFloor
	sn.floor.Visible = false
	s.root.AddChild(sn.floor)

	sn.tree = NewContainer(NameTree)
	s.root.AddChild(sn.tree)

	sn.trunk = s.newMesh(&t.Trunk)
	sn.foliage = s.newInstances(&t.Foliage)
	sn.ornaments = s.newInstances(&t.Ornaments)
	sn.lights = s.newInstances(&t.Lights)
	sn.ribbon = s.newMesh(&t.Ribbon)
	sn.tree.AddChild(sn.trunk)
	sn.tree.AddChild(sn.foliage)
	sn.tree.AddChild(sn.ornaments)
	sn.tree.AddChild(sn.lights)
	sn.tree.AddChild(sn.ribbon)

	// The star's mesh, light and sparkles float together around the
	// star's rest position.
	sn.starGroup = NewContainer(NameStarGroup)
	sn.starGroup.Position = t.Star.Mesh.Position
	sn.star = s.newMesh(&t.Star.Mesh)
	sn.star.Position = mgl64.Vec3{}
	sparkleCfg := SparkleConfigFromDesc(t.Star.Sparkles)
	sparkleCfg.Center = mgl64.Vec3{}
	sn.sparkles = NewSparkles(t.Star.Sparkles.Name, sparkleCfg)
	sn.starGroup.AddChild(sn.star)
	sn.starGroup.AddChild(sn.sparkles)
	sn.tree.AddChild(sn.starGroup)

	f := t.Star.Float
	sn.starFloat = NewFloater(sn.starGroup, f.Speed, f.RotationIntensity, f.FloatIntensity, 0)
	s.AddFloater(sn.starFloat)

	sn.snow = NewSparkles(NameSnow, SparkleConfig{})
	sn.snow.Visible = false
	s.root.AddChild(sn.snow)

	sn.built = true
}

// geometryFor returns the shared geometry for gd, building it on first use.
func (s *Scene) geometryFor(gd GeometryDesc) *Geometry {
	if g, ok := s.nodes.geometry[gd]; ok {
		return g
	}
	g := BuildGeometry(gd)
	s.nodes.geometry[gd] = g
	return g
}

func (s *Scene) newMesh(md *MeshDesc) *Node {
	n := NewMesh(md.Name, s.geometryFor(md.Geometry), md.Material)
	n.Position = md.Position
	if md.Rotation != (mgl64.Quat{}) {
		n.Rotation = md.Rotation
	}
	return n
}

func (s *Scene) newInstances(id *InstancedDesc) *Node {
	return NewInstances(id.Name, s.geometryFor(id.Geometry), id.Material, id.Instances)
}

func (s *Scene) updateMesh(n *Node, md *MeshDesc) {
	n.Geometry = s.geometryFor(md.Geometry)
	n.Material = md.Material
}

func (s *Scene) updateInstances(n *Node, id *InstancedDesc) {
	n.Geometry = s.geometryFor(id.Geometry)
	n.Material = id.Material
	n.Instances = id.Instances
}

func (s *Scene) applyFloor(fd *MeshDesc) {
	floor := s.nodes.floor
	if fd == nil {
		floor.Visible = false
		s.SetReflection(nil, 0, 0)
		return
	}
	s.updateMesh(floor, fd)
	floor.SetPosition(fd.Position[0], fd.Position[1], fd.Position[2])
	if fd.Rotation != (mgl64.Quat{}) {
		floor.SetRotation(fd.Rotation)
	}
	floor.Visible = true
	s.SetReflection(s.nodes.tree, fd.Position[1], fd.Material.Reflectivity)
}

func (s *Scene) applyTree(t *TreeDesc) {
	sn := &s.nodes
	sn.tree.SetRotationY(t.Rotation)
	s.updateMesh(sn.trunk, &t.Trunk)
	s.updateInstances(sn.foliage, &t.Foliage)
	s.updateInstances(sn.ornaments, &t.Ornaments)
	s.updateInstances(sn.lights, &t.Lights)
	s.updateMesh(sn.ribbon, &t.Ribbon)
	s.updateMesh(sn.star, &t.Star.Mesh)

	sn.starFloat.SetRest(t.Star.Mesh.Position)
	f := t.Star.Float
	sn.starFloat.Speed = f.Speed
	sn.starFloat.RotationIntensity = f.RotationIntensity
	sn.starFloat.FloatIntensity = f.FloatIntensity

	cfg := SparkleConfigFromDesc(t.Star.Sparkles)
	cfg.Center = mgl64.Vec3{}
	sn.sparkles.Sparkles.SetConfig(cfg)
}

// SetTreeRotation sets the tree group's angle about +Y. Used for the
// per-frame spin without a full Apply.
func (s *Scene) SetTreeRotation(angle float64) {
	if s.nodes.tree != nil {
		s.nodes.tree.SetRotationY(angle)
	}
}

func (s *Scene) applySnow(sd *SparklesDesc) {
	snow := s.nodes.snow
	if sd == nil {
		snow.Visible = false
		snow.Sparkles.Stop()
		return
	}
	snow.Sparkles.SetConfig(SparkleConfigFromDesc(*sd))
	snow.Sparkles.Start()
	snow.Visible = true
}

// applyRig updates lights by name. Lights absent from d stay in the rig but
// are disabled.
func (s *Scene) applyRig(d *SceneDesc) {
	r := s.rig
	r.Exposure = d.Exposure
	r.Fog = nil
	if d.Fog != nil {
		r.Fog = &Fog{Color: d.Fog.Color, Near: d.Fog.Near, Far: d.Fog.Far}
	}
	r.Environment = nil
	if d.Environment != nil {
		env := *d.Environment
		r.Environment = &env
	}

	for _, l := range r.lights {
		l.Enabled = false
	}
	all := append(slices.Clip(d.Lights), d.Tree.Star.Light)
	for i := range all {
		ld := &all[i]
		l := r.Light(ld.Name)
		if l == nil {
			l = &Light{Name: ld.Name}
			r.AddLight(l)
		}
		l.Kind = ld.Kind
		l.Position = ld.Position
		l.Color = ld.Color
		l.Intensity = ld.Intensity
		l.Distance = ld.Distance
		l.Angle = ld.Angle
		l.Penumbra = ld.Penumbra
		l.CastShadow = ld.CastShadow
		l.Enabled = true
	}
	if star := r.Light(d.Tree.Star.Light.Name); star != nil {
		star.Target = s.nodes.starGroup
	}
}

// applyEffects rebuilds the filter chain when the effect list changes.
// Filter objects are reused across rebuilds so animated state persists.
func (s *Scene) applyEffects(effects []EffectDesc) {
	sn := &s.nodes
	if sn.effects != nil && slices.Equal(sn.effects, effects) {
		return
	}
	sn.effects = slices.Clone(effects)
	if sn.effects == nil {
		sn.effects = []EffectDesc{}
	}

	chain := make([]Filter, 0, len(effects))
	for _, e := range effects {
		switch e.Kind {
		case EffectBloom:
			if sn.bloom == nil {
				sn.bloom = NewBloomFilter(e.Threshold, e.Smoothing, e.Intensity, e.Radius)
			}
			sn.bloom.Threshold = e.Threshold
			sn.bloom.Smoothing = e.Smoothing
			sn.bloom.Intensity = e.Intensity
			sn.bloom.Radius = e.Radius
			chain = append(chain, sn.bloom)
		case EffectVignette:
			if sn.vignette == nil {
				sn.vignette = NewVignetteFilter(e.Offset, e.Darkness)
			}
			sn.vignette.Offset = e.Offset
			sn.vignette.Darkness = e.Darkness
			chain = append(chain, sn.vignette)
		case EffectNoise:
			if sn.noise == nil {
				sn.noise = NewNoiseFilter(e.Opacity)
			}
			sn.noise.Opacity = e.Opacity
			chain = append(chain, sn.noise)
		}
	}
	s.SetFilters(chain...)
}

// Node returns the first node named name in the scene, or nil.
func (s *Scene) Node(name string) *Node {
	if s.root.Name == name {
		return s.root
	}
	return s.root.FindChild(name)
}

package grandtree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Render layers. Lower layers draw first regardless of depth.
const (
	LayerFloor      uint8 = 0
	LayerReflection uint8 = 1
	LayerScene      uint8 = 2
)

// reflectionAlpha scales mirrored geometry by the floor's reflectivity.
const reflectionAlpha = 0.5

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandTriangles CommandType = iota // shaded triangles of one geometry chunk
	CommandSparkle                      // one billboard quad
)

// sourceImage selects the texture a command samples.
type sourceImage uint8

const (
	sourceWhite sourceImage = iota // flat vertex colors
	sourceDot                      // soft round sparkle
)

// RenderCommand is a single draw instruction emitted during scene traversal.
// Vertices live in the scene's per-frame arena; Inds index into the
// command's own vertex range.
type RenderCommand struct {
	Type        CommandType
	BlendMode   BlendMode
	RenderLayer uint8
	// Depth is the distance along the view axis. Deeper commands draw first.
	Depth     float64
	treeOrder int // assigned during traversal for stable sort
	source    sourceImage

	vertStart, vertCount int
	indStart, indEnd     int
}

// mirrorAcross returns the reflection through the horizontal plane y = h.
func mirrorAcross(h float64) mgl64.Mat4 {
	return mgl64.Translate3D(0, h, 0).
		Mul4(mgl64.Scale3D(1, -1, 1)).
		Mul4(mgl64.Translate3D(0, -h, 0))
}

// frameView is the camera state captured once per Draw.
type frameView struct {
	viewProj, view mgl64.Mat4
	viewport       Rect
	near, far      float64
	eye            mgl64.Vec3
	cam            *Camera
}

func (s *Scene) beginFrame() {
	cam := s.camera
	cam.computeMatrices()
	s.frame = frameView{
		viewProj: cam.viewProj,
		view:     cam.view,
		viewport: cam.Viewport,
		near:     cam.Near,
		far:      cam.Far,
		eye:      cam.Position(),
		cam:      cam,
	}
	s.commands = s.commands[:0]
	s.arenaVerts = s.arenaVerts[:0]
	s.arenaInds = s.arenaInds[:0]
}

// buildCommands walks the tree and, when a reflector is set, the mirrored
// reflection of its subtree.
func (s *Scene) buildCommands() {
	s.beginFrame()
	treeOrder := 0
	s.traverse(s.root, mgl64.Ident4(), false, 1, nil, &treeOrder)

	if r := s.reflection; r.source != nil && r.strength > 0 && r.source.Visible {
		a := r.strength * reflectionAlpha
		layer := LayerReflection
		s.traverse(r.source, mirrorAcross(r.height), true, a, &layer, &treeOrder)
	}
}

// traverse walks the node tree depth-first and emits render commands for
// visible, renderable leaf nodes. World transforms must be current. When
// mirrored is true, pre is prepended to every world transform, alpha scales
// every command and layer overrides node layers; sparkles are skipped.
func (s *Scene) traverse(n *Node, pre mgl64.Mat4, mirrored bool, alpha float64, layer *uint8, treeOrder *int) {
	if !n.Visible || n.disposed {
		return
	}

	if n.Renderable {
		world := n.worldTransform
		if mirrored {
			world = pre.Mul4(world)
		}
		l := n.RenderLayer
		if layer != nil {
			l = *layer
		}
		a := n.worldAlpha * alpha

		switch n.Type {
		case NodeTypeMesh:
			if n.Geometry != nil && !(mirrored && n.Material.Reflectivity > 0) {
				nm := n.normalMatrix
				if mirrored {
					nm = normalMatrixOf(world)
				}
				s.emitGeometry(n, world, nm, n.Material.Color, a, l, treeOrder)
			}
		case NodeTypeInstances:
			if n.Geometry != nil {
				s.emitInstances(n, world, a, l, treeOrder)
			}
		case NodeTypeParticles:
			if !mirrored && n.Sparkles != nil {
				s.emitSparkles(n, world, a, l, treeOrder)
			}
		}
	}

	for _, child := range n.children {
		s.traverse(child, pre, mirrored, alpha, layer, treeOrder)
	}
}

func (s *Scene) emitInstances(n *Node, world mgl64.Mat4, alpha float64, layer uint8, treeOrder *int) {
	geo := n.Geometry
	f := &s.frame
	for i := range n.Instances {
		in := &n.Instances[i]
		iw := world.Mul4(instanceTransform(in))

		// Whole-instance near/far rejection from the bounding sphere.
		center := iw.Col(3).Vec3()
		scale := in.Scale
		if scale == 0 {
			scale = 1
		}
		r := geo.Radius * scale * maxAxisScale(world)
		d := viewDepth(f.view, center)
		if d+r < f.near || d-r > f.far {
			continue
		}

		base := n.Material.Color
		if in.Color != (Color{}) {
			base = base.Mul(in.Color)
		}
		s.emitGeometry(n, iw, normalMatrixOf(iw), base, alpha, layer, treeOrder)
	}
}

// emitGeometry shades, projects and culls one placement of n's geometry and
// appends one command per non-empty chunk.
func (s *Scene) emitGeometry(n *Node, world mgl64.Mat4, nm mgl64.Mat3, base Color, alpha float64, layer uint8, treeOrder *int) {
	geo := n.Geometry
	f := &s.frame
	mat := &n.Material
	*treeOrder++

	for c := 0; c < geo.ChunkCount(); c++ {
		lo, hi := geo.chunkRange(c)
		if lo >= hi {
			continue
		}
		vmin, vmax := geo.chunkVerts(c)
		count := vmax - vmin + 1

		s.ensureScratch(count)
		vertStart := len(s.arenaVerts)
		for k := 0; k < count; k++ {
			p := mgl64.TransformCoordinate(geo.Positions[vmin+k], world)
			nn := nm.Mul3x1(geo.Normals[vmin+k])
			if l := nn.Len(); l > 1e-12 {
				nn = nn.Mul(1 / l)
			}
			sx, sy, d, ok := projectPoint(f.viewProj, f.view, f.viewport, f.near, p)
			s.scratchPos[k] = p
			s.scratchNormal[k] = nn
			s.scratchDepth[k] = d
			s.scratchOK[k] = ok

			col := s.rig.Shade(mat, base, p, nn, f.eye)
			col.A *= alpha
			r, g, b, a := col.premul()
			s.arenaVerts = append(s.arenaVerts, ebiten.Vertex{
				DstX: float32(sx), DstY: float32(sy),
				SrcX: 0.5, SrcY: 0.5,
				ColorR: r, ColorG: g, ColorB: b, ColorA: a,
			})
		}

		indStart := len(s.arenaInds)
		depthSum := 0.0
		tris := 0
		for t := lo; t < hi; t += 3 {
			i0 := int(geo.Indices[t]) - vmin
			i1 := int(geo.Indices[t+1]) - vmin
			i2 := int(geo.Indices[t+2]) - vmin
			if !s.scratchOK[i0] || !s.scratchOK[i1] || !s.scratchOK[i2] {
				continue
			}
			face := s.scratchNormal[i0].Add(s.scratchNormal[i1]).Add(s.scratchNormal[i2])
			if face.Dot(f.eye.Sub(s.scratchPos[i0])) <= 0 {
				continue
			}
			s.arenaInds = append(s.arenaInds, uint32(i0), uint32(i1), uint32(i2))
			depthSum += s.scratchDepth[i0] + s.scratchDepth[i1] + s.scratchDepth[i2]
			tris++
		}
		if tris == 0 {
			s.arenaVerts = s.arenaVerts[:vertStart]
			continue
		}
		s.commands = append(s.commands, RenderCommand{
			Type:        CommandTriangles,
			BlendMode:   n.BlendMode,
			RenderLayer: layer,
			Depth:       depthSum / float64(3*tris),
			treeOrder:   *treeOrder,
			source:      sourceWhite,
			vertStart:   vertStart,
			vertCount:   count,
			indStart:    indStart,
			indEnd:      len(s.arenaInds),
		})
	}
}

// emitSparkles appends one camera-facing quad per visible sparkle.
func (s *Scene) emitSparkles(n *Node, world mgl64.Mat4, alpha float64, layer uint8, treeOrder *int) {
	sf := n.Sparkles
	f := &s.frame
	*treeOrder++
	scale := maxAxisScale(world)
	for i := range sf.sparkles {
		sp := &sf.sparkles[i]
		a := sf.alpha(sp) * alpha
		if a <= 0 {
			continue
		}
		p := mgl64.TransformCoordinate(sp.pos, world)
		sx, sy, d, ok := projectPoint(f.viewProj, f.view, f.viewport, f.near, p)
		if !ok || d > f.far {
			continue
		}
		r := sf.radius(sp) * scale * f.cam.pixelsPerUnit(d)
		if r < 0.25 {
			continue
		}
		col := sf.config.Color
		col.A = a
		cr, cg, cb, ca := col.premul()

		vertStart := len(s.arenaVerts)
		dot := float32(dotImageSize)
		corners := [4][2]float64{{-r, -r}, {r, -r}, {-r, r}, {r, r}}
		srcs := [4][2]float32{{0, 0}, {dot, 0}, {0, dot}, {dot, dot}}
		for k := range corners {
			s.arenaVerts = append(s.arenaVerts, ebiten.Vertex{
				DstX: float32(sx + corners[k][0]), DstY: float32(sy + corners[k][1]),
				SrcX: srcs[k][0], SrcY: srcs[k][1],
				ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
			})
		}
		indStart := len(s.arenaInds)
		s.arenaInds = append(s.arenaInds, 0, 1, 2, 1, 3, 2)
		s.commands = append(s.commands, RenderCommand{
			Type:        CommandSparkle,
			BlendMode:   n.BlendMode,
			RenderLayer: layer,
			Depth:       d,
			treeOrder:   *treeOrder,
			source:      sourceDot,
			vertStart:   vertStart,
			vertCount:   4,
			indStart:    indStart,
			indEnd:      len(s.arenaInds),
		})
	}
}

func (s *Scene) ensureScratch(n int) {
	if cap(s.scratchPos) < n {
		s.scratchPos = make([]mgl64.Vec3, n)
		s.scratchNormal = make([]mgl64.Vec3, n)
		s.scratchDepth = make([]float64, n)
		s.scratchOK = make([]bool, n)
	}
	s.scratchPos = s.scratchPos[:n]
	s.scratchNormal = s.scratchNormal[:n]
	s.scratchDepth = s.scratchDepth[:n]
	s.scratchOK = s.scratchOK[:n]
}

// viewDepth returns the distance of p in front of the camera.
func viewDepth(view mgl64.Mat4, p mgl64.Vec3) float64 {
	return -(view[2]*p[0] + view[6]*p[1] + view[10]*p[2] + view[14])
}

// maxAxisScale returns the largest axis scale of m's upper 3x3.
func maxAxisScale(m mgl64.Mat4) float64 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return math.Max(sx, math.Max(sy, sz))
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same
// position as b: lower layers first, then far to near, then tree order.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := lo + width
			if mid > n {
				mid = n
			}
			hi := lo + 2*width
			if hi > n {
				hi = n
			}
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}

package grandtree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// planeCells is the grid resolution of plane geometry. The grid lets the
// renderer clip against the near plane and depth-sort the floor per cell.
const planeCells = 24

// Geometry is an indexed triangle mesh in object space. Normals are per
// vertex and point outward; the renderer uses them for both lighting and
// back-face culling, so triangle winding is not significant.
type Geometry struct {
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	Indices   []uint32

	// ChunkTriangles splits the triangle list into depth-sorted chunks of
	// this many triangles. Zero sorts the whole geometry as one unit, which
	// is only correct for convex shapes.
	ChunkTriangles int

	// Radius bounds every vertex around the object-space origin.
	Radius float64

	chunkSpans [][2]int // lazily computed vertex span per chunk
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// ChunkCount returns the number of depth-sorted chunks.
func (g *Geometry) ChunkCount() int {
	tris := g.TriangleCount()
	if g.ChunkTriangles <= 0 || tris == 0 {
		return 1
	}
	return (tris + g.ChunkTriangles - 1) / g.ChunkTriangles
}

// chunkRange returns the index range [lo, hi) for chunk i.
func (g *Geometry) chunkRange(i int) (lo, hi int) {
	if g.ChunkTriangles <= 0 {
		return 0, len(g.Indices)
	}
	lo = i * g.ChunkTriangles * 3
	hi = lo + g.ChunkTriangles*3
	if hi > len(g.Indices) {
		hi = len(g.Indices)
	}
	return lo, hi
}

// chunkVerts returns the smallest and largest vertex index referenced by
// chunk i. Builders lay chunks out over contiguous vertex runs, so the span
// stays small.
func (g *Geometry) chunkVerts(i int) (vmin, vmax int) {
	if g.chunkSpans == nil {
		g.chunkSpans = make([][2]int, g.ChunkCount())
		for c := range g.chunkSpans {
			lo, hi := g.chunkRange(c)
			span := [2]int{len(g.Positions), -1}
			for _, idx := range g.Indices[lo:hi] {
				span[0] = min(span[0], int(idx))
				span[1] = max(span[1], int(idx))
			}
			g.chunkSpans[c] = span
		}
	}
	sp := g.chunkSpans[i]
	return sp[0], sp[1]
}

func (g *Geometry) computeBounds() {
	r := 0.0
	for _, p := range g.Positions {
		if l := p.Len(); l > r {
			r = l
		}
	}
	g.Radius = r
}

func (g *Geometry) add(p, n mgl64.Vec3) uint32 {
	g.Positions = append(g.Positions, p)
	g.Normals = append(g.Normals, n)
	return uint32(len(g.Positions) - 1)
}

// BuildGeometry builds the geometry described by d.
func BuildGeometry(d GeometryDesc) *Geometry {
	switch d.Kind {
	case GeometryCone:
		return NewCylinderGeometry(0, d.Radius, d.Height, d.Segments)
	case GeometryCylinder:
		return NewCylinderGeometry(d.RadiusTop, d.Radius, d.Height, d.Segments)
	case GeometrySphere:
		return NewSphereGeometry(d.Radius, d.Segments, d.Rings)
	case GeometryOctahedron:
		return NewOctahedronGeometry(d.Radius)
	case GeometryPlane:
		return NewPlaneGeometry(d.Width, d.Depth, planeCells)
	case GeometryTube:
		return NewTubeGeometry(d.Path, d.Segments, d.Radius, d.Rings)
	}
	panic("grandtree: unknown geometry kind")
}

// NewCylinderGeometry builds a capped cylinder along Y centered on the
// origin. A zero top radius produces a cone with its apex at +height/2.
func NewCylinderGeometry(radiusTop, radiusBottom, height float64, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &Geometry{}
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	// Side: two rings with a duplicated seam column.
	var ring [2][]uint32
	for v := 0; v < 2; v++ {
		r := radiusTop + float64(v)*(radiusBottom-radiusTop)
		y := half - float64(v)*height
		ring[v] = make([]uint32, segments+1)
		for x := 0; x <= segments; x++ {
			theta := float64(x) / float64(segments) * 2 * math.Pi
			sin, cos := math.Sincos(theta)
			n := mgl64.Vec3{sin, slope, cos}.Normalize()
			ring[v][x] = g.add(mgl64.Vec3{r * sin, y, r * cos}, n)
		}
	}
	for x := 0; x < segments; x++ {
		a, b, c, d := ring[0][x], ring[1][x], ring[1][x+1], ring[0][x+1]
		if radiusTop > 0 {
			g.Indices = append(g.Indices, a, b, d)
		}
		if radiusBottom > 0 {
			g.Indices = append(g.Indices, b, c, d)
		}
	}

	if radiusTop > 0 {
		g.cap(radiusTop, half, 1, segments)
	}
	if radiusBottom > 0 {
		g.cap(radiusBottom, -half, -1, segments)
	}
	g.computeBounds()
	return g
}

func (g *Geometry) cap(r, y, sign float64, segments int) {
	n := mgl64.Vec3{0, sign, 0}
	center := g.add(mgl64.Vec3{0, y, 0}, n)
	first := uint32(len(g.Positions))
	for x := 0; x <= segments; x++ {
		theta := float64(x) / float64(segments) * 2 * math.Pi
		sin, cos := math.Sincos(theta)
		g.add(mgl64.Vec3{r * sin, y, r * cos}, n)
	}
	for x := 0; x < segments; x++ {
		g.Indices = append(g.Indices, center, first+uint32(x), first+uint32(x)+1)
	}
}

// NewSphereGeometry builds a UV sphere.
func NewSphereGeometry(radius float64, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}
	g := &Geometry{}
	grid := make([][]uint32, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		grid[iy] = make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			n := mgl64.Vec3{
				-math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				math.Cos(v * math.Pi),
				math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			grid[iy][ix] = g.add(n.Mul(radius), n)
		}
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	g.computeBounds()
	return g
}

// NewOctahedronGeometry builds a flat-shaded octahedron with its vertices
// on the axes.
func NewOctahedronGeometry(radius float64) *Geometry {
	g := &Geometry{}
	for _, sx := range [2]float64{1, -1} {
		for _, sy := range [2]float64{1, -1} {
			for _, sz := range [2]float64{1, -1} {
				n := mgl64.Vec3{sx, sy, sz}.Normalize()
				a := g.add(mgl64.Vec3{sx * radius, 0, 0}, n)
				b := g.add(mgl64.Vec3{0, sy * radius, 0}, n)
				c := g.add(mgl64.Vec3{0, 0, sz * radius}, n)
				g.Indices = append(g.Indices, a, b, c)
			}
		}
	}
	g.computeBounds()
	return g
}

// NewPlaneGeometry builds a width x depth grid in the XZ plane facing +Y.
// Each cell is its own depth-sorted chunk.
func NewPlaneGeometry(width, depth float64, cells int) *Geometry {
	if cells < 1 {
		cells = 1
	}
	g := &Geometry{ChunkTriangles: 2}
	up := mgl64.Vec3{0, 1, 0}
	idx := func(ix, iz int) uint32 { return uint32(iz*(cells+1) + ix) }
	for iz := 0; iz <= cells; iz++ {
		z := -depth/2 + depth*float64(iz)/float64(cells)
		for ix := 0; ix <= cells; ix++ {
			x := -width/2 + width*float64(ix)/float64(cells)
			g.add(mgl64.Vec3{x, 0, z}, up)
		}
	}
	for iz := 0; iz < cells; iz++ {
		for ix := 0; ix < cells; ix++ {
			a, b := idx(ix, iz), idx(ix+1, iz)
			c, d := idx(ix+1, iz+1), idx(ix, iz+1)
			g.Indices = append(g.Indices, a, d, b, b, d, c)
		}
	}
	g.computeBounds()
	return g
}

// NewTubeGeometry sweeps a circle of radius along path. Each ring of
// radialSegments quads is its own depth-sorted chunk.
func NewTubeGeometry(path *Curve, tubularSegments int, radius float64, radialSegments int) *Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	frames := path.Frames(tubularSegments)
	g := &Geometry{ChunkTriangles: radialSegments * 2}
	for _, f := range frames {
		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			sin, cos := math.Sincos(v)
			n := f.Normal.Mul(-cos).Add(f.Binormal.Mul(sin)).Normalize()
			g.add(f.Position.Add(n.Mul(radius)), n)
		}
	}
	stride := uint32(radialSegments + 1)
	for i := 1; i < len(frames); i++ {
		for j := 1; j <= radialSegments; j++ {
			a := stride*uint32(i-1) + uint32(j-1)
			b := stride*uint32(i) + uint32(j-1)
			c := stride*uint32(i) + uint32(j)
			d := stride*uint32(i-1) + uint32(j)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	g.computeBounds()
	return g
}

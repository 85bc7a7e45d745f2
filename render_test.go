package grandtree

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// renderScene builds a scene with the default camera at (0, 0, 10) looking
// at the origin.
func renderScene() *Scene {
	return NewScene(Rect{Width: 800, Height: 600})
}

func unlitSphere(name string, x, y, z float64) *Node {
	geo := NewSphereGeometry(0.5, 8, 6)
	n := NewMesh(name, geo, Material{Color: ColorWhite, Unlit: true})
	n.SetPosition(x, y, z)
	return n
}

func buildScene(s *Scene) {
	s.updateWorldTransforms()
	s.buildCommands()
}

// --- Command emission ---

func TestMeshEmitsTriangles(t *testing.T) {
	s := renderScene()
	s.Root().AddChild(unlitSphere("ball", 0, 0, 0))
	buildScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	cmd := s.commands[0]
	if cmd.Type != CommandTriangles || cmd.RenderLayer != LayerScene {
		t.Errorf("command = %+v", cmd)
	}
	tris := (cmd.indEnd - cmd.indStart) / 3
	total := NewSphereGeometry(0.5, 8, 6).TriangleCount()
	if tris == 0 || tris >= total {
		t.Errorf("front-facing triangles = %d of %d, want back faces culled", tris, total)
	}
	if math.Abs(cmd.Depth-10) > 0.5 {
		t.Errorf("Depth = %v, want about 10", cmd.Depth)
	}
}

func TestInvisibleSubtreeSkipped(t *testing.T) {
	s := renderScene()
	parent := NewContainer("parent")
	parent.Visible = false
	parent.AddChild(unlitSphere("ball", 0, 0, 0))
	s.Root().AddChild(parent)
	buildScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestNonRenderableParentStillDrawsChildren(t *testing.T) {
	s := renderScene()
	parent := unlitSphere("parent", -1, 0, 0)
	parent.Renderable = false
	parent.AddChild(unlitSphere("child", 2, 0, 0))
	s.Root().AddChild(parent)
	buildScene(s)

	if len(s.commands) != 1 {
		t.Errorf("commands = %d, want 1", len(s.commands))
	}
}

func TestMeshBehindCameraCulled(t *testing.T) {
	s := renderScene()
	s.Root().AddChild(unlitSphere("behind", 0, 0, 20))
	buildScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestMeshVertexColorsPremultiplied(t *testing.T) {
	s := renderScene()
	n := unlitSphere("ball", 0, 0, 0)
	n.SetAlpha(0.5)
	s.Root().AddChild(n)
	buildScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	v := s.arenaVerts[s.commands[0].vertStart]
	if math.Abs(float64(v.ColorA)-0.5) > 1e-6 || math.Abs(float64(v.ColorR)-0.5) > 1e-6 {
		t.Errorf("vertex color = (%v, %v), want premultiplied 0.5", v.ColorR, v.ColorA)
	}
}

func TestInstancesEmitPerInstance(t *testing.T) {
	s := renderScene()
	geo := NewOctahedronGeometry(0.3)
	inst := []Instance{
		{Position: mgl64.Vec3{-1, 0, 0}},
		{Position: mgl64.Vec3{1, 0, 0}},
		{Position: mgl64.Vec3{0, 0, -500}}, // beyond the far plane
	}
	s.Root().AddChild(NewInstances("lights", geo, Material{Color: ColorWhite, Unlit: true}, inst))
	buildScene(s)

	if len(s.commands) != 2 {
		t.Errorf("commands = %d, want 2", len(s.commands))
	}
}

func TestInstanceColorTints(t *testing.T) {
	s := renderScene()
	geo := NewOctahedronGeometry(0.3)
	inst := []Instance{{Color: Color{R: 1, A: 1}}}
	s.Root().AddChild(NewInstances("red", geo, Material{Color: ColorWhite, Unlit: true}, inst))
	buildScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	v := s.arenaVerts[s.commands[0].vertStart]
	if v.ColorG != 0 || v.ColorB != 0 {
		t.Errorf("vertex color = (%v, %v, %v), want red", v.ColorR, v.ColorG, v.ColorB)
	}
}

func TestSparklesEmitQuads(t *testing.T) {
	s := renderScene()
	cfg := SparkleConfig{Count: 12, Extent: 1, Size: 1, Opacity: 1, Color: ColorWhite, Seed: 3}
	s.Root().AddChild(NewSparkles("snow", cfg))
	buildScene(s)

	if len(s.commands) == 0 {
		t.Fatal("expected sparkle commands")
	}
	for _, cmd := range s.commands {
		if cmd.Type != CommandSparkle || cmd.vertCount != 4 || cmd.indEnd-cmd.indStart != 6 {
			t.Fatalf("command = %+v, want one quad", cmd)
		}
		if cmd.BlendMode != BlendAdd || cmd.source != sourceDot {
			t.Errorf("sparkle should be additive and sample the dot")
		}
	}
}

// --- Reflection ---

func TestReflectionEmitsMirroredLayer(t *testing.T) {
	s := renderScene()
	tree := NewContainer("tree")
	tree.AddChild(unlitSphere("ball", 0, 2, 0))
	s.Root().AddChild(tree)
	s.SetReflection(tree, -1, 0.6)
	buildScene(s)

	var scene, mirrored int
	for _, cmd := range s.commands {
		switch cmd.RenderLayer {
		case LayerScene:
			scene++
		case LayerReflection:
			mirrored++
			v := s.arenaVerts[cmd.vertStart]
			if math.Abs(float64(v.ColorA)-0.6*reflectionAlpha) > 1e-6 {
				t.Errorf("reflection alpha = %v, want %v", v.ColorA, 0.6*reflectionAlpha)
			}
		}
	}
	if scene != 1 || mirrored != 1 {
		t.Errorf("scene = %d, mirrored = %d, want 1 each", scene, mirrored)
	}
}

func TestReflectionSkipsReflectorsAndSparkles(t *testing.T) {
	s := renderScene()
	tree := NewContainer("tree")
	floor := unlitSphere("mirror", 0, 0, 0)
	floor.Material.Reflectivity = 1
	tree.AddChild(floor)
	tree.AddChild(NewSparkles("snow", SparkleConfig{Count: 5, Extent: 1, Size: 1, Opacity: 1, Seed: 1}))
	s.Root().AddChild(tree)
	s.SetReflection(tree, -1, 1)
	buildScene(s)

	for _, cmd := range s.commands {
		if cmd.RenderLayer == LayerReflection {
			t.Fatalf("unexpected mirrored command %+v", cmd)
		}
	}
}

func TestReflectionDisabledAtZeroStrength(t *testing.T) {
	s := renderScene()
	tree := unlitSphere("ball", 0, 1, 0)
	s.Root().AddChild(tree)
	s.SetReflection(tree, 0, 0)
	buildScene(s)

	if len(s.commands) != 1 {
		t.Errorf("commands = %d, want 1", len(s.commands))
	}
}

func TestMirrorAcross(t *testing.T) {
	m := mirrorAcross(-1)
	got := mgl64.TransformCoordinate(mgl64.Vec3{3, 2, 1}, m)
	assertVec3(t, "mirrored", got, mgl64.Vec3{3, -4, 1})
}

// --- Sorting ---

func TestSortFarToNear(t *testing.T) {
	s := renderScene()
	s.Root().AddChild(unlitSphere("near", 0, 0, 3))
	s.Root().AddChild(unlitSphere("far", 0, 0, -5))
	buildScene(s)
	s.mergeSort()

	if len(s.commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(s.commands))
	}
	if s.commands[0].Depth < s.commands[1].Depth {
		t.Errorf("depths = %v, %v, want far first", s.commands[0].Depth, s.commands[1].Depth)
	}
}

func TestSortLayerBeforeDepth(t *testing.T) {
	s := renderScene()
	s.commands = append(s.commands[:0],
		RenderCommand{RenderLayer: LayerScene, Depth: 50, treeOrder: 1},
		RenderCommand{RenderLayer: LayerFloor, Depth: 1, treeOrder: 2},
		RenderCommand{RenderLayer: LayerReflection, Depth: 5, treeOrder: 3},
	)
	s.mergeSort()

	want := []int{2, 3, 1}
	for i, cmd := range s.commands {
		if cmd.treeOrder != want[i] {
			t.Errorf("position %d: treeOrder = %d, want %d", i, cmd.treeOrder, want[i])
		}
	}
}

func TestSortStableForEqualKeys(t *testing.T) {
	s := renderScene()
	s.commands = s.commands[:0]
	for i := 0; i < 37; i++ {
		s.commands = append(s.commands, RenderCommand{Depth: float64(i % 3), treeOrder: i})
	}
	s.mergeSort()

	for i := 1; i < len(s.commands); i++ {
		a, b := s.commands[i-1], s.commands[i]
		if !commandLessOrEqual(a, b) {
			t.Fatalf("out of order at %d: %+v then %+v", i, a, b)
		}
	}
}

func TestMaxAxisScale(t *testing.T) {
	m := mgl64.Scale3D(1, 3, 2)
	assertNear(t, "max scale", maxAxisScale(m), 3)
}

func TestViewDepth(t *testing.T) {
	cam := newCamera(Rect{Width: 100, Height: 100})
	cam.computeMatrices()
	assertNear(t, "depth", viewDepth(cam.view, mgl64.Vec3{0, 0, 4}), 6)
}

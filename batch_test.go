package grandtree

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestBatchKeySameBlendSameSource(t *testing.T) {
	a := RenderCommand{BlendMode: BlendNormal, source: sourceWhite}
	b := RenderCommand{BlendMode: BlendNormal, source: sourceWhite, Depth: 9}
	if commandBatchKey(&a) != commandBatchKey(&b) {
		t.Error("same blend and source should produce the same batch key")
	}
}

func TestBatchKeyDifferentBlend(t *testing.T) {
	a := RenderCommand{BlendMode: BlendNormal}
	b := RenderCommand{BlendMode: BlendAdd}
	if commandBatchKey(&a) == commandBatchKey(&b) {
		t.Error("different blend modes should produce different batch keys")
	}
}

func TestBatchKeyDifferentSource(t *testing.T) {
	a := RenderCommand{source: sourceWhite}
	b := RenderCommand{source: sourceDot}
	if commandBatchKey(&a) == commandBatchKey(&b) {
		t.Error("different sources should produce different batch keys")
	}
}

func TestAppendCommandRebasesIndices(t *testing.T) {
	s := renderScene()
	s.arenaVerts = make([]ebiten.Vertex, 7)
	s.arenaInds = []uint32{0, 1, 2, 0, 2, 3, 1}
	first := RenderCommand{vertStart: 0, vertCount: 4, indStart: 0, indEnd: 6}
	second := RenderCommand{vertStart: 4, vertCount: 3, indStart: 0, indEnd: 3}

	s.appendCommand(&first)
	s.appendCommand(&second)

	if len(s.batchVerts) != 7 {
		t.Fatalf("batch verts = %d, want 7", len(s.batchVerts))
	}
	want := []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6}
	if len(s.batchInds) != len(want) {
		t.Fatalf("batch inds = %v, want %v", s.batchInds, want)
	}
	for i := range want {
		if s.batchInds[i] != want[i] {
			t.Fatalf("batch inds = %v, want %v", s.batchInds, want)
		}
	}
}

func TestCountBatches(t *testing.T) {
	cmds := []RenderCommand{
		{BlendMode: BlendNormal, source: sourceWhite},
		{BlendMode: BlendNormal, source: sourceWhite},
		{BlendMode: BlendAdd, source: sourceDot},
		{BlendMode: BlendAdd, source: sourceDot},
		{BlendMode: BlendNormal, source: sourceWhite},
	}
	if got := countBatches(cmds); got != 3 {
		t.Errorf("countBatches = %d, want 3", got)
	}
	if got := countBatches(nil); got != 0 {
		t.Errorf("countBatches(nil) = %d, want 0", got)
	}
}

func TestCountTriangles(t *testing.T) {
	cmds := []RenderCommand{{indStart: 0, indEnd: 6}, {indStart: 6, indEnd: 15}}
	if got := countTriangles(cmds); got != 5 {
		t.Errorf("countTriangles = %d, want 5", got)
	}
}

func TestGenerateCircle(t *testing.T) {
	const r = 8
	pix := generateCircle(r)
	if len(pix) != (2*r)*(2*r)*4 {
		t.Fatalf("len = %d", len(pix))
	}
	center := ((r-1)*2*r + (r - 1)) * 4
	if pix[center+3] < 200 {
		t.Errorf("center alpha = %d, want near opaque", pix[center+3])
	}
	if pix[3] != 0 {
		t.Errorf("corner alpha = %d, want 0", pix[3])
	}
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != pix[i+3] {
			t.Fatalf("pixel %d not premultiplied white", i/4)
		}
	}
}

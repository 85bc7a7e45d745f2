package grandtree

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tree-front", "tree-front"},
		{"gold theme", "gold_theme"},
		{"a/b\\c", "a_b_c"},
		{"v1.2", "v1.2"},
		{"   ", "unlabeled"},
		{"", "unlabeled"},
		{"étoile", "_toile"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueues(t *testing.T) {
	s := renderScene()
	s.Screenshot("one")
	s.Screenshot("two")
	if s.PendingScreenshots() != 2 {
		t.Errorf("pending = %d, want 2", s.PendingScreenshots())
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		64, 32, 0, 128, // half alpha
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // transparent
		200, 0, 0, 100, // over-bright premultiplied value is clamped
	}
	img := unpremultiply(pixels, 2, 2)

	want := [][4]uint8{
		{127, 63, 0, 128},
		{10, 20, 30, 255},
		{0, 0, 0, 0},
		{255, 0, 0, 100},
	}
	for i, w := range want {
		got := [4]uint8{img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3]}
		if got != w {
			t.Errorf("pixel %d = %v, want %v", i, got, w)
		}
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Pix[3] = 255
	if err := writePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
}

func TestWritePNGBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "frame.png")
	if err := writePNG(path, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error for missing directory")
	}
}

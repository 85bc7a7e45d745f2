package grandtree

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testSparkleConfig() SparkleConfig {
	return SparkleConfig{
		Count:   40,
		Center:  mgl64.Vec3{0, 3, 0},
		Extent:  4,
		Size:    1,
		Speed:   1,
		Opacity: 0.8,
		Color:   ColorWhite,
		Seed:    7,
	}
}

func TestSparkleFieldPoolSize(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	if f.Len() != 40 {
		t.Errorf("Len = %d, want 40", f.Len())
	}
	if !f.IsActive() {
		t.Error("field should start active")
	}
}

func TestSparkleFieldNegativeCount(t *testing.T) {
	cfg := testSparkleConfig()
	cfg.Count = -3
	if f := newSparkleField(cfg); f.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.Len())
	}
}

func TestSparkleFieldSpawnInsideCube(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	for i := range f.sparkles {
		p := f.sparkles[i].pos
		if math.Abs(p[0]) > 2 || math.Abs(p[1]-3) > 2 || math.Abs(p[2]) > 2 {
			t.Fatalf("sparkle %d at %v outside spawn cube", i, p)
		}
	}
}

func TestSparkleFieldPrewarmed(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	staggered := false
	for i := range f.sparkles {
		s := &f.sparkles[i]
		if s.life > s.maxLife {
			t.Fatalf("sparkle %d life %v exceeds max %v", i, s.life, s.maxLife)
		}
		if s.life < s.maxLife {
			staggered = true
		}
	}
	if !staggered {
		t.Error("pool should start at staggered ages")
	}
}

func TestSparkleFieldDeterministic(t *testing.T) {
	a := newSparkleField(testSparkleConfig())
	b := newSparkleField(testSparkleConfig())
	for i := 0; i < 30; i++ {
		a.update(1.0 / 30)
		b.update(1.0 / 30)
	}
	for i := range a.sparkles {
		if a.sparkles[i].pos != b.sparkles[i].pos {
			t.Fatalf("sparkle %d diverged", i)
		}
	}
}

func TestSparkleFieldStopFreezes(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	f.Stop()
	before := f.sparkles[0]
	f.update(0.5)
	if f.sparkles[0] != before {
		t.Error("stopped field should not simulate")
	}
	f.Start()
	f.update(0.5)
	if f.sparkles[0] == before {
		t.Error("restarted field should simulate")
	}
}

func TestSparkleFieldRespawnsExpired(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	s := &f.sparkles[0]
	s.life = 0.01
	f.update(0.1)
	if s.life != s.maxLife {
		t.Errorf("life = %v, want fresh lifetime %v", s.life, s.maxLife)
	}
	if s.maxLife < 2 || s.maxLife > 5 {
		t.Errorf("maxLife = %v, want default range [2, 5]", s.maxLife)
	}
}

func TestSparkleFieldSetConfigKeepsPool(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	pos := f.sparkles[3].pos
	cfg := testSparkleConfig()
	cfg.Color = Color{R: 1, A: 1}
	cfg.Opacity = 0.2
	f.SetConfig(cfg)
	if f.sparkles[3].pos != pos {
		t.Error("same count should keep live sparkles")
	}
	if f.Config().Color != (Color{R: 1, A: 1}) {
		t.Error("config not replaced")
	}
}

func TestSparkleFieldSetConfigResizes(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	cfg := testSparkleConfig()
	cfg.Count = 10
	f.SetConfig(cfg)
	if f.Len() != 10 {
		t.Errorf("Len = %d, want 10", f.Len())
	}
}

func TestSparkleAlphaEnvelope(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	s := sparkle{maxLife: 4}

	s.life = 4
	assertNear(t, "birth", f.alpha(&s), 0)
	s.life = 2
	assertNear(t, "mid-life", f.alpha(&s), 0.8)
	s.life = 0
	if a := f.alpha(&s); math.Abs(a) > 1e-9 {
		t.Errorf("death alpha = %v, want 0", a)
	}
}

func TestSparkleRadius(t *testing.T) {
	f := newSparkleField(testSparkleConfig())
	s := sparkle{scale: 0.5}
	assertNear(t, "radius", f.radius(&s), 0.5*sparkleWorldScale)
}

func TestSparkleConfigFromDesc(t *testing.T) {
	d := SparklesDesc{Count: 12, Extent: 3, Size: 2, Speed: 0.5, Opacity: 0.6, Color: ColorWhite}
	cfg := SparkleConfigFromDesc(d)
	if cfg.Count != 12 || cfg.Extent != 3 || cfg.Speed != 0.5 || cfg.Opacity != 0.6 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLerp(t *testing.T) {
	assertNear(t, "lerp", lerp(2, 6, 0.25), 3)
}

package grandtree

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// sparkleWorldScale converts a SparkleConfig.Size into a billboard radius in
// world units.
const sparkleWorldScale = 0.02

// sparkle holds per-particle simulation state. Unexported; managed by SparkleField.
type sparkle struct {
	pos     mgl64.Vec3
	vel     mgl64.Vec3
	phase   float64 // wobble phase in radians
	life    float64 // remaining lifetime in seconds
	maxLife float64 // initial lifetime (for computing t)
	scale   float64
}

// SparkleConfig controls how sparkles are spawned and behave.
type SparkleConfig struct {
	// Count is the pool size. Every slot is always alive; expired sparkles
	// respawn in place.
	Count int
	// Center and Extent describe the spawn cube in the node's local space.
	Center mgl64.Vec3
	Extent float64
	// Size is the nominal sparkle size. Each sparkle draws a scale in
	// [0.5, 1] of it.
	Size float64
	// Speed scales drift velocity and twinkle rate.
	Speed float64
	// Opacity is the peak alpha of a sparkle.
	Opacity float64
	Color   Color
	// Lifetime is the range of sparkle lifetimes in seconds at Speed 1.
	Lifetime Range
	// Seed fixes the random stream. Zero seeds randomly.
	Seed uint64
}

// defaultSparkleLifetime applies when SparkleConfig.Lifetime is zero.
var defaultSparkleLifetime = Range{Min: 2, Max: 5}

// SparkleConfigFromDesc converts a sparkles description into a config.
func SparkleConfigFromDesc(d SparklesDesc) SparkleConfig {
	return SparkleConfig{
		Count:   d.Count,
		Center:  d.Center,
		Extent:  d.Extent,
		Size:    d.Size,
		Speed:   d.Speed,
		Opacity: d.Opacity,
		Color:   d.Color,
	}
}

// SparkleField manages a fixed pool of twinkling particles with CPU-based
// simulation. Sparkles drift slowly upward with a sideways wobble and fade
// in and out over their lifetime.
type SparkleField struct {
	config   SparkleConfig
	sparkles []sparkle
	rng      *rand.Rand
	active   bool
}

// newSparkleField creates a SparkleField with a prewarmed pool, so the
// first frame already shows sparkles at staggered ages.
func newSparkleField(cfg SparkleConfig) *SparkleField {
	f := &SparkleField{
		config: cfg,
		rng:    NewSeededRand(cfg.Seed),
		active: true,
	}
	f.resize(cfg.Count)
	return f
}

func (f *SparkleField) resize(n int) {
	if n < 0 {
		n = 0
	}
	f.sparkles = make([]sparkle, n)
	for i := range f.sparkles {
		f.spawn(&f.sparkles[i])
		f.sparkles[i].life = f.rng.Float64() * f.sparkles[i].maxLife
	}
}

// SetConfig replaces the configuration. The pool is rebuilt only when the
// count changes; otherwise live sparkles keep their positions and pick up
// the new color, size and opacity.
func (f *SparkleField) SetConfig(cfg SparkleConfig) {
	count := cfg.Count != f.config.Count
	f.config = cfg
	if count {
		f.resize(cfg.Count)
	}
}

// Config returns a pointer to the field's config for live tuning.
func (f *SparkleField) Config() *SparkleConfig {
	return &f.config
}

// Start resumes simulation.
func (f *SparkleField) Start() {
	f.active = true
}

// Stop freezes simulation. Frozen sparkles still render.
func (f *SparkleField) Stop() {
	f.active = false
}

// IsActive reports whether the field is simulating.
func (f *SparkleField) IsActive() bool {
	return f.active
}

// Len returns the number of sparkles.
func (f *SparkleField) Len() int {
	return len(f.sparkles)
}

// update advances the simulation by dt seconds.
func (f *SparkleField) update(dt float64) {
	if !f.active || dt <= 0 {
		return
	}
	speed := f.config.Speed
	if speed <= 0 {
		speed = 1
	}
	step := dt * speed
	for i := range f.sparkles {
		s := &f.sparkles[i]
		s.life -= step
		if s.life <= 0 {
			f.spawn(s)
			continue
		}
		s.phase += step * 2
		wobble := mgl64.Vec3{math.Cos(s.phase), 0, math.Sin(s.phase)}.Mul(0.05)
		s.pos = s.pos.Add(s.vel.Add(wobble).Mul(step))
	}
}

// spawn reinitializes s at a random point in the spawn cube.
func (f *SparkleField) spawn(s *sparkle) {
	half := f.config.Extent / 2
	box := Range{Min: -half, Max: half}
	s.pos = f.config.Center.Add(mgl64.Vec3{box.Random(f.rng), box.Random(f.rng), box.Random(f.rng)})
	s.vel = mgl64.Vec3{
		(f.rng.Float64() - 0.5) * 0.1,
		0.05 + f.rng.Float64()*0.15,
		(f.rng.Float64() - 0.5) * 0.1,
	}
	s.phase = f.rng.Float64() * 2 * math.Pi
	lt := f.config.Lifetime
	if lt.Max <= 0 {
		lt = defaultSparkleLifetime
	}
	s.maxLife = lt.Random(f.rng)
	if s.maxLife <= 0 {
		s.maxLife = 1
	}
	s.life = s.maxLife
	s.scale = 0.5 + f.rng.Float64()*0.5
}

// alpha returns the twinkle alpha of s: zero at birth and death, peak
// Opacity mid-life.
func (f *SparkleField) alpha(s *sparkle) float64 {
	t := 1 - s.life/s.maxLife
	return f.config.Opacity * math.Sin(math.Pi*t)
}

// radius returns the world-space billboard radius of s.
func (f *SparkleField) radius(s *sparkle) float64 {
	return f.config.Size * s.scale * sparkleWorldScale
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

package grandtree

import (
	"testing"
)

// setupBenchScene composes and applies the default tree.
func setupBenchScene(b *testing.B) (*Scene, *Composer) {
	b.Helper()
	layout := NewLayout(DefaultLayoutParams(), NewSeededRand(1))
	c := NewComposer(layout)
	s := NewScene(Rect{Width: 1280, Height: 720})
	s.Apply(c.Compose(DefaultViewState()))
	s.step(1.0 / 60)
	return s, c
}

func BenchmarkNewLayout(b *testing.B) {
	p := DefaultLayoutParams()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		NewLayout(p, NewSeededRand(uint64(i+1)))
	}
}

func BenchmarkCompose(b *testing.B) {
	_, c := setupBenchScene(b)
	st := DefaultViewState()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Compose(st)
	}
}

func BenchmarkApplyThemeChange(b *testing.B) {
	s, c := setupBenchScene(b)
	gold := c.Compose(DefaultViewState())
	st := DefaultViewState()
	st.Theme = ThemePatriot
	patriot := c.Compose(st)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			s.Apply(patriot)
		} else {
			s.Apply(gold)
		}
	}
}

func BenchmarkBuildCommands(b *testing.B) {
	s, _ := setupBenchScene(b)
	s.buildCommands()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.buildCommands()
	}
}

func BenchmarkBuildAndSort(b *testing.B) {
	s, _ := setupBenchScene(b)
	s.buildCommands()
	s.mergeSort()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetTreeRotation(float64(i) * 0.01)
		s.updateWorldTransforms()
		s.buildCommands()
		s.mergeSort()
	}
}

func BenchmarkWorldTransforms(b *testing.B) {
	s, _ := setupBenchScene(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetTreeRotation(float64(i) * 0.01)
		s.updateWorldTransforms()
	}
}

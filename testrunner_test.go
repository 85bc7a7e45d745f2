package grandtree

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadTestScriptValid(t *testing.T) {
	script := `{"steps": [
		{"action": "click", "x": 10, "y": 20},
		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 50, "toY": 0, "frames": 5},
		{"action": "wheel", "x": 400, "y": 300, "delta": 1},
		{"action": "set", "field": "theme", "value": "diamond"},
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "after"},
		{"action": "quit"}
	]}`
	r, err := LoadTestScript([]byte(script))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.steps) != 7 {
		t.Errorf("steps = %d, want 7", len(r.steps))
	}
}

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name, script, want string
	}{
		{"invalid json", `{not json`, "parse test script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "teleport"}]}`, `unknown action "teleport"`},
		{"unknown field", `{"steps": [{"action": "set", "field": "volume", "value": 3}]}`, "step 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.script))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadTestScriptUnknownFieldWraps(t *testing.T) {
	_, err := LoadTestScript([]byte(`{"steps": [{"action": "set", "field": "volume"}]}`))
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}

func mustRunner(t *testing.T, script string) *TestRunner {
	t.Helper()
	r, err := LoadTestScript([]byte(script))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRunnerScreenshotAndDone(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [{"action": "screenshot", "label": "a"}]}`)
	r.step(s)
	if s.PendingScreenshots() != 1 {
		t.Errorf("pending screenshots = %d, want 1", s.PendingScreenshots())
	}
	if !r.Done() {
		t.Error("runner should be done after the last step")
	}
}

func TestRunnerWaitsForInjections(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [
		{"action": "click", "x": 1, "y": 1},
		{"action": "screenshot", "label": "b"}
	]}`)
	r.step(s)
	if s.PendingInjections() != 2 {
		t.Fatalf("pending injections = %d, want 2", s.PendingInjections())
	}
	r.step(s)
	if s.PendingScreenshots() != 0 {
		t.Fatal("runner should wait while injections are queued")
	}
	for s.PendingInjections() > 0 {
		s.processInjectedInput(0)
	}
	r.step(s)
	if s.PendingScreenshots() != 1 {
		t.Error("screenshot should run once the queue drains")
	}
}

func TestRunnerWaitFrames(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "c"}
	]}`)
	for i := 0; i < 3; i++ {
		r.step(s)
	}
	if s.PendingScreenshots() != 0 {
		t.Fatal("screenshot ran before the wait finished")
	}
	r.step(s)
	if s.PendingScreenshots() != 1 {
		t.Error("screenshot should run after three frames")
	}
}

func TestRunnerWheel(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [{"action": "wheel", "x": 100, "y": 100, "delta": 2}]}`)
	r.step(s)
	if s.PendingInjections() != 1 || s.injectQueue[0].wheel != 2 {
		t.Errorf("queue = %+v, want one wheel event", s.injectQueue)
	}
}

func TestRunnerSetUpdatesViewModel(t *testing.T) {
	s := renderScene()
	vm := NewViewModel(DefaultViewState())
	r := mustRunner(t, `{"steps": [
		{"action": "set", "field": "rotationSpeed", "value": 0.8},
		{"action": "set", "field": "isSnowing", "value": false},
		{"action": "set", "field": "theme", "value": "patriot"}
	]}`)
	r.Updater = vm
	for !r.Done() {
		r.step(s)
	}
	st := vm.State()
	if st.RotationSpeed != 0.8 || st.IsSnowing || st.Theme != ThemePatriot {
		t.Errorf("state = %+v", st)
	}
	if r.Err() != nil {
		t.Errorf("Err = %v", r.Err())
	}
}

func TestRunnerSetRecordsErrors(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [
		{"action": "set", "field": "rotationSpeed", "value": "fast"},
		{"action": "set", "field": "lightIntensity", "value": 2}
	]}`)
	r.step(s)
	if err := r.Err(); err == nil || !strings.Contains(err.Error(), "no updater") {
		t.Fatalf("Err = %v, want no updater", err)
	}
	r.Updater = NewViewModel(DefaultViewState())
	r.steps[1].Value = "bright"
	r.step(s)
	if !errors.Is(r.Err(), ErrInvalidValue) {
		t.Errorf("Err = %v, want ErrInvalidValue", r.Err())
	}
}

func TestRunnerQuit(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [{"action": "quit"}, {"action": "screenshot"}]}`)
	r.step(s)
	if !r.QuitRequested() || !r.Done() {
		t.Error("quit should finish the runner")
	}
	r.step(s)
	if s.PendingScreenshots() != 0 {
		t.Error("steps after quit should not run")
	}
}

func TestSetTestRunnerAttaches(t *testing.T) {
	s := renderScene()
	r := mustRunner(t, `{"steps": [{"action": "screenshot", "label": "x"}]}`)
	s.SetTestRunner(r)
	s.testRunner.step(s)
	if !r.Done() {
		t.Error("attached runner should advance")
	}
}

package grandtree

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Field  string  `json:"field,omitempty"`
	Value  any     `json:"value,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, state updates and screenshots across
// frames for automated visual testing. Attach to a Scene via SetTestRunner.
type TestRunner struct {
	// Updater receives "set" steps. Without one, set steps fail.
	Updater Updater

	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	quit      bool
	errs      []error
}

// LoadTestScript parses a JSON test script. Unknown actions and set steps
// naming an unknown field are rejected up front.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "wait", "screenshot", "wheel", "quit":
		case "set":
			if _, err := ParseField(st.Field); err != nil {
				return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. The runner advances
// from Scene.Update before input is processed each frame.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// QuitRequested reports whether a "quit" step has run.
func (r *TestRunner) QuitRequested() bool {
	return r.quit
}

// Err returns the failures of executed steps joined, or nil.
func (r *TestRunner) Err() error {
	return errors.Join(r.errs...)
}

// step advances the runner by one frame.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		s.InjectWheel(st.X, st.Y, st.Delta)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "set":
		r.set(s, st)
	case "quit":
		r.quit = true
		r.done = true
		return
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}

func (r *TestRunner) set(s *Scene, st testStep) {
	if r.Updater == nil {
		r.errs = append(r.errs, fmt.Errorf("step %d: set %s: no updater", r.cursor-1, st.Field))
		return
	}
	if err := r.Updater.Update(Field(st.Field), st.Value); err != nil {
		r.errs = append(r.errs, fmt.Errorf("step %d: %w", r.cursor-1, err))
		s.logger.Warn().Err(err).Str("field", st.Field).Msg("script update rejected")
	}
}

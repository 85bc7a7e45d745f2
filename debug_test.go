package grandtree

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDebugCheckDisposedPanics(t *testing.T) {
	n := NewContainer("gone")
	n.Dispose()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if !strings.Contains(r.(string), "gone") {
			t.Errorf("panic = %v, want node name", r)
		}
	}()
	debugCheckDisposed(n, "AddChild")
}

func TestDebugCheckTreeDepthWarns(t *testing.T) {
	var buf bytes.Buffer
	prev := debugLogger
	debugLogger = zerolog.New(&buf)
	defer func() { debugLogger = prev }()

	n := NewContainer("0")
	for i := 0; i < debugMaxTreeDepth+1; i++ {
		c := NewContainer("deep")
		n.AddChild(c)
		n = c
	}
	debugCheckTreeDepth(n)
	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("log = %q, want depth warning", buf.String())
	}
}

func TestDebugLogWritesStats(t *testing.T) {
	var buf bytes.Buffer
	s := renderScene()
	s.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	defer s.SetLogger(zerolog.Nop())
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	s.debugLog(debugStats{traverseTime: time.Millisecond, commandCount: 12, batchCount: 2})
	out := buf.String()
	for _, want := range []string{`"commands":12`, `"batches":2`, `"message":"frame"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log = %q, missing %s", out, want)
		}
	}
}

func TestDebugLogSilentWhenOff(t *testing.T) {
	var buf bytes.Buffer
	s := renderScene()
	s.logger = zerolog.New(&buf)
	s.debugLog(debugStats{commandCount: 1})
	if buf.Len() != 0 {
		t.Errorf("log = %q, want nothing", buf.String())
	}
}

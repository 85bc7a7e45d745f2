package grandtree

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// debugStats holds per-frame timing and draw-call metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	traverseTime  time.Duration
	sortTime      time.Duration
	submitTime    time.Duration
	filterTime    time.Duration
	commandCount  int
	batchCount    int
	drawCallCount int
	triangleCount int
}

// debugLogger receives tree warnings from node operations, which lack a
// Scene pointer. It follows the most recent Scene.SetLogger call.
var debugLogger = zerolog.Nop()

// debugLog writes timing and draw-call stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.traverseTime + stats.sortTime + stats.submitTime + stats.filterTime
	s.logger.Debug().
		Dur("traverse", stats.traverseTime).
		Dur("sort", stats.sortTime).
		Dur("submit", stats.submitTime).
		Dur("filters", stats.filterTime).
		Dur("total", total).
		Int("commands", stats.commandCount).
		Int("batches", stats.batchCount).
		Int("draw_calls", stats.drawCallCount).
		Int("triangles", stats.triangleCount).
		Msg("frame")
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("grandtree debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugMaxTreeDepth is the depth past which AddChild warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn().Str("node", n.Name).Int("depth", depth).
			Int("threshold", debugMaxTreeDepth).Msg("tree depth exceeds threshold")
	}
}

// debugMaxChildCount is the child count past which AddChild warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugLogger.Warn().Str("node", n.Name).Int("children", len(n.children)).
			Int("threshold", debugMaxChildCount).Msg("child count exceeds threshold")
	}
}

// countBatches counts contiguous groups of commands sharing the same batchKey.
// Equals the number of draw calls submitBatches issues.
func countBatches(commands []RenderCommand) int {
	if len(commands) == 0 {
		return 0
	}
	count := 1
	prev := commandBatchKey(&commands[0])
	for i := 1; i < len(commands); i++ {
		cur := commandBatchKey(&commands[i])
		if cur != prev {
			count++
			prev = cur
		}
	}
	return count
}

// countTriangles sums the triangles across commands.
func countTriangles(commands []RenderCommand) int {
	n := 0
	for i := range commands {
		n += (commands[i].indEnd - commands[i].indStart) / 3
	}
	return n
}

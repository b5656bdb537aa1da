package canopy

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timing and traversal metrics.
// Only populated when the stage is in debug mode.
type debugStats struct {
	traverseTime time.Duration
	nodeCount    int
	renderErrors int
}

// debugLog writes frame stats at debug level.
func (s *Stage) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.logger.Debug("canopy: frame",
		zap.Duration("traverse", stats.traverseTime),
		zap.Int("nodes", stats.nodeCount),
		zap.Int("render_errors", stats.renderErrors),
		zap.Int("attached", len(s.nodes)),
		zap.Int("timers", len(s.sched.timers)),
		zap.Int("animations", len(s.sched.anims)),
	)
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func (s *Stage) debugCheckTreeDepth(n *Node) {
	if depth := n.Depth() + 1; depth > debugMaxTreeDepth {
		s.logger.Warn("canopy: deep tree",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), zap.String("node", n.Name))
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func (s *Stage) debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		s.logger.Warn("canopy: wide node",
			zap.String("node", n.Name), zap.Int("children", len(n.children)), zap.Int("threshold", debugMaxChildCount))
	}
}

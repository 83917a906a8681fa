package engine

import "github.com/charmbracelet/log"

// debugMaxTreeDepth is the depth past which Scene.Add warns in debug mode.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(logger *log.Logger, n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold", "node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the child count past which Scene.Add warns in debug mode.
const debugMaxChildCount = 1000

func debugCheckChildCount(logger *log.Logger, n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Warn("child count exceeds threshold", "node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}

package tiler

import (
	"fmt"
	"os"
)

// globalDebug mirrors the most recently set Graph debug flag so that node
// operations (which lack a Graph pointer) can check it cheaply. Only valid
// with a single Graph; multiple Graphs with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// debugLog prints a host call trace line to stderr.
func (g *Graph) debugLog(format string, args ...any) {
	if !g.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[tiler] graph: "+format+"\n", args...)
}

// debugCheckDisposed panics when a destroyed node is wired back into a tree.
// Handles of destroyed nodes are dead, so this only happens when a caller
// kept a *Node across Host.Destroy.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("tiler debug: %s on destroyed node %q; its handle is no longer valid", op, n.Name))
	}
}

// debugMaxTreeDepth is the deepest path a tiled setup produces with room to
// spare: /obj/DEST/TILE_OUTPUTS/task is five levels including the root.
// Anything deeper usually means a destination was nested inside a previous
// run's output.
const debugMaxTreeDepth = 8

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[tiler] warning: %s is %d levels deep (limit %d); is the destination nested in generated tiles?\n",
			n.Path(), depth, debugMaxTreeDepth)
	}
}

// debugMaxGridSide bounds the grid a container is expected to hold. A
// destination holds one camera per tile plus the indirection node and the
// aggregation container.
const (
	debugMaxGridSide   = 64
	debugMaxChildCount = debugMaxGridSide*debugMaxGridSide + 2
)

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[tiler] warning: %s holds %d nodes, more than a %dx%d tile grid produces\n",
			n.Path(), len(n.children), debugMaxGridSide, debugMaxGridSide)
	}
}

package tiler

import "math"

// Network editor spacing used by Graph.Layout.
const (
	layoutSpacingX = 3.0
	layoutSpacingY = 1.5
)

// Layout implements Host. Children are placed left to right, top to bottom
// on a near-square grid in child order.
func (g *Graph) Layout(container NodeRef) error {
	n, err := g.containerRef(container)
	if err != nil {
		return err
	}
	layoutChildren(n)
	return nil
}

func layoutChildren(n *Node) {
	count := len(n.children)
	if count == 0 {
		return
	}
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	for i, c := range n.children {
		c.X = float64(i%cols) * layoutSpacingX
		c.Y = -float64(i/cols) * layoutSpacingY
	}
}

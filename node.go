package tiler

import (
	"slices"
	"strings"
)

// --- ID counter ---

// nodeIDCounter is a plain counter; the graph is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is an element of the in-memory Graph. A single flat struct is used for
// all node types; fields that do not apply to a type stay empty.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Network editor position, assigned by Graph.Layout.
	X, Y float64

	// Parameters, in creation order.
	params     map[string]*Param
	paramOrder []string

	// Wiring
	inputs      []*Node
	mergeInputs []*Node

	// Target is the path whose transform an indirection node re-exposes.
	Target string

	// Internal
	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.params = make(map[string]*Param)
}

// NewContainer creates an empty container node.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewCamera creates a camera node with a full-frame window, zero transform,
// and the given resolution. Parameter names follow DefaultParamNames.
func NewCamera(name string, res Resolution) *Node {
	n := &Node{Name: name, Type: NodeTypeCamera}
	nodeDefaults(n)
	p := DefaultParamNames
	for _, ch := range p.transformParams() {
		n.AddParam(ch, 0.0)
	}
	n.AddParam(p.WindowX, DefaultWindow.OffsetX)
	n.AddParam(p.WindowY, DefaultWindow.OffsetY)
	n.AddParam(p.WindowSizeX, DefaultWindow.SizeX)
	n.AddParam(p.WindowSizeY, DefaultWindow.SizeY)
	n.AddParam(p.ResolutionX, res.Width)
	n.AddParam(p.ResolutionY, res.Height)
	return n
}

// NewRenderTask creates a render task node rendering cameraPath to
// outputPath. Parameter names follow DefaultParamNames.
func NewRenderTask(name, cameraPath, outputPath string) *Node {
	n := &Node{Name: name, Type: NodeTypeRenderTask}
	nodeDefaults(n)
	n.AddParam(DefaultParamNames.RenderCamera, cameraPath)
	n.AddParam(DefaultParamNames.OutputPath, outputPath)
	return n
}

// newIndirection creates a node re-exposing target's transform.
func newIndirection(name, target string) *Node {
	n := &Node{Name: name, Type: NodeTypeIndirection, Target: target}
	nodeDefaults(n)
	n.AddParam("fetchobjpath", target)
	n.AddParam("useinputoffetched", 1)
	return n
}

// newMerge creates a merge node with no inputs.
func newMerge(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeMerge}
	nodeDefaults(n)
	return n
}

// Ref returns the node's handle.
func (n *Node) Ref() NodeRef {
	return NodeRef(n.ID)
}

// Path returns the node's absolute path. The root is "/".
func (n *Node) Path() string {
	if n.Parent == nil {
		return "/"
	}
	var names []string
	for p := n; p.Parent != nil; p = p.Parent {
		names = append(names, p.Name)
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/")
}

// --- Parameters ---

// AddParam creates or replaces a static parameter and returns it.
func (n *Node) AddParam(name string, value any) *Param {
	if _, ok := n.params[name]; !ok {
		n.paramOrder = append(n.paramOrder, name)
	}
	p := newParam(name, value)
	n.params[name] = p
	return p
}

// Param returns the named parameter, or nil.
func (n *Node) Param(name string) *Param {
	return n.params[name]
}

// ParamNames returns parameter names in creation order. The returned slice
// MUST NOT be mutated.
func (n *Node) ParamNames() []string {
	return n.paramOrder
}

// --- Wiring ---

// Input returns the node connected to slot, or nil.
func (n *Node) Input(slot int) *Node {
	if slot < 0 || slot >= len(n.inputs) {
		return nil
	}
	return n.inputs[slot]
}

// setInput connects src to slot, growing the input list as needed.
func (n *Node) setInput(slot int, src *Node) {
	for len(n.inputs) <= slot {
		n.inputs = append(n.inputs, nil)
	}
	n.inputs[slot] = src
}

// MergeInputs returns a merge node's inputs in connection order. The returned
// slice MUST NOT be mutated.
func (n *Node) MergeInputs() []*Node {
	return n.mergeInputs
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("tiler: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("tiler: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("tiler: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindChild returns the direct child with the given name, or nil.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.params = nil
	n.paramOrder = nil
	n.inputs = nil
	n.mergeInputs = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

package tiler

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// ExecutedTask is one render task as seen by an Execute call.
type ExecutedTask struct {
	// Path is the render task node path.
	Path string
	// Camera is the camera path the task renders through.
	Camera string
	// Output is the task's output path.
	Output string
}

// Execution records one Execute call.
type Execution struct {
	// Path is the node Execute was called on.
	Path string
	// Tasks are the render tasks triggered, in merge order.
	Tasks []ExecutedTask
}

// RenderFunc runs one render task. Returning an error aborts the remaining
// tasks of the execution.
type RenderFunc func(task ExecutedTask) error

// Graph is an in-memory Host. It models a DCC scene graph closely enough to
// exercise a Builder end to end: unique names per container, parameters with
// keyframes and links, input wiring, merge nodes, and an execution log.
type Graph struct {
	root  *Node
	debug bool

	// Frame is the time at which animated parameters are evaluated.
	Frame float32
	// Render is called for every task an Execute call triggers. Optional.
	Render RenderFunc

	executions []Execution
}

var _ Host = (*Graph)(nil)

// NewGraph creates a graph whose root holds two empty containers, "obj" for
// cameras and "out" for render tasks.
func NewGraph() *Graph {
	root := NewContainer("")
	root.AddChild(NewContainer("obj"))
	root.AddChild(NewContainer("out"))
	return &Graph{root: root}
}

// Root returns the root container.
func (g *Graph) Root() *Node {
	return g.root
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, and every
// mutating host call is traced to stderr.
func (g *Graph) SetDebugMode(enabled bool) {
	g.debug = enabled
	globalDebug = enabled
}

// Executions returns every Execute call so far. The returned slice MUST NOT
// be mutated.
func (g *Graph) Executions() []Execution {
	return g.executions
}

// Lookup returns the node at p, or nil.
func (g *Graph) Lookup(p string) *Node {
	p = path.Clean("/" + p)
	n := g.root
	if p == "/" {
		return n
	}
	for _, name := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if n = n.FindChild(name); n == nil {
			return nil
		}
	}
	return n
}

// Node returns the live node with the given handle, or nil.
func (g *Graph) Node(ref NodeRef) *Node {
	if ref == NoNode {
		return nil
	}
	return findByID(g.root, uint32(ref))
}

func findByID(n *Node, id uint32) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.children {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Insert adds n under the container at parentPath, renaming it if the name
// is taken, and returns its handle.
func (g *Graph) Insert(parentPath string, n *Node) (NodeRef, error) {
	parent, err := g.container(g.Lookup(parentPath), parentPath)
	if err != nil {
		return NoNode, err
	}
	n.Name = uniqueName(parent, n.Name, nil)
	parent.AddChild(n)
	return n.Ref(), nil
}

// node resolves ref or returns an ErrNotFound error.
func (g *Graph) node(ref NodeRef) (*Node, error) {
	n := g.Node(ref)
	if n == nil {
		return nil, fmt.Errorf("%w: ref %d", ErrNotFound, ref)
	}
	return n, nil
}

// containerRef resolves ref and checks that it is a container.
func (g *Graph) containerRef(ref NodeRef) (*Node, error) {
	n, err := g.node(ref)
	if err != nil {
		return nil, err
	}
	return g.container(n, n.Path())
}

func (g *Graph) container(n *Node, p string) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if n.Type != NodeTypeContainer {
		return nil, fmt.Errorf("%w: %s is a %s, not a container", ErrNodeType, p, n.Type)
	}
	return n, nil
}

// param resolves a node parameter or returns an ErrNoParam error.
func (g *Graph) param(ref NodeRef, name string) (*Param, error) {
	n, err := g.node(ref)
	if err != nil {
		return nil, err
	}
	p := n.Param(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoParam, n.Path(), name)
	}
	return p, nil
}

// --- Host ---

// Resolve implements Host.
func (g *Graph) Resolve(p string) (NodeRef, error) {
	n := g.Lookup(p)
	if n == nil {
		return NoNode, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return n.Ref(), nil
}

// Name implements Host.
func (g *Graph) Name(ref NodeRef) (string, error) {
	n, err := g.node(ref)
	if err != nil {
		return "", err
	}
	return n.Name, nil
}

// Path implements Host.
func (g *Graph) Path(ref NodeRef) (string, error) {
	n, err := g.node(ref)
	if err != nil {
		return "", err
	}
	return n.Path(), nil
}

// CreateContainer implements Host.
func (g *Graph) CreateContainer(parent NodeRef, name string) (NodeRef, error) {
	return g.create(parent, NewContainer(name))
}

// CreateIndirection implements Host.
func (g *Graph) CreateIndirection(container NodeRef, targetPath string) (NodeRef, error) {
	return g.create(container, newIndirection("fetch", targetPath))
}

// CreateMerge implements Host.
func (g *Graph) CreateMerge(container NodeRef, name string) (NodeRef, error) {
	return g.create(container, newMerge(name))
}

func (g *Graph) create(parentRef NodeRef, n *Node) (NodeRef, error) {
	if err := checkName(n.Name); err != nil {
		return NoNode, err
	}
	parent, err := g.containerRef(parentRef)
	if err != nil {
		return NoNode, err
	}
	n.Name = uniqueName(parent, n.Name, nil)
	parent.AddChild(n)
	g.debugLog("create %s %s", n.Type, n.Path())
	return n.Ref(), nil
}

// Destroy implements Host.
func (g *Graph) Destroy(ref NodeRef) error {
	n, err := g.node(ref)
	if err != nil {
		return err
	}
	if n == g.root {
		return errors.New("tiler: cannot destroy the graph root")
	}
	g.debugLog("destroy %s", n.Path())
	n.Dispose()
	return nil
}

// Duplicate implements Host.
func (g *Graph) Duplicate(ref, into NodeRef, preserveLinks bool) (NodeRef, error) {
	src, err := g.node(ref)
	if err != nil {
		return NoNode, err
	}
	parent, err := g.containerRef(into)
	if err != nil {
		return NoNode, err
	}
	if isAncestor(src, parent) {
		return NoNode, fmt.Errorf("tiler: cannot duplicate %s into itself", src.Path())
	}
	dup := duplicateNode(src, preserveLinks)
	dup.Name = uniqueName(parent, src.Name, nil)
	parent.AddChild(dup)
	g.debugLog("duplicate %s -> %s (links %t)", src.Path(), dup.Path(), preserveLinks)
	return dup.Ref(), nil
}

// duplicateNode deep-copies n and its children.
func duplicateNode(n *Node, link bool) *Node {
	dup := &Node{Name: n.Name, Type: n.Type, Target: n.Target, X: n.X, Y: n.Y}
	nodeDefaults(dup)
	for _, name := range n.paramOrder {
		dup.paramOrder = append(dup.paramOrder, name)
		dup.params[name] = n.params[name].clone(link)
	}
	dup.inputs = append(dup.inputs, n.inputs...)
	dup.mergeInputs = append(dup.mergeInputs, n.mergeInputs...)
	for _, c := range n.children {
		dup.AddChild(duplicateNode(c, link))
	}
	return dup
}

// Rename implements Host. A taken name gets a numeric suffix.
func (g *Graph) Rename(ref NodeRef, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	n, err := g.node(ref)
	if err != nil {
		return err
	}
	if n == g.root {
		return errors.New("tiler: cannot rename the graph root")
	}
	old := n.Path()
	n.Name = uniqueName(n.Parent, name, n)
	g.debugLog("rename %s -> %s", old, n.Path())
	return nil
}

// SetInput implements Host.
func (g *Graph) SetInput(ref NodeRef, slot int, src NodeRef) error {
	if slot < 0 {
		return fmt.Errorf("tiler: negative input slot %d", slot)
	}
	n, err := g.node(ref)
	if err != nil {
		return err
	}
	s, err := g.node(src)
	if err != nil {
		return err
	}
	n.setInput(slot, s)
	return nil
}

// Param implements Host. The value is evaluated at Graph.Frame.
func (g *Graph) Param(ref NodeRef, name string) (any, error) {
	p, err := g.param(ref, name)
	if err != nil {
		return nil, err
	}
	return p.Eval(g.Frame), nil
}

// SetParam implements Host. Fails with ErrParamAnimated if the parameter
// still has keyframes or a link.
func (g *Graph) SetParam(ref NodeRef, name string, value any) error {
	p, err := g.param(ref, name)
	if err != nil {
		return err
	}
	return p.set(value)
}

// ClearParamAnimation implements Host. The value at Graph.Frame is kept.
func (g *Graph) ClearParamAnimation(ref NodeRef, name string) error {
	p, err := g.param(ref, name)
	if err != nil {
		return err
	}
	p.bake(g.Frame)
	return nil
}

// AppendMergeInput implements Host.
func (g *Graph) AppendMergeInput(merge, src NodeRef) error {
	m, err := g.node(merge)
	if err != nil {
		return err
	}
	if m.Type != NodeTypeMerge {
		return fmt.Errorf("%w: %s is a %s, not a merge", ErrNodeType, m.Path(), m.Type)
	}
	s, err := g.node(src)
	if err != nil {
		return err
	}
	m.mergeInputs = append(m.mergeInputs, s)
	return nil
}

// Execute implements Host. It records the render tasks reachable from ref
// and, if Render is set, runs them in order.
func (g *Graph) Execute(ref NodeRef) error {
	n, err := g.node(ref)
	if err != nil {
		return err
	}
	var tasks []*Node
	collectTasks(n, &tasks, make(map[*Node]bool))

	exec := Execution{Path: n.Path(), Tasks: make([]ExecutedTask, 0, len(tasks))}
	for _, t := range tasks {
		exec.Tasks = append(exec.Tasks, ExecutedTask{
			Path:   t.Path(),
			Camera: g.stringValue(t, DefaultParamNames.RenderCamera),
			Output: g.stringValue(t, DefaultParamNames.OutputPath),
		})
	}
	g.executions = append(g.executions, exec)
	g.debugLog("execute %s (%d tasks)", exec.Path, len(exec.Tasks))

	if g.Render == nil {
		return nil
	}
	for _, t := range exec.Tasks {
		if err := g.Render(t); err != nil {
			return err
		}
	}
	return nil
}

// collectTasks appends the render tasks reachable from n. Containers with a
// merge node contribute the merge inputs; containers without one contribute
// their render task children.
func collectTasks(n *Node, out *[]*Node, seen map[*Node]bool) {
	if n.disposed || seen[n] {
		return
	}
	seen[n] = true
	switch n.Type {
	case NodeTypeRenderTask:
		*out = append(*out, n)
	case NodeTypeMerge:
		for _, in := range n.mergeInputs {
			collectTasks(in, out, seen)
		}
	case NodeTypeContainer:
		merged := false
		for _, c := range n.children {
			if c.Type == NodeTypeMerge {
				merged = true
				collectTasks(c, out, seen)
			}
		}
		if merged {
			return
		}
		for _, c := range n.children {
			if c.Type == NodeTypeRenderTask {
				collectTasks(c, out, seen)
			}
		}
	}
}

func (g *Graph) stringValue(n *Node, name string) string {
	p := n.Param(name)
	if p == nil {
		return ""
	}
	s, _ := p.Eval(g.Frame).(string)
	return s
}

// Dump writes an indented listing of the tree with parameter values.
func (g *Graph) Dump(w io.Writer) error {
	return dumpNode(w, g.root, g.Frame, 0)
}

func dumpNode(w io.Writer, n *Node, frame float32, depth int) error {
	indent := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s%s [%s]\n", indent, n.Path(), n.Type); err != nil {
		return err
	}
	for _, name := range n.paramOrder {
		p := n.params[name]
		mark := ""
		if p.Animated() {
			mark = " (animated)"
		}
		if _, err := fmt.Fprintf(w, "%s    %s = %v%s\n", indent, name, p.Eval(frame), mark); err != nil {
			return err
		}
	}
	for i, in := range n.mergeInputs {
		if _, err := fmt.Fprintf(w, "%s    <- %d %s\n", indent, i, in.Path()); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := dumpNode(w, c, frame, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// checkName rejects names that cannot be path components.
func checkName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("tiler: invalid node name %q", name)
	}
	return nil
}

// uniqueName returns name, or name with its trailing number incremented
// until no child of parent other than self uses it.
func uniqueName(parent *Node, name string, self *Node) string {
	taken := func(candidate string) bool {
		c := parent.FindChild(candidate)
		return c != nil && c != self
	}
	if !taken(name) {
		return name
	}
	base := strings.TrimRight(name, "0123456789")
	n := 1
	if digits := name[len(base):]; digits != "" {
		if v, err := strconv.Atoi(digits); err == nil {
			n = v + 1
		}
	}
	for ; ; n++ {
		candidate := base + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

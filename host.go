package tiler

// NodeRef is an opaque handle to a node owned by a Host. The zero value
// refers to no node.
type NodeRef uint32

// NoNode is the zero NodeRef.
const NoNode NodeRef = 0

// Host is the scene graph and render execution environment the Builder
// drives. Implementations wrap a DCC application's scripting API; Graph is
// an in-memory implementation.
//
// The Builder never translates Host errors. Whatever a Host returns is handed
// back to the caller unchanged, with the exception of ErrNotFound from
// Resolve on the source camera and task, which is reported as
// ErrConfiguration.
type Host interface {
	// Resolve returns the node at path or an error wrapping ErrNotFound.
	Resolve(path string) (NodeRef, error)
	// Name returns the node's name within its parent.
	Name(ref NodeRef) (string, error)
	// Path returns the node's full path.
	Path(ref NodeRef) (string, error)

	// CreateContainer creates an empty container named name under parent.
	CreateContainer(parent NodeRef, name string) (NodeRef, error)
	// CreateIndirection creates a node inside container that re-exposes the
	// transform of the node at targetPath.
	CreateIndirection(container NodeRef, targetPath string) (NodeRef, error)
	// CreateMerge creates a merge node with no inputs inside container.
	CreateMerge(container NodeRef, name string) (NodeRef, error)
	// Destroy deletes a node and everything below it.
	Destroy(ref NodeRef) error
	// Duplicate copies ref into the container into. With preserveLinks the
	// copy's parameters keep referencing the original's values.
	Duplicate(ref, into NodeRef, preserveLinks bool) (NodeRef, error)
	// Rename renames a node. Hosts may adjust the name to keep it unique;
	// callers read the final name back with Name.
	Rename(ref NodeRef, name string) error
	// SetInput connects src to input slot of ref.
	SetInput(ref NodeRef, slot int, src NodeRef) error

	// Param evaluates a parameter at the host's current time.
	Param(ref NodeRef, name string) (any, error)
	// SetParam sets a parameter's static value.
	SetParam(ref NodeRef, name string, value any) error
	// ClearParamAnimation removes keyframes and links from a parameter,
	// leaving its current value as a static value.
	ClearParamAnimation(ref NodeRef, name string) error

	// AppendMergeInput connects src as the next input of a merge node.
	AppendMergeInput(merge, src NodeRef) error
	// Layout arranges a container's children. Cosmetic.
	Layout(container NodeRef) error
	// Execute triggers the render tasks under ref and returns when the host
	// hands control back.
	Execute(ref NodeRef) error
}

// ParamNames names the host parameters the Builder reads and writes.
type ParamNames struct {
	// Camera frame window.
	WindowX, WindowY, WindowSizeX, WindowSizeY string
	// Camera resolution.
	ResolutionX, ResolutionY string
	// Camera translate and rotate channels. Tile cameras zero all of them
	// and take their transform from the indirection node instead.
	Translate, Rotate [3]string

	// Render task camera reference.
	RenderCamera string
	// Render task output path template.
	OutputPath string
}

// DefaultParamNames matches a Houdini camera and a Redshift ROP.
var DefaultParamNames = ParamNames{
	WindowX:      "winx",
	WindowY:      "winy",
	WindowSizeX:  "winsizex",
	WindowSizeY:  "winsizey",
	ResolutionX:  "resx",
	ResolutionY:  "resy",
	Translate:    [3]string{"tx", "ty", "tz"},
	Rotate:       [3]string{"rx", "ry", "rz"},
	RenderCamera: "RS_renderCamera",
	OutputPath:   "RS_outputFileNamePrefix",
}

// transformParams returns the translate and rotate channel names.
func (p ParamNames) transformParams() []string {
	return []string{
		p.Translate[0], p.Translate[1], p.Translate[2],
		p.Rotate[0], p.Rotate[1], p.Rotate[2],
	}
}

// withDefaults fills empty fields from DefaultParamNames.
func (p ParamNames) withDefaults() ParamNames {
	d := DefaultParamNames
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&p.WindowX, d.WindowX)
	fill(&p.WindowY, d.WindowY)
	fill(&p.WindowSizeX, d.WindowSizeX)
	fill(&p.WindowSizeY, d.WindowSizeY)
	fill(&p.ResolutionX, d.ResolutionX)
	fill(&p.ResolutionY, d.ResolutionY)
	for i := range 3 {
		fill(&p.Translate[i], d.Translate[i])
		fill(&p.Rotate[i], d.Rotate[i])
	}
	fill(&p.RenderCamera, d.RenderCamera)
	fill(&p.OutputPath, d.OutputPath)
	return p
}

package tiler

import "fmt"

// Resolution is an image size in pixels.
type Resolution struct {
	Width, Height int
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Divide returns the per-tile resolution for grid g. Division truncates, so a
// 1921 pixel wide frame split into 4 columns yields 480 pixel tiles.
func (r Resolution) Divide(g Grid) Resolution {
	return Resolution{Width: r.Width / g.TilesX, Height: r.Height / g.TilesY}
}

// EvenlyDivides reports whether g splits r without truncation.
func (r Resolution) EvenlyDivides(g Grid) bool {
	return r.Width%g.TilesX == 0 && r.Height%g.TilesY == 0
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Window is a camera frame window: the normalized sub-rectangle of the full
// frame the camera renders. The zero value is not the full frame; use
// DefaultWindow.
type Window struct {
	OffsetX, OffsetY float64
	SizeX, SizeY     float64
}

// DefaultWindow is the full-frame window: no offset, unit size.
var DefaultWindow = Window{SizeX: 1, SizeY: 1}

// IsDefault reports whether w selects the full frame.
func (w Window) IsDefault() bool {
	return w == DefaultWindow
}

// CameraTemplate is the part of the source camera that tiling reads. It is
// never mutated.
type CameraTemplate struct {
	// Name is the source camera's node name; tile cameras are named after it.
	Name string
	// Path is the source camera's full path in the host scene graph.
	Path string
	// Resolution is the full-frame resolution.
	Resolution Resolution
	// Window is the source camera's own frame window. Tiles always cover the
	// full frame, so a non-default window here is reported but not composed.
	Window Window
}

// readCameraTemplate reads a CameraTemplate from a resolved camera node.
func readCameraTemplate(h Host, ref NodeRef, names ParamNames) (CameraTemplate, error) {
	var cam CameraTemplate
	var err error
	if cam.Name, err = h.Name(ref); err != nil {
		return cam, err
	}
	if cam.Path, err = h.Path(ref); err != nil {
		return cam, err
	}
	if cam.Resolution.Width, err = intParam(h, ref, names.ResolutionX); err != nil {
		return cam, err
	}
	if cam.Resolution.Height, err = intParam(h, ref, names.ResolutionY); err != nil {
		return cam, err
	}
	window := [4]*float64{&cam.Window.OffsetX, &cam.Window.OffsetY, &cam.Window.SizeX, &cam.Window.SizeY}
	for i, name := range []string{names.WindowX, names.WindowY, names.WindowSizeX, names.WindowSizeY} {
		if *window[i], err = floatParam(h, ref, name); err != nil {
			return cam, err
		}
	}
	return cam, nil
}

// intParam reads a numeric parameter and converts it to int. Float values
// are truncated toward zero.
func intParam(h Host, ref NodeRef, name string) (int, error) {
	v, err := h.Param(ref, name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case float32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: parameter %q is %T, want a number", ErrConfiguration, name, v)
	}
}

// floatParam reads a numeric parameter as float64.
func floatParam(h Host, ref NodeRef, name string) (float64, error) {
	v, err := h.Param(ref, name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: parameter %q is %T, want a number", ErrConfiguration, name, v)
	}
}

// stringParam reads a string parameter.
func stringParam(h Host, ref NodeRef, name string) (string, error) {
	v, err := h.Param(ref, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %q is %T, want a string", ErrConfiguration, name, v)
	}
	return s, nil
}

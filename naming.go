package tiler

import (
	"path"
	"strings"
	"time"
)

// RunTimestampLayout formats the per-invocation output directory name.
const RunTimestampLayout = "20060102_150405"

// RunTimestamp returns the output directory name for an invocation started
// at t. Second resolution: two invocations within the same second share a
// directory.
func RunTimestamp(t time.Time) string {
	return t.Format(RunTimestampLayout)
}

// TileNodeName returns the name of a tile camera or render task.
func TileNodeName(base, label string) string {
	return base + "_" + label
}

// TileOutputPath rewrites an output path template for one tile:
// {dir}{stamp}/{taskName}{file}. Backslashes are normalized to forward
// slashes first so Windows-authored templates split correctly. The result is
// not cleaned, so "$HIP/.." and "//server/share" prefixes survive.
func TileOutputPath(template, stamp, taskName string) string {
	_, file := splitTemplate(template)
	return TileOutputDir(template, stamp) + "/" + taskName + file
}

// TileOutputDir returns the per-invocation directory of an output path
// template: the template's directory followed by stamp.
func TileOutputDir(template, stamp string) string {
	dir, _ := splitTemplate(template)
	return dir + stamp
}

// splitTemplate splits a slash-normalized template after its last slash.
// dir keeps its trailing slash and is empty for a bare file name.
func splitTemplate(template string) (dir, file string) {
	return path.Split(strings.ReplaceAll(template, `\`, "/"))
}

// SplitDestination splits a container path into its parent path and name.
// "/obj/CAM_TILES" yields ("/obj", "CAM_TILES"). A path directly under the
// root yields "/" as parent.
func SplitDestination(p string) (parent, name string) {
	p = path.Clean("/" + strings.TrimSpace(p))
	dir, name := path.Split(p)
	if dir != "/" {
		dir = strings.TrimSuffix(dir, "/")
	}
	return dir, name
}

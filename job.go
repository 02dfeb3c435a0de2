package tiler

import (
	"encoding/json"
	"fmt"
)

// jobSpec is one entry of a job file.
type jobSpec struct {
	Camera      string `json:"camera"`
	Task        string `json:"task"`
	TilesX      int    `json:"tilesX"`
	TilesY      int    `json:"tilesY"`
	Destination string `json:"destination,omitempty"`
}

// jobFile is the top-level JSON structure for a job file.
type jobFile struct {
	Jobs []jobSpec `json:"jobs"`
}

// DefaultDestination is the container used by jobs that do not name one.
const DefaultDestination = "/obj/CAMERA_TILES"

// LoadJobs parses a JSON job file into build requests:
//
//	{"jobs": [{"camera": "/obj/cam1", "task": "/out/rop1", "tilesX": 4, "tilesY": 4}]}
//
// Jobs without a destination use DefaultDestination. Grid sizes are not
// checked here; BuildTiledRender rejects invalid grids.
func LoadJobs(jsonData []byte) ([]BuildRequest, error) {
	var file jobFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if len(file.Jobs) == 0 {
		return nil, fmt.Errorf("parse job file: no jobs")
	}
	reqs := make([]BuildRequest, len(file.Jobs))
	for i, j := range file.Jobs {
		if j.Camera == "" || j.Task == "" {
			return nil, fmt.Errorf("parse job file: job %d: camera and task are required", i)
		}
		dest := j.Destination
		if dest == "" {
			dest = DefaultDestination
		}
		reqs[i] = BuildRequest{
			CameraPath:  j.Camera,
			TaskPath:    j.Task,
			TilesX:      j.TilesX,
			TilesY:      j.TilesY,
			Destination: dest,
		}
	}
	return reqs, nil
}

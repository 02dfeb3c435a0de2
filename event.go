package tiler

// EventSink receives progress events from a Builder. Set one on
// BuildConfig.Events to observe builds, for example from an ECS world.
type EventSink interface {
	EmitTileEvent(event TileEvent)
}

// EventType identifies a kind of build event.
type EventType uint8

const (
	EventSubgraphReplaced EventType = iota // destination container was (re)created
	EventTileCreated                       // one tile camera and render task were wired
	EventExecuted                          // the aggregation container was executed
	EventRolledBack                        // a failed build removed its partial subgraph
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventSubgraphReplaced:
		return "subgraph-replaced"
	case EventTileCreated:
		return "tile-created"
	case EventExecuted:
		return "executed"
	case EventRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// TileEvent carries build progress data. Tile fields are set for
// EventTileCreated only.
type TileEvent struct {
	Type EventType
	// Container is the destination container path.
	Container string
	// Timestamp is the run timestamp of the build.
	Timestamp string

	X, Y       int
	Label      string
	CameraPath string
	TaskPath   string
	OutputPath string

	// Tiles is the number of tiles wired so far.
	Tiles int
}

// Package engine defines the contract between the pipeline assembly code and
// the media processing engine that actually demuxes, decodes, converts,
// encodes and muxes.
//
// The assembly code never touches codec or container internals. It only asks
// the engine for named elements, wires their ports together and drives the
// graph through its run states while reading the engine's event stream.
//
// Two implementations exist:
//   - gstengine: GStreamer through go-gst
//   - enginetest: an in-memory engine with scripted stream discovery for tests
package engine

// State is the run state of a graph or of a single node inside it.
type State int

const (
	StateNull State = iota
	StateReady
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateReady:
		return "ready"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Engine creates nodes and graphs.
type Engine interface {
	// Lookup instantiates an element of the given type. An empty id lets the
	// engine pick a unique name. Unknown types yield *UnavailableElementError.
	Lookup(typeName, id string) (Node, error)

	// NewGraph creates an empty graph in StateNull.
	NewGraph(name string) (Graph, error)
}

// Node is an instantiated processing element.
type Node interface {
	Name() string
	TypeName() string

	// SetConfig sets one element property.
	SetConfig(key string, value any) error

	// RequestPort asks the node for a new port from a request template such
	// as "audio_%u". Denials yield *PortRequestDeniedError.
	RequestPort(template string) (Port, error)

	// ReleasePort hands a requested port back to the node.
	ReleasePort(port Port)

	// StaticPort returns an always-present port such as "sink" or "src".
	StaticPort(name string) (Port, bool)

	// SyncStateWithParent brings the node to the run state of the graph that
	// holds it. A node added to a running graph stays inert without this.
	SyncStateWithParent() error

	// OnNewOutput registers fn to be called for every output port the node
	// creates at runtime. fn runs on an engine thread.
	OnNewOutput(fn func(Port)) error
}

// Port is a typed connection point on a node.
type Port interface {
	Name() string

	// MediaType returns the name of the first negotiated capability structure
	// ("audio/x-raw", "video/x-raw", ...). ok is false when nothing has been
	// negotiated yet.
	MediaType() (mediaType string, ok bool)

	// Link connects this output port to the input port sink.
	Link(sink Port) error

	// Unlink removes a link previously made with Link.
	Unlink(sink Port) error
}

// Graph owns every node added to it and every link between them.
type Graph interface {
	Name() string

	// Add moves nodes into the graph. Names must be unique within the graph.
	Add(nodes ...Node) error

	// SetState requests a run state transition. The engine may reject it,
	// reported as *StateRejectedError.
	SetState(state State) error

	// State returns the current run state.
	State() State

	// ByName looks up a node held by the graph.
	ByName(name string) (Node, bool)

	// Downgrade returns a non-owning handle to the graph for use inside
	// callbacks the graph itself holds.
	Downgrade() WeakGraph

	// WaitEvent blocks until the next event is available.
	WaitEvent() Event

	// PollEvent returns the next event if one is already queued.
	PollEvent() (Event, bool)

	// SendEndOfStream asks every source in the graph to finish, which lets
	// the muxer finalize its output and eventually posts EventEOS.
	SendEndOfStream() error

	// Close stops the graph and releases it. Weak handles stop upgrading.
	Close() error
}

// WeakGraph is a non-owning reference to a Graph.
type WeakGraph interface {
	// Upgrade returns a strong handle, or false once the graph was closed or
	// collected. Callers must return early on false.
	Upgrade() (Graph, bool)
}

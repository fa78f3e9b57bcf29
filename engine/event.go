package engine

import "fmt"

// EventKind classifies events read from a graph's event stream.
type EventKind int

const (
	EventOther EventKind = iota
	EventEOS
	EventError
	EventWarning
	EventStateChanged
)

func (k EventKind) String() string {
	switch k {
	case EventEOS:
		return "eos"
	case EventError:
		return "error"
	case EventWarning:
		return "warning"
	case EventStateChanged:
		return "state-changed"
	default:
		return "other"
	}
}

// Event is one entry of the event stream.
type Event struct {
	Kind EventKind

	// Source names the node (or graph) that posted the event.
	Source string

	// Message and Debug are set for EventError and EventWarning.
	Message string
	Debug   string

	// OldState and NewState are set for EventStateChanged.
	OldState State
	NewState State

	// Detail carries the engine's own name for EventOther.
	Detail string
}

// Terminal reports whether the event ends a run.
func (e Event) Terminal() bool {
	return e.Kind == EventEOS || e.Kind == EventError
}

func (e Event) String() string {
	switch e.Kind {
	case EventError, EventWarning:
		return fmt.Sprintf("%s from %s: %s", e.Kind, e.Source, e.Message)
	case EventStateChanged:
		return fmt.Sprintf("%s %s: %s -> %s", e.Kind, e.Source, e.OldState, e.NewState)
	case EventOther:
		return fmt.Sprintf("%s from %s (%s)", e.Kind, e.Source, e.Detail)
	default:
		return fmt.Sprintf("%s from %s", e.Kind, e.Source)
	}
}

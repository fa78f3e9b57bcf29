package engine

import "fmt"

// UnavailableElementError reports an element type the engine cannot provide.
type UnavailableElementError struct {
	TypeName string
	Err      error
}

func (e *UnavailableElementError) Error() string {
	return fmt.Sprintf("can't load element %s", e.TypeName)
}

func (e *UnavailableElementError) Unwrap() error { return e.Err }

// ProfileBuildError reports an encoding profile that could not be built or applied.
type ProfileBuildError struct {
	Reason string
}

func (e *ProfileBuildError) Error() string {
	return "encoding profile: " + e.Reason
}

// PortRequestDeniedError reports a request template the node refused.
type PortRequestDeniedError struct {
	Node     string
	Template string
}

func (e *PortRequestDeniedError) Error() string {
	return fmt.Sprintf("%s denied port request %q", e.Node, e.Template)
}

// LinkError reports a failed link between two ports or two nodes.
type LinkError struct {
	From   string
	To     string
	Reason string
}

func (e *LinkError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("failed to link %s -> %s", e.From, e.To)
	}
	return fmt.Sprintf("failed to link %s -> %s: %s", e.From, e.To, e.Reason)
}

// UnnegotiatedCapsError reports a port inspected before it negotiated a format.
type UnnegotiatedCapsError struct {
	Port string
}

func (e *UnnegotiatedCapsError) Error() string {
	return fmt.Sprintf("port %s has no negotiated capabilities", e.Port)
}

// StateRejectedError reports a run state transition the engine refused.
type StateRejectedError struct {
	Target State
	Object string
	Err    error
}

func (e *StateRejectedError) Error() string {
	msg := fmt.Sprintf("%s rejected state change to %s", e.Object, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StateRejectedError) Unwrap() error { return e.Err }

// FatalError is an error the engine reported on the event stream while running.
type FatalError struct {
	Source  string
	Message string
	Debug   string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// FatalFromEvent converts an EventError into a *FatalError.
func FatalFromEvent(ev Event) *FatalError {
	return &FatalError{Source: ev.Source, Message: ev.Message, Debug: ev.Debug}
}

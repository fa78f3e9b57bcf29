package profile

import (
	"errors"
	"sync"

	"watermark/engine"
)

var (
	// ErrProfileApplied is returned when a profile was already applied to the
	// encoder. Reapplying is always rejected, even with an equal profile.
	ErrProfileApplied = errors.New("encoding profile already applied")

	// ErrProfileLocked is returned when the graph is past StateReady.
	ErrProfileLocked = errors.New("encoding profile cannot change once the graph is running")
)

// Encoder wraps the encoder/muxer node and applies a profile to it at most once.
type Encoder struct {
	node engine.Node

	mu      sync.Mutex
	applied *Profile
}

// NewEncoder wraps node.
func NewEncoder(node engine.Node) *Encoder {
	return &Encoder{node: node}
}

// Node returns the wrapped encoder/muxer node.
func (e *Encoder) Node() engine.Node {
	return e.node
}

// Profile returns the applied profile, or nil.
func (e *Encoder) Profile() *Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applied
}

// Configure applies p to the encoder node. It must run before the graph
// leaves StateReady and succeeds at most once.
func (e *Encoder) Configure(p *Profile, graphState engine.State) error {
	if p == nil {
		return &engine.ProfileBuildError{Reason: "profile is nil"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if graphState > engine.StateReady {
		return ErrProfileLocked
	}
	if e.applied != nil {
		return ErrProfileApplied
	}

	if err := e.node.SetConfig("profile", p.String()); err != nil {
		return &engine.ProfileBuildError{Reason: "apply to " + e.node.Name() + ": " + err.Error()}
	}
	e.applied = p
	return nil
}

// Package enginetest provides an in-memory engine for tests. It performs no
// media processing: it records nodes, ports and links, and when a graph goes
// to playing it "discovers" a scripted list of streams on every source node,
// invoking the registered output callbacks from a separate goroutine the way
// a real engine does from its streaming threads.
package enginetest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"watermark/engine"
)

// DefaultSourceType is the element type that discovers streams.
const DefaultSourceType = "uridecodebin"

// Engine is a scriptable fake engine.
type Engine struct {
	mu sync.Mutex

	sourceType  string
	unavailable map[string]bool
	denied      map[string]bool
	syncFails   map[string]bool
	rejected    map[engine.State]bool
	failLink    func(from, to string) error
	streams     []string
	sourceError string
	startError  string
	holdEOS     bool

	counter int
	graphs  []*Graph
}

// New returns an engine with no streams and nothing failing.
func New() *Engine {
	return &Engine{
		sourceType:  DefaultSourceType,
		unavailable: make(map[string]bool),
		denied:      make(map[string]bool),
		syncFails:   make(map[string]bool),
		rejected:    make(map[engine.State]bool),
	}
}

// Unavailable makes Lookup fail for the given types.
func (e *Engine) Unavailable(types ...string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range types {
		e.unavailable[t] = true
	}
	return e
}

// DenyTemplate makes every RequestPort for template fail.
func (e *Engine) DenyTemplate(template string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.denied[template] = true
	return e
}

// FailSync makes SyncStateWithParent fail for nodes of the given types.
func (e *Engine) FailSync(types ...string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range types {
		e.syncFails[t] = true
	}
	return e
}

// RejectState makes graph transitions to s fail.
func (e *Engine) RejectState(s engine.State) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejected[s] = true
	return e
}

// FailLink installs a hook consulted on every link. from and to are
// "node.port" strings. A non-nil return fails the link with that reason.
func (e *Engine) FailLink(fn func(from, to string) error) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failLink = fn
	return e
}

// Streams sets the media types every source node discovers, in order. An
// empty string discovers an output that never negotiated a format.
func (e *Engine) Streams(mediaTypes ...string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streams = append([]string(nil), mediaTypes...)
	return e
}

// SourceError makes the source post an error after discovery instead of
// end of stream.
func (e *Engine) SourceError(msg string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sourceError = msg
	return e
}

// StartError makes the transition to playing fail with an error posted by
// the source, as when the input cannot be opened.
func (e *Engine) StartError(msg string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startError = msg
	return e
}

// HoldEOS keeps the graph running after discovery until SendEndOfStream.
func (e *Engine) HoldEOS() *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.holdEOS = true
	return e
}

// Graphs returns every graph created so far.
func (e *Engine) Graphs() []*Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Graph(nil), e.graphs...)
}

// LastGraph returns the most recently created graph, or nil.
func (e *Engine) LastGraph() *Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.graphs) == 0 {
		return nil
	}
	return e.graphs[len(e.graphs)-1]
}

// Lookup implements engine.Engine.
func (e *Engine) Lookup(typeName, id string) (engine.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if typeName == "" || e.unavailable[typeName] {
		return nil, &engine.UnavailableElementError{
			TypeName: typeName,
			Err:      errors.New("no such element factory"),
		}
	}
	if id == "" {
		id = fmt.Sprintf("%s%d", typeName, e.counter)
		e.counter++
	}
	n := &Node{
		eng:       e,
		name:      id,
		typeName:  typeName,
		config:    make(map[string]any),
		static:    make(map[string]*Port),
		requested: make(map[string]*Port),
		counts:    make(map[string]int),
	}
	for _, p := range e.staticPortsLocked(typeName) {
		n.static[p] = &Port{node: n, name: p}
	}
	n.templates = templatesFor(typeName)
	return n, nil
}

func (e *Engine) staticPortsLocked(typeName string) []string {
	switch {
	case typeName == e.sourceType:
		return nil
	case typeName == "encodebin":
		return []string{"src"}
	case strings.HasSuffix(typeName, "sink"):
		return []string{"sink"}
	default:
		return []string{"sink", "src"}
	}
}

func templatesFor(typeName string) []string {
	if typeName == "encodebin" {
		return []string{"audio_%u", "video_%u"}
	}
	return nil
}

// NewGraph implements engine.Engine.
func (e *Engine) NewGraph(name string) (engine.Graph, error) {
	g := &Graph{
		eng:    e,
		name:   name,
		nodes:  make(map[string]*Node),
		events: make(chan engine.Event, 256),
	}
	e.mu.Lock()
	e.graphs = append(e.graphs, g)
	e.mu.Unlock()
	return g, nil
}

type script struct {
	sourceType  string
	streams     []string
	sourceError string
	startError  string
	holdEOS     bool
	rejected    bool
}

func (e *Engine) snapshot(target engine.State) script {
	e.mu.Lock()
	defer e.mu.Unlock()
	return script{
		sourceType:  e.sourceType,
		streams:     append([]string(nil), e.streams...),
		sourceError: e.sourceError,
		startError:  e.startError,
		holdEOS:     e.holdEOS,
		rejected:    e.rejected[target],
	}
}

func (e *Engine) linkHook() func(from, to string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failLink
}

func (e *Engine) templateDenied(template string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.denied[template]
}

func (e *Engine) syncFailsFor(typeName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncFails[typeName]
}

package enginetest

import (
	"errors"
	"fmt"
	"sync"

	"watermark/engine"
)

// Link is one recorded port-to-port link.
type Link struct {
	From string
	To   string
}

func (l Link) String() string { return l.From + " -> " + l.To }

// Graph is a fake pipeline.
type Graph struct {
	eng  *Engine
	name string

	mu     sync.Mutex
	nodes  map[string]*Node
	order  []*Node
	links  []Link
	state  engine.State
	closed bool

	events chan engine.Event
	done   sync.WaitGroup
}

func (g *Graph) Name() string { return g.name }

func (g *Graph) Add(nodes ...engine.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	fakes := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		fn, ok := n.(*Node)
		if !ok {
			return fmt.Errorf("node %s does not belong to this engine", n.Name())
		}
		if _, dup := g.nodes[fn.name]; dup {
			return fmt.Errorf("node %s already in graph %s", fn.name, g.name)
		}
		fn.mu.Lock()
		owned := fn.graph != nil
		fn.mu.Unlock()
		if owned {
			return fmt.Errorf("node %s already has a parent", fn.name)
		}
		fakes = append(fakes, fn)
	}
	for _, fn := range fakes {
		fn.mu.Lock()
		fn.graph = g
		fn.mu.Unlock()
		g.nodes[fn.name] = fn
		g.order = append(g.order, fn)
	}
	return nil
}

func (g *Graph) SetState(target engine.State) error {
	sc := g.eng.snapshot(target)
	if sc.rejected {
		return &engine.StateRejectedError{Target: target, Object: g.name}
	}

	if target == engine.StatePlaying && sc.startError != "" {
		g.post(engine.Event{Kind: engine.EventError, Source: g.sourceName(sc.sourceType), Message: sc.startError})
		return &engine.StateRejectedError{Target: target, Object: g.name}
	}

	g.mu.Lock()
	old := g.state
	g.state = target
	for _, n := range g.order {
		n.mu.Lock()
		n.state = target
		n.mu.Unlock()
	}
	g.mu.Unlock()

	if old != target {
		g.post(engine.Event{Kind: engine.EventStateChanged, Source: g.name, OldState: old, NewState: target})
	}
	if target == engine.StatePlaying && old != engine.StatePlaying {
		g.done.Add(1)
		go g.discover(sc)
	}
	return nil
}

func (g *Graph) discover(sc script) {
	defer g.done.Done()

	var sources []*Node
	g.mu.Lock()
	for _, n := range g.order {
		if n.typeName == sc.sourceType {
			sources = append(sources, n)
		}
	}
	g.mu.Unlock()

	for _, src := range sources {
		for i, mt := range sc.streams {
			src.emit(i, mt)
		}
	}

	switch {
	case sc.sourceError != "":
		g.post(engine.Event{Kind: engine.EventError, Source: g.sourceName(sc.sourceType), Message: sc.sourceError})
	case !sc.holdEOS:
		g.post(engine.Event{Kind: engine.EventEOS, Source: g.name})
	}
}

func (g *Graph) sourceName(sourceType string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.order {
		if n.typeName == sourceType {
			return n.name
		}
	}
	return g.name
}

func (g *Graph) post(ev engine.Event) {
	g.events <- ev
}

func (g *Graph) State() engine.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Graph) ByName(name string) (engine.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	if !ok {
		return nil, false
	}
	return n, true
}

func (g *Graph) Downgrade() engine.WeakGraph { return weakGraph{g: g} }

func (g *Graph) WaitEvent() engine.Event { return <-g.events }

func (g *Graph) PollEvent() (engine.Event, bool) {
	select {
	case ev := <-g.events:
		return ev, true
	default:
		return engine.Event{}, false
	}
}

func (g *Graph) SendEndOfStream() error {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return errors.New("graph closed")
	}
	g.post(engine.Event{Kind: engine.EventEOS, Source: g.name})
	return nil
}

func (g *Graph) Close() error {
	g.mu.Lock()
	g.closed = true
	g.state = engine.StateNull
	g.mu.Unlock()
	return nil
}

// Wait blocks until every discovery goroutine has finished.
func (g *Graph) Wait() { g.done.Wait() }

// Closed reports whether Close was called.
func (g *Graph) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Node returns the node called name, or nil.
func (g *Graph) Node(name string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[name]
}

// Nodes returns every node in the order it was added.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Node(nil), g.order...)
}

// NodesOfType returns the nodes of one element type in the order they were added.
func (g *Graph) NodesOfType(typeName string) []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*Node
	for _, n := range g.order {
		if n.typeName == typeName {
			out = append(out, n)
		}
	}
	return out
}

// Links returns the current links in the order they were made.
func (g *Graph) Links() []Link {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Link(nil), g.links...)
}

// HasLink reports whether from is linked to to ("node.port" strings).
func (g *Graph) HasLink(from, to string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range g.links {
		if l.From == from && l.To == to {
			return true
		}
	}
	return false
}

func (g *Graph) addLink(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range g.links {
		if l.From == from {
			return &engine.LinkError{From: from, To: to, Reason: "source port already linked"}
		}
		if l.To == to {
			return &engine.LinkError{From: from, To: to, Reason: "sink port already linked"}
		}
	}
	g.links = append(g.links, Link{From: from, To: to})
	return nil
}

func (g *Graph) removeLink(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, l := range g.links {
		if l.From == from && l.To == to {
			g.links = append(g.links[:i], g.links[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s is not linked to %s", from, to)
}

func (g *Graph) dropLinks(port string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.links[:0]
	for _, l := range g.links {
		if l.From != port && l.To != port {
			kept = append(kept, l)
		}
	}
	g.links = kept
}

type weakGraph struct {
	g *Graph
}

func (w weakGraph) Upgrade() (engine.Graph, bool) {
	if w.g == nil || w.g.Closed() {
		return nil, false
	}
	return w.g, true
}

package enginetest

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"watermark/engine"
)

// Node is a fake element.
type Node struct {
	eng      *Engine
	name     string
	typeName string

	mu        sync.Mutex
	graph     *Graph
	state     engine.State
	synced    bool
	config    map[string]any
	static    map[string]*Port
	templates []string
	requested map[string]*Port
	counts    map[string]int
	released  int
	callbacks []func(engine.Port)
}

func (n *Node) Name() string     { return n.name }
func (n *Node) TypeName() string { return n.typeName }

func (n *Node) SetConfig(key string, value any) error {
	if key == "" {
		return errors.New("empty property name")
	}
	if err := checkProperty(n.typeName, key, value); err != nil {
		return fmt.Errorf("%s.%s: %w", n.name, key, err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.config[key] = value
	return nil
}

// Config returns a property set with SetConfig.
func (n *Node) Config(key string) (any, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.config[key]
	return v, ok
}

func (n *Node) RequestPort(template string) (engine.Port, error) {
	if n.eng.templateDenied(template) {
		return nil, &engine.PortRequestDeniedError{Node: n.name, Template: template}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.templates, template) {
		return nil, &engine.PortRequestDeniedError{Node: n.name, Template: template}
	}
	name := strings.Replace(template, "%u", strconv.Itoa(n.counts[template]), 1)
	n.counts[template]++
	p := &Port{node: n, name: name}
	n.requested[name] = p
	return p, nil
}

func (n *Node) ReleasePort(port engine.Port) {
	p, ok := port.(*Port)
	if !ok || p.node != n {
		return
	}
	n.mu.Lock()
	if _, held := n.requested[p.name]; !held {
		n.mu.Unlock()
		return
	}
	delete(n.requested, p.name)
	n.released++
	g := n.graph
	n.mu.Unlock()

	if g != nil {
		g.dropLinks(p.FullName())
	}
}

// RequestedPorts returns the names of requested ports still held, sorted.
func (n *Node) RequestedPorts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.requested))
	for name := range n.requested {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Released returns how many requested ports were handed back.
func (n *Node) Released() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.released
}

func (n *Node) StaticPort(name string) (engine.Port, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.static[name]
	if !ok {
		return nil, false
	}
	return p, true
}

func (n *Node) SyncStateWithParent() error {
	n.mu.Lock()
	g := n.graph
	n.mu.Unlock()

	if g == nil {
		return &engine.StateRejectedError{Object: n.name, Err: errors.New("node has no parent")}
	}
	target := g.State()
	if n.eng.syncFailsFor(n.typeName) {
		return &engine.StateRejectedError{Target: target, Object: n.name}
	}

	n.mu.Lock()
	n.state = target
	n.synced = true
	n.mu.Unlock()
	return nil
}

// State returns the node's own run state.
func (n *Node) State() engine.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Synced reports whether SyncStateWithParent succeeded on this node.
func (n *Node) Synced() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.synced
}

func (n *Node) OnNewOutput(fn func(engine.Port)) error {
	if fn == nil {
		return errors.New("nil callback")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callbacks = append(n.callbacks, fn)
	return nil
}

// Output creates a runtime output port on n without announcing it. Tests
// use it to hand a discovered port to code under test directly.
func (n *Node) Output(index int, mediaType string) *Port {
	return &Port{
		node:       n,
		name:       "src_" + strconv.Itoa(index),
		mediaType:  mediaType,
		negotiated: mediaType != "",
	}
}

// emit creates a discovered output port and runs every callback on it.
// Callbacks run without the node lock held.
func (n *Node) emit(index int, mediaType string) *Port {
	p := n.Output(index, mediaType)
	n.mu.Lock()
	cbs := append([]func(engine.Port){}, n.callbacks...)
	n.mu.Unlock()

	for _, cb := range cbs {
		cb(p)
	}
	return p
}

// Port is a fake pad.
type Port struct {
	node       *Node
	name       string
	mediaType  string
	negotiated bool
}

func (p *Port) Name() string { return p.name }

// FullName returns "node.port".
func (p *Port) FullName() string { return p.node.name + "." + p.name }

func (p *Port) MediaType() (string, bool) {
	return p.mediaType, p.negotiated
}

func (p *Port) Link(sink engine.Port) error {
	s, ok := sink.(*Port)
	if !ok {
		return &engine.LinkError{From: p.FullName(), To: sink.Name(), Reason: "foreign port"}
	}
	from, to := p.FullName(), s.FullName()

	p.node.mu.Lock()
	g := p.node.graph
	p.node.mu.Unlock()
	s.node.mu.Lock()
	sg := s.node.graph
	s.node.mu.Unlock()

	if g == nil || g != sg {
		return &engine.LinkError{From: from, To: to, Reason: "nodes not in the same graph"}
	}
	if hook := p.node.eng.linkHook(); hook != nil {
		if err := hook(from, to); err != nil {
			return &engine.LinkError{From: from, To: to, Reason: err.Error()}
		}
	}
	return g.addLink(from, to)
}

func (p *Port) Unlink(sink engine.Port) error {
	s, ok := sink.(*Port)
	if !ok {
		return errors.New("foreign port")
	}
	p.node.mu.Lock()
	g := p.node.graph
	p.node.mu.Unlock()
	if g == nil {
		return errors.New("node not in a graph")
	}
	return g.removeLink(p.FullName(), s.FullName())
}

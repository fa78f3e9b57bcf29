// Package element resolves named element types to engine nodes and links
// fixed chains of them.
package element

import (
	"errors"
	"fmt"

	"watermark/engine"
)

// Spec describes one element of a fixed chain: its type and the properties
// set right after instantiation.
type Spec struct {
	Type   string
	ID     string
	Config []Setting
}

// Setting is one property assignment. A slice keeps assignment order stable.
type Setting struct {
	Key   string
	Value any
}

// Make instantiates typeName under the optional id. Any engine failure is
// reported as *engine.UnavailableElementError naming the type.
func Make(eng engine.Engine, typeName, id string) (engine.Node, error) {
	node, err := eng.Lookup(typeName, id)
	if err != nil {
		var unavailable *engine.UnavailableElementError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &engine.UnavailableElementError{TypeName: typeName, Err: err}
	}
	if node == nil {
		return nil, &engine.UnavailableElementError{TypeName: typeName}
	}
	return node, nil
}

// MakeConfigured instantiates spec and applies its settings. Either a fully
// configured node is returned or none is.
func MakeConfigured(eng engine.Engine, spec Spec) (engine.Node, error) {
	node, err := Make(eng, spec.Type, spec.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range spec.Config {
		if err := node.SetConfig(s.Key, s.Value); err != nil {
			return nil, fmt.Errorf("failed to set %s on %s: %w", s.Key, spec.Type, err)
		}
	}
	return node, nil
}

// MakeChain instantiates every spec in order. If any element fails, nothing
// is returned, so no orphan ever reaches a graph.
func MakeChain(eng engine.Engine, specs []Spec) ([]engine.Node, error) {
	nodes := make([]engine.Node, 0, len(specs))
	for _, spec := range specs {
		node, err := MakeConfigured(eng, spec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// LinkChain links each node's static "src" port to the next node's static
// "sink" port, in order.
func LinkChain(nodes []engine.Node) error {
	for i := 0; i+1 < len(nodes); i++ {
		if err := LinkNodes(nodes[i], nodes[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// LinkNodes links upstream "src" to downstream "sink".
func LinkNodes(upstream, downstream engine.Node) error {
	src, ok := upstream.StaticPort("src")
	if !ok {
		return &engine.LinkError{From: upstream.Name(), To: downstream.Name(), Reason: "upstream has no src port"}
	}
	sink, ok := downstream.StaticPort("sink")
	if !ok {
		return &engine.LinkError{From: upstream.Name(), To: downstream.Name(), Reason: "downstream has no sink port"}
	}
	return src.Link(sink)
}

// Names returns the node names in order.
func Names(nodes []engine.Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return names
}

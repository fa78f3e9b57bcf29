// Package topology keeps a ledger of every node and link the pipeline
// assembly creates, so the shape of the live graph can be validated and
// reported after the fact.
package topology

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"watermark/models"
)

// Role tells whether a node belongs to the static skeleton or to a branch
// built for a discovered stream.
type Role string

const (
	RoleSkeleton Role = "skeleton"
	RoleBranch   Role = "branch"
)

// Node is one recorded element.
type Node struct {
	Name string
	Type string
	Role Role
	Kind models.MediaKind // set for branch nodes
}

// Edge is one recorded link between two nodes.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string {
	return e.From + " -> " + e.To
}

// Graph is safe for concurrent use; branches record themselves from engine
// threads while the driver reads at the end of a run.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
	edges []Edge
}

// New creates an empty ledger.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// AddNode records a node. Names are unique.
func (g *Graph) AddNode(n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.Name]; exists {
		return fmt.Errorf("node %s already exists", n.Name)
	}
	node := n
	g.nodes[n.Name] = &node
	g.order = append(g.order, n.Name)
	return nil
}

// AddEdge records a link. Endpoints are checked by Validate, not here, so a
// branch can record its links in any order relative to its nodes.
func (g *Graph) AddEdge(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// RemoveEdge forgets one recorded link, if present.
func (g *Graph) RemoveEdge(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, e := range g.edges {
		if e.From == from && e.To == to {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return
		}
	}
}

// Node returns a copy of the named node.
func (g *Graph) Node(name string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edges returns a copy of the recorded links in recording order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Successors returns the names of nodes linked downstream of name.
func (g *Graph) Successors(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, e := range g.edges {
		if e.From == name {
			out = append(out, e.To)
		}
	}
	return out
}

// Validate checks that every link joins two recorded nodes and that the
// links form no cycle.
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adjacency := make(map[string][]string)
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return fmt.Errorf("link %s starts at unknown node %s", e, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return fmt.Errorf("link %s ends at unknown node %s", e, e.To)
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	// DFS-based cycle detection
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(name string) bool
	hasCycle = func(name string) bool {
		visited[name] = true
		recStack[name] = true

		for _, next := range adjacency[name] {
			if !visited[next] {
				if hasCycle(next) {
					return true
				}
			} else if recStack[next] {
				return true
			}
		}

		recStack[name] = false
		return false
	}

	for _, name := range g.order {
		if !visited[name] {
			if hasCycle(name) {
				return fmt.Errorf("cycle detected in graph links")
			}
		}
	}

	return nil
}

// GetStats returns node and link counts.
func (g *Graph) GetStats() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := map[string]int{
		"nodes":    len(g.nodes),
		"links":    len(g.edges),
		"skeleton": 0,
		"branch":   0,
		"audio":    0,
		"video":    0,
	}

	for _, n := range g.nodes {
		switch n.Role {
		case RoleSkeleton:
			stats["skeleton"]++
		case RoleBranch:
			stats["branch"]++
			switch n.Kind {
			case models.MediaAudio:
				stats["audio"]++
			case models.MediaVideo:
				stats["video"]++
			}
		}
	}

	return stats
}

// Shape returns the links rewritten as "type -> type" and sorted, which
// makes two runs comparable regardless of generated node names or the
// order in which branches were built.
func (g *Graph) Shape() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	shape := make([]string, 0, len(g.edges))
	for _, e := range g.edges {
		from, to := e.From, e.To
		if n, ok := g.nodes[from]; ok {
			from = n.Type
		}
		if n, ok := g.nodes[to]; ok {
			to = n.Type
		}
		shape = append(shape, from+" -> "+to)
	}
	sort.Strings(shape)
	return shape
}

// String dumps the links, one per line, in recording order.
func (g *Graph) String() string {
	edges := g.Edges()
	lines := make([]string, len(edges))
	for i, e := range edges {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

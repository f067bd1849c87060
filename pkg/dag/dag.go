package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [DAG.AddEdge] when From and To are equal.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrGraphHasCycle describes the failure reported by [DAG.FindCycle].
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Node is a vertex of the graph.
type Node struct {
	ID string
}

// Edge is a directed connection from a parent to a child.
type Edge struct {
	From string // Parent node ID
	To   string // Child node ID
}

// DAG is a directed acyclic graph that remembers insertion order.
//
// [DAG.Sources], [DAG.Sinks] and [DAG.FindCycle] visit nodes in the order
// they were added, so identical input gives identical results.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edgeSet  map[[2]string]bool
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		edgeSet:  make(map[[2]string]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	d.nodes[n.ID] = &n
	d.order = append(d.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist,
// ErrUnknownTargetNode if the To node doesn't exist, or ErrSelfLoop if
// both ends are the same node.
//
// Adding an edge that already exists is a no-op, so callers may feed both
// the parent list and the child list of a node without producing duplicates.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	key := [2]string{e.From, e.To}
	if d.edgeSet[key] {
		return nil
	}
	d.edgeSet[key] = true
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of distinct edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edgeSet) }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// FindCycle returns the node IDs of one directed cycle, starting and ending
// at the same node, or nil if the graph is acyclic. Nodes are visited in
// insertion order so the reported cycle is deterministic.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) FindCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range d.order {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
// Returns a new slice containing the IDs in the same order as the input.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

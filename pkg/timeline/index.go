package timeline

import (
	stderrors "errors"
	"strings"

	"github.com/lifetree/lifetree/pkg/dag"
	"github.com/lifetree/lifetree/pkg/errors"
)

// Index is a validated lookup structure over a snapshot. It is read-only and
// safe for concurrent readers.
type Index struct {
	snap     *Snapshot
	nodes    map[string]*Node
	branches map[string]*Branch
	trunk    *Branch
	graph    *dag.DAG
}

// Validate checks the structural invariants of the snapshot:
//
//   - node and branch IDs are non-empty and unique
//   - every node's branch and every parent/child reference resolves
//   - a node without parents is a root
//   - each branch root exists, belongs to the branch and is flagged as root
//   - a snapshot with nodes has exactly one trunk branch
//   - the parent/child graph is acyclic
//
// Errors carry a code from the snapshot family of pkg/errors, so
// errors.IsStructural reports true for all of them.
func (s *Snapshot) Validate() error {
	_, err := s.Index()
	return err
}

// Index validates the snapshot and returns its lookup structure.
// The index references the snapshot; do not modify it afterwards.
func (s *Snapshot) Index() (*Index, error) {
	ix := &Index{
		snap:     s,
		nodes:    make(map[string]*Node, len(s.Nodes)),
		branches: make(map[string]*Branch, len(s.Branches)),
		graph:    dag.New(),
	}

	for i := range s.Branches {
		b := &s.Branches[i]
		if b.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "branch at index %d has empty ID", i)
		}
		if _, dup := ix.branches[b.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "duplicate branch ID %s", b.ID)
		}
		ix.branches[b.ID] = b
	}

	for i := range s.Nodes {
		n := &s.Nodes[i]
		if err := ix.graph.AddNode(dag.Node{ID: n.ID}); err != nil {
			if stderrors.Is(err, dag.ErrDuplicateNodeID) {
				return nil, errors.New(errors.ErrCodeInvalidSnapshot, "duplicate node ID %s", n.ID)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node at index %d", i)
		}
		ix.nodes[n.ID] = n
	}

	for _, n := range ix.orderedNodes() {
		if _, ok := ix.branches[n.BranchID]; !ok {
			return nil, errors.New(errors.ErrCodeDanglingReference, "node %s: unknown branch %s", n.ID, n.BranchID)
		}
		if len(n.ParentIDs) == 0 && !n.IsRoot {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "node %s has no parents and is not a root", n.ID)
		}
		for _, p := range n.ParentIDs {
			if err := ix.link(p, n.ID, "parent"); err != nil {
				return nil, err
			}
		}
		for _, c := range n.ChildIDs {
			if err := ix.link(n.ID, c, "child"); err != nil {
				return nil, err
			}
		}
	}

	for i := range s.Branches {
		b := &s.Branches[i]
		if b.IsTrunk {
			if ix.trunk != nil {
				return nil, errors.New(errors.ErrCodeMultipleTrunks, "branches %s and %s are both marked as trunk", ix.trunk.ID, b.ID)
			}
			ix.trunk = b
		}
		root, ok := b.Root()
		if !ok {
			continue
		}
		n, ok := ix.nodes[root]
		if !ok {
			return nil, errors.New(errors.ErrCodeRootNotFound, "branch %s: root node %s not found", b.ID, root)
		}
		if n.BranchID != b.ID {
			return nil, errors.New(errors.ErrCodeRootMismatch, "branch %s: root node %s belongs to branch %s", b.ID, root, n.BranchID)
		}
		if !n.IsRoot {
			return nil, errors.New(errors.ErrCodeRootMismatch, "branch %s: root node %s is not flagged as root", b.ID, root)
		}
	}
	// An empty node set is a valid, empty timeline and needs no trunk.
	if ix.trunk == nil && len(s.Nodes) > 0 {
		return nil, errors.New(errors.ErrCodeNoTrunk, "no branch is marked as trunk")
	}

	if cycle := ix.graph.FindCycle(); cycle != nil {
		return nil, errors.Wrap(errors.ErrCodeCycle, dag.ErrGraphHasCycle, "%s", strings.Join(cycle, " → "))
	}

	return ix, nil
}

// link records the relation parent→child. Both IDs are checked so that a
// reference in either direction is reported against the node that holds it.
func (ix *Index) link(parent, child, rel string) error {
	holder, ref := child, parent
	if rel == "child" {
		holder, ref = parent, child
	}
	if _, ok := ix.nodes[ref]; !ok {
		return errors.New(errors.ErrCodeDanglingReference, "node %s: unknown %s %s", holder, rel, ref)
	}
	if parent == child {
		return errors.New(errors.ErrCodeCycle, "node %s references itself as %s", holder, rel)
	}
	return ix.graph.AddEdge(dag.Edge{From: parent, To: child})
}

func (ix *Index) orderedNodes() []*Node {
	out := make([]*Node, len(ix.snap.Nodes))
	for i := range ix.snap.Nodes {
		out[i] = &ix.snap.Nodes[i]
	}
	return out
}

// Snapshot returns the indexed snapshot.
func (ix *Index) Snapshot() *Snapshot { return ix.snap }

// Node returns the node with the given ID.
func (ix *Index) Node(id string) (*Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Branch returns the branch with the given ID.
func (ix *Index) Branch(id string) (*Branch, bool) {
	b, ok := ix.branches[id]
	return b, ok
}

// Trunk returns the trunk branch, or nil for an empty snapshot.
func (ix *Index) Trunk() *Branch { return ix.trunk }

// Branches returns all branches in registration order.
func (ix *Index) Branches() []*Branch {
	out := make([]*Branch, len(ix.snap.Branches))
	for i := range ix.snap.Branches {
		out[i] = &ix.snap.Branches[i]
	}
	return out
}

// Nodes returns all nodes in snapshot order.
func (ix *Index) Nodes() []*Node { return ix.orderedNodes() }

// Shape summarizes the parent→child graph of an indexed snapshot.
type Shape struct {
	Roots  []string // moments without parents
	Leaves []string // moments without children
	Merges []string // moments with more than one parent
	Forks  []string // moments with more than one child
	Edges  int      // distinct parent→child relations
}

// Shape returns the roots, leaves, merges and forks of the snapshot, each in
// snapshot order.
func (ix *Index) Shape() Shape {
	sh := Shape{
		Roots:  dag.NodeIDs(ix.graph.Sources()),
		Leaves: dag.NodeIDs(ix.graph.Sinks()),
		Edges:  ix.graph.EdgeCount(),
	}
	for _, n := range ix.orderedNodes() {
		if ix.graph.InDegree(n.ID) > 1 {
			sh.Merges = append(sh.Merges, n.ID)
		}
		if ix.graph.OutDegree(n.ID) > 1 {
			sh.Forks = append(sh.Forks, n.ID)
		}
	}
	return sh
}

// NodeCount returns the number of nodes.
func (ix *Index) NodeCount() int { return len(ix.nodes) }

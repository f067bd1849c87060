// Package layout computes the branch-graph layout of a timeline snapshot.
//
// # Overview
//
// A timeline has one trunk branch and any number of side branches. Each
// branch with a root node contributes one walk: starting at the root, the
// walk repeatedly steps to the first child that belongs to the same branch.
// Trunk nodes are placed in the right-hand column, side-branch nodes in the
// left-hand column, one row per step:
//
//	y = row * RowHeight + OffsetY
//
// The trunk starts at row 0. A side branch starts one row below its
// attachment point (the first parent of its root) and emits an edge from
// that parent. When a side walk runs out of same-branch children it emits
// one closing edge to the last node's first child, which is how a side
// branch visibly rejoins another strand.
//
// # Walk Order
//
// The trunk is walked first. Side branches follow in reverse registration
// order by default; set [Options].SideOrder to [Registration] to walk them in
// store order. A side branch whose attachment point has not been positioned
// yet (or whose root has no parent) starts at row 0 and a warning is logged.
//
// # Roles
//
//   - merge: the node has more than one parent
//   - branch: the node starts a side walk and has exactly one parent
//   - normal: everything else
//
// # Failure Modes
//
// The snapshot is validated before any node is placed; structural problems
// (dangling references, root mismatches, missing or duplicate trunk, cycles)
// are returned as errors and no layout is produced. A walk that revisits a
// node also fails with a cycle error.
//
// Nodes that no walk reaches are listed in [graph.Layout].Unreachable and
// logged, not silently dropped. Edges whose far end was never positioned are
// removed, so every edge in the result references a positioned node.
//
// # Usage
//
//	l, err := layout.Compute(snap, layout.DefaultOptions())
//
// or, with logging:
//
//	eng := &layout.Engine{Options: opts, Logger: logger}
//	l, err := eng.Compute(snap)
package layout

// Package dag provides an insertion-ordered directed acyclic graph used to
// index timeline snapshots.
//
// # Overview
//
// A timeline is a DAG of moments: each moment lists its parents and children
// in order, and a moment with more than one parent is a merge point. This
// package holds that structure in a form that can be checked before layout:
// dangling references surface when edges are added, and cycles surface from
// [DAG.FindCycle].
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "n1"})
//	g.AddNode(dag.Node{ID: "n2"})
//	g.AddEdge(dag.Edge{From: "n1", To: "n2"})
//
// [DAG.Sources] and [DAG.Sinks] give the roots and leaves of the graph, and
// [DAG.InDegree] and [DAG.OutDegree] identify merges and forks. Results
// follow insertion order.
//
// # Duplicate Edges
//
// Snapshots store each relation twice (in the parent's child list and the
// child's parent list). [DAG.AddEdge] ignores an edge that already exists so
// both lists can be fed without special casing.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Read-only use of a fully
// built graph from several goroutines is fine.
package dag

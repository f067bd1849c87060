// Package graph provides the serialization types for computed timeline layouts.
//
// This package defines the wire format shared by the layout engine, the
// cache, the HTTP API and the renderers. It holds no layout logic.
//
// # Core Types
//
//   - [Layout]: positioned nodes, edges, unreachable IDs and bounding box
//   - [Node]: one positioned node (the header or a moment)
//   - [Edge]: a directed connection between two positioned nodes
//
// # Constants
//
// This package is the single source of truth for layout vocabulary:
//
//	graph.KindHeader, graph.KindMoment   // node kinds
//	graph.SideRight, graph.SideLeft      // label side
//	graph.RoleNormal, graph.RoleBranch, graph.RoleMerge
//
// Edge IDs follow the "e<source>-<target>" convention; use [EdgeID].
//
// # Layout Serialization
//
//	{
//	  "width": 250, "height": 175,
//	  "nodes": [
//	    {"id": "title", "kind": "header", "x": 25, "y": 10, "label": "About you.", "row": 0},
//	    {"id": "n1", "kind": "moment", "x": 250, "y": 75, "label": "Graduated",
//	     "date": "6/1/19", "side": "right", "role": "normal", "branch_id": "main", "row": 0}
//	  ],
//	  "edges": []
//	}
//
// Common operations:
//
//	l, _ := graph.ReadLayoutFile("layout.json")
//	graph.WriteLayoutFile(l, "copy.json")
//	data, _ := graph.MarshalLayout(l)
//
// [UnmarshalLayout] and [ReadLayoutFile] reject layouts whose edges reference
// absent nodes, so a cached or hand-edited file cannot reach a renderer in a
// broken state.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph

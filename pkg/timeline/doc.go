// Package timeline defines the snapshot a timeline layout is computed from.
//
// A [Snapshot] holds the branches and nodes ("moments") of one user's
// timeline, in the order the graph store returned them. The JSON form uses
// the backend's field names:
//
//	{
//	  "branches": [{"_id": "b1", "name": "branch_main", "root_node": "n1", "is_trunk": true}],
//	  "nodes": [
//	    {"_id": "n1", "title": "Graduated", "branch": "b1", "parents": [], "children": ["n2"], "root": true},
//	    {"_id": "n2", "title": "First job", "branch": "b1", "parents": ["n1"], "children": []}
//	  ]
//	}
//
// # Boundary Checks
//
// Input is checked in two stages. [Decode] rejects payloads that do not match
// the schema (missing IDs, empty references, malformed timestamps).
// [Snapshot.Validate] then checks graph structure: dangling references, root
// mismatches, trunk designation and cycles. Both report errors with codes
// from pkg/errors, so a caller can tell bad input from an internal failure.
//
// # Trunk
//
// The trunk is the branch flagged with IsTrunk. Stores that only know the
// trunk by name call [Snapshot.MarkTrunk] while assembling the snapshot.
package timeline

// Package pkg provides the core libraries for Lifetree timeline layouts.
//
// # Overview
//
// Lifetree turns a personal timeline (moments grouped into branches, linked
// by parent and child references) into positioned nodes and edges that a
// frontend can draw as a tree: the trunk runs down one column and every side
// branch runs down the other, rejoining the trunk at merge moments.
//
// # Architecture
//
// The typical data flow:
//
//	Timeline store (MongoDB, HTTP API or JSON file)
//	         ↓
//	    [store] package (load a snapshot for an owner)
//	         ↓
//	    [timeline] package (decode, validate, index)
//	         ↓
//	    [layout] package (walk trunk and side branches, assign positions)
//	         ↓
//	    [graph] / [render] packages (JSON, DOT, SVG)
//
// [pipeline] runs these stages with caching ([cache]), and [selection]
// resolves a clicked node to the panel shown beside the tree.
//
// # Quick Start
//
//	snap, err := timeline.ReadFile("timeline.json")
//	if err != nil {
//	    return err
//	}
//	snap.MarkTrunk("branch_main")
//	l, err := layout.Compute(snap, layout.Options{})
//
// # Supporting Packages
//
//   - [auth]: JWT access tokens for the HTTP API
//   - [session]: Saved API credentials for the CLI
//   - [config]: TOML configuration with environment overrides
//   - [errors]: Coded errors shared by every layer
//   - [observability]: Hooks for logging and metrics around pipeline stages
//   - [dag]: Generic directed-graph checks used by snapshot validation
//   - [httputil]: Retrying HTTP client used by the API store
//   - [buildinfo]: Version information
//
// [store]: github.com/lifetree/lifetree/pkg/store
// [timeline]: github.com/lifetree/lifetree/pkg/timeline
// [layout]: github.com/lifetree/lifetree/pkg/layout
// [graph]: github.com/lifetree/lifetree/pkg/graph
// [render]: github.com/lifetree/lifetree/pkg/render
// [pipeline]: github.com/lifetree/lifetree/pkg/pipeline
// [cache]: github.com/lifetree/lifetree/pkg/cache
// [selection]: github.com/lifetree/lifetree/pkg/selection
// [auth]: github.com/lifetree/lifetree/pkg/auth
// [session]: github.com/lifetree/lifetree/pkg/session
// [config]: github.com/lifetree/lifetree/pkg/config
// [errors]: github.com/lifetree/lifetree/pkg/errors
// [observability]: github.com/lifetree/lifetree/pkg/observability
// [dag]: github.com/lifetree/lifetree/pkg/dag
// [httputil]: github.com/lifetree/lifetree/pkg/httputil
// [buildinfo]: github.com/lifetree/lifetree/pkg/buildinfo
package pkg

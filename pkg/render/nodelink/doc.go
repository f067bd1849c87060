// Package nodelink renders timeline layouts as node-link diagrams.
//
// # Overview
//
// The layout engine has already decided where every node goes, so this
// package does not ask Graphviz to lay anything out. [ToDOT] pins each node
// at its layout position (pos="x,-y!", inputscale=72) and [RenderSVG] runs
// the neato engine, which honors pinned positions.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// Moments are filled circles colored by role (see pkg/selection). Each label
// is a plaintext node pinned beside its moment: right of trunk moments and
// left of side-branch moments. The header is plain text.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external Graphviz installation is required.
package nodelink

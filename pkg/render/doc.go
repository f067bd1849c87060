// Package render groups the output renderers for computed layouts.
//
// Layouts are rendered to JSON by pkg/graph directly. The [nodelink]
// subpackage produces Graphviz DOT and SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/lifetree/lifetree/pkg/render/nodelink
package render

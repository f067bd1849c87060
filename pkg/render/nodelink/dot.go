package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/selection"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the date below each node label.
	Detailed bool

	// NodeSize is the circle diameter in points. Zero means 18.
	NodeSize float64
}

const (
	defaultNodeSize = 18

	// Moment labels are separate plaintext nodes of this width (points),
	// placed beside the circle on the moment's side.
	labelWidth = 144
	labelGap   = 6
)

// ToDOT converts a layout to Graphviz DOT with every node pinned at its
// layout position. The result must be rendered with the neato engine (see
// [RenderSVG]) for the pins to be honored.
//
// Moments are drawn as circles filled by role. Each moment's label is a
// plaintext node pinned beside it: right of the circle and left-justified
// for the trunk, left of the circle and right-justified for side branches.
// The header is drawn as plain text. Edges keep layout order.
func ToDOT(l graph.Layout, opts Options) string {
	size := opts.NodeSize
	if size <= 0 {
		size = defaultNodeSize
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, width=%s, label=\"\", fontsize=14, color=\"#94a3b8\"];\n",
		fmtFloat(size/72))
	buf.WriteString("  edge [arrowsize=0.6, color=\"#94a3b8\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n), ", "))
		if n.IsHeader() {
			continue
		}
		labelID := n.ID + ":label"
		for ids[labelID] {
			labelID += "_"
		}
		ids[labelID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", labelID, strings.Join(labelAttrs(n, size, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graph.Node) []string {
	attrs := []string{fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X), fmtFloat(-n.Y))}
	if n.IsHeader() {
		return append(attrs, "shape=plaintext", "fixedsize=false", "style=\"\"",
			fmt.Sprintf("label=%q", n.DisplayLabel()), "fontsize=28")
	}

	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", selection.Hex(selection.FillToken(n.Role))))
	if n.Description != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Description))
	}
	return attrs
}

// labelAttrs pins the label node of moment n beside its circle. Lines end
// in \l (left-justified) on the right side and \r (right-justified) on the
// left side, so the text always starts or ends next to the circle.
func labelAttrs(n graph.Node, size float64, detailed bool) []string {
	lines := []string{n.DisplayLabel()}
	if detailed && n.Date != "" {
		lines = append(lines, n.Date)
	}

	offset := size/2 + labelGap + labelWidth/2
	just := `\l`
	if n.Side == graph.SideLeft {
		offset, just = -offset, `\r`
	}

	return []string{
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X+offset), fmtFloat(-n.Y)),
		"shape=plaintext",
		"style=\"\"",
		fmt.Sprintf("width=%s", fmtFloat(labelWidth/72)),
		"height=0.3",
		fmt.Sprintf("label=%s", justifiedLabel(lines, just)),
	}
}

// justifiedLabel quotes lines as a DOT label, ending every line with the
// escape just.
func justifiedLabel(lines []string, just string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, line := range lines {
		line = strings.ReplaceAll(line, `\`, `\\`)
		line = strings.ReplaceAll(line, `"`, `\"`)
		line = strings.ReplaceAll(line, "\n", " ")
		b.WriteString(line)
		b.WriteString(just)
	}
	b.WriteByte('"')
	return b.String()
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG using the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the image scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

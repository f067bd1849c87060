package pipeline

import (
	"context"
	"fmt"

	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/render/nodelink"
)

// RenderFromLayout produces every requested format from l without caching.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	nlOpts := nodelink.Options{Detailed: opts.Detailed, NodeSize: opts.NodeSize}

	var dot string
	toDOT := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(l, nlOpts)
		}
		return dot
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := graph.MarshalLayout(l)
			if err != nil {
				return nil, fmt.Errorf("encode layout: %w", err)
			}
			out[format] = data
		case FormatDOT:
			out[format] = []byte(toDOT())
		case FormatSVG:
			svg, err := nodelink.RenderSVG(ctx, toDOT())
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			out[format] = svg
		}
	}
	return out, nil
}

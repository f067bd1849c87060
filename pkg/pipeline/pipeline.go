// Package pipeline runs the load → layout → render pipeline for lifetree.
//
// The CLI and the HTTP server both go through a [Runner] so that caching,
// option defaults and instrumentation behave the same everywhere.
//
// # Stages
//
//  1. Load: read the owner's snapshot from a graph store
//  2. Layout: validate the snapshot and compute node positions
//  3. Render: produce JSON, DOT or SVG from the layout
//
// Every stage is cached: snapshots by owner, layouts by snapshot hash and
// layout options, artifacts by layout hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Owner:   "6650c0ffee",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Stages can be run on their own:
//
//	snap, err := runner.Load(ctx, opts)
//	l, err := runner.ComputeLayout(ctx, snap, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/cache"
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/layout"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. It decodes from JSON so the server
// can accept it from query parameters or a request body.
type Options struct {
	// Load options
	Owner   string `json:"owner,omitempty"`
	Refresh bool   `json:"refresh,omitempty"` // bypass cached snapshots

	// Layout options. Zero values take the layout package defaults.
	TrunkX      float64 `json:"trunk_x,omitempty"`
	SideX       float64 `json:"side_x,omitempty"`
	RowHeight   float64 `json:"row_height,omitempty"`
	OffsetY     float64 `json:"offset_y,omitempty"`
	HeaderLabel string  `json:"header_label,omitempty"`
	NoHeader    bool    `json:"no_header,omitempty"`
	DateFormat  string  `json:"date_format,omitempty"`
	SideOrder   string  `json:"side_order,omitempty"` // reverse or registration

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	NodeSize float64  `json:"node_size,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Snapshot *timeline.Snapshot

	// SnapshotHash is the content hash of the snapshot, used in cache keys
	// and as an ETag by the server.
	SnapshotHash string

	Layout    graph.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	BranchCount int
	EdgeCount   int
	Unreachable int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // snapshot came from cache
	LayoutHit bool // layout came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list such as "json,svg".
func ParseFormats(s string) ([]string, error) {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			formats = append(formats, f)
		}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// SetRenderDefaults fills in the format list and logger.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions converts the layout fields to engine options.
func (o *Options) LayoutOptions() (layout.Options, error) {
	order, err := layout.ParseSideOrder(o.SideOrder)
	if err != nil {
		return layout.Options{}, err
	}
	opts := layout.Options{
		TrunkX:     o.TrunkX,
		SideX:      o.SideX,
		RowHeight:  o.RowHeight,
		OffsetY:    o.OffsetY,
		Header:     layout.Header{Label: o.HeaderLabel},
		NoHeader:   o.NoHeader,
		DateFormat: o.DateFormat,
		SideOrder:  order,
	}.WithDefaults()
	if err := opts.Validate(); err != nil {
		return layout.Options{}, err
	}
	return opts, nil
}

// LayoutKeyOpts returns cache key options for layout computation. Defaults
// are resolved first so that explicit and implicit defaults share a key.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	lo, err := o.LayoutOptions()
	if err != nil {
		lo = layout.DefaultOptions()
	}
	return cache.LayoutKeyOpts{
		TrunkX:      lo.TrunkX,
		SideX:       lo.SideX,
		RowHeight:   lo.RowHeight,
		OffsetY:     lo.OffsetY,
		HeaderLabel: lo.Header.Label,
		NoHeader:    lo.NoHeader,
		DateFormat:  lo.DateFormat,
		SideOrder:   lo.SideOrder.String(),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		NodeSize: o.NodeSize,
	}
}

package layout

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// Engine computes layouts. The zero value uses default options and discards
// log output. An Engine holds no state between calls and may be shared.
type Engine struct {
	Options Options
	Logger  *log.Logger
}

// Compute lays out snap with opts and no logging. See [Engine.Compute].
func Compute(snap *timeline.Snapshot, opts Options) (graph.Layout, error) {
	return (&Engine{Options: opts}).Compute(snap)
}

// Compute validates snap and returns its layout. A snapshot that fails
// validation yields an error and an empty layout, never a partial one.
func (e *Engine) Compute(snap *timeline.Snapshot) (graph.Layout, error) {
	opts := e.Options.WithDefaults()
	if err := opts.Validate(); err != nil {
		return graph.Layout{}, err
	}
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	start := time.Now()
	ix, err := snap.Index()
	if err != nil {
		return graph.Layout{}, err
	}

	w := newWalker(ix, opts, logger)
	if !opts.NoHeader {
		if _, clash := ix.Node(opts.Header.ID); clash {
			return graph.Layout{}, errors.New(errors.ErrCodeInvalidSnapshot,
				"node ID %s is reserved for the header", opts.Header.ID)
		}
		w.addHeader()
	}
	if ix.NodeCount() > 0 {
		if err := w.run(); err != nil {
			return graph.Layout{}, err
		}
	}

	l := w.finish()
	logger.Debug("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"unreachable", len(l.Unreachable),
		"duration", time.Since(start))
	return l, nil
}

// sideBranches returns the non-trunk branches in walk order.
func sideBranches(ix *timeline.Index, order SideOrder) []*timeline.Branch {
	var out []*timeline.Branch
	for _, b := range ix.Branches() {
		if !b.IsTrunk {
			out = append(out, b)
		}
	}
	if order == ReverseRegistration {
		slices.Reverse(out)
	}
	return out
}

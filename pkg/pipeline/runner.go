package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/cache"
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/layout"
	"github.com/lifetree/lifetree/pkg/observability"
	"github.com/lifetree/lifetree/pkg/store"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// Runner executes the pipeline with caching. It holds no per-run state and
// is safe for concurrent use when its store and cache are.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses the default logger.
// The store may be nil when only ComputeLayout and Render are used.
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	if _, err := opts.LayoutOptions(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	snap, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Snapshot = snap
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(snap.Nodes)
	result.Stats.BranchCount = len(snap.Branches)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded snapshot",
		"owner", opts.Owner,
		"nodes", len(snap.Nodes),
		"branches", len(snap.Branches),
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, hash, layoutHit, err := r.computeLayout(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.SnapshotHash = hash
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.EdgeCount = len(l.Edges)
	result.Stats.Unreachable = len(l.Unreachable)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"positioned", len(l.Moments()),
		"edges", len(l.Edges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads the owner's snapshot, from cache unless
// opts.Refresh is set, and reports whether the cache served it.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*timeline.Snapshot, bool, error) {
	if r.Store == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidConfig, "no graph store configured")
	}
	key := r.Keyer.SnapshotKey(opts.Owner)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if snap, err := timeline.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return snap, true, nil
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "snapshot")

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Owner)
	snap, err := r.Store.Snapshot(ctx, opts.Owner)
	nodeCount := 0
	if snap != nil {
		nodeCount = len(snap.Nodes)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Owner, nodeCount, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := timeline.Marshal(snap); err == nil {
		r.set(ctx, "snapshot", key, data, cache.TTLSnapshot)
	}
	return snap, false, nil
}

// Load is LoadWithCacheInfo without the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*timeline.Snapshot, error) {
	snap, _, err := r.LoadWithCacheInfo(ctx, opts)
	return snap, err
}

// ComputeLayoutWithCacheInfo lays out snap, reusing a cached layout computed
// from an identical snapshot with identical options.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, snap *timeline.Snapshot, opts Options) (graph.Layout, bool, error) {
	l, _, hit, err := r.computeLayout(ctx, snap, opts)
	return l, hit, err
}

// ComputeLayout is ComputeLayoutWithCacheInfo without the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, snap *timeline.Snapshot, opts Options) (graph.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	return l, err
}

func (r *Runner) computeLayout(ctx context.Context, snap *timeline.Snapshot, opts Options) (graph.Layout, string, bool, error) {
	lo, err := opts.LayoutOptions()
	if err != nil {
		return graph.Layout{}, "", false, err
	}
	data, err := timeline.Marshal(snap)
	if err != nil {
		return graph.Layout{}, "", false, fmt.Errorf("serialize snapshot for cache key: %w", err)
	}
	hash := cache.Hash(data)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if cached, err := graph.UnmarshalLayout(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, hash, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(snap.Nodes))
	engine := &layout.Engine{Options: lo, Logger: r.Logger}
	l, err := engine.Compute(snap)
	observability.Pipeline().OnLayoutComplete(ctx, len(l.Moments()), time.Since(start), err)
	if err != nil {
		return graph.Layout{}, hash, false, err
	}

	if data, err := graph.MarshalLayout(l); err == nil {
		r.set(ctx, "layout", key, data, cache.TTLLayout)
	}
	return l, hash, false, nil
}

// RenderWithCacheInfo renders every format in opts.Formats. The cache is
// used only when it holds all of them.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderFromLayout(ctx, l, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Invalidate drops the cached snapshot of owner.
func (r *Runner) Invalidate(ctx context.Context, owner string) error {
	return r.Cache.Delete(ctx, r.Keyer.SnapshotKey(owner))
}

// Close releases the store and the cache.
func (r *Runner) Close() error {
	var err error
	if r.Store != nil {
		err = r.Store.Close()
	}
	if r.Cache != nil {
		if cerr := r.Cache.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

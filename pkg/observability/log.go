package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// warn level. It implements [PipelineHooks], [CacheHooks] and [StoreHooks].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) done(msg string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", d.Round(time.Microsecond))
	if err != nil {
		h.Logger.Warn(msg+" failed", append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, owner string) {
	h.Logger.Debug("loading snapshot", "owner", owner)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, owner string, nodeCount int, d time.Duration, err error) {
	h.done("loaded snapshot", d, err, "owner", owner, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("computing layout", "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, positioned int, d time.Duration, err error) {
	h.done("computed layout", d, err, "positioned", positioned)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("rendering", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("rendered", d, err, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnFetch(_ context.Context, kind, owner string) {
	h.Logger.Debug("fetching from store", "store", kind, "owner", owner)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, kind, owner string, d time.Duration, err error) {
	h.done("fetched from store", d, err, "store", kind, "owner", owner)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
)

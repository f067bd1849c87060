package pipeline

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/cache"
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/timeline"
)

const testSnapshot = `{
  "branches": [
    {"_id": "main", "name": "branch_main", "root_node": "n1", "is_trunk": true},
    {"_id": "side", "name": "sabbatical", "root_node": "s1"}
  ],
  "nodes": [
    {"_id": "n1", "title": "Graduated", "branch": "main", "parents": [], "children": ["n2", "s1"], "root": true, "created_at": "2019-06-01T10:00:00Z"},
    {"_id": "n2", "title": "First job", "branch": "main", "parents": ["n1"], "children": ["n3"]},
    {"_id": "s1", "title": "Travelled", "branch": "side", "parents": ["n1"], "children": ["n3"], "root": true},
    {"_id": "n3", "title": "Back home", "branch": "main", "parents": ["n2", "s1"], "children": []}
  ]
}`

type memStore struct {
	data  string
	calls atomic.Int32
}

func (s *memStore) Snapshot(context.Context, string) (*timeline.Snapshot, error) {
	s.calls.Add(1)
	return timeline.Unmarshal([]byte(s.data))
}

func (s *memStore) Close() error { return nil }

func newTestRunner(t *testing.T, data string) (*Runner, *memStore) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := &memStore{data: data}
	return NewRunner(st, c, nil, log.New(io.Discard)), st
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" JSON, svg ,,dot")
	if err != nil {
		t.Fatalf("ParseFormats() error: %v", err)
	}
	if strings.Join(got, ",") != "json,svg,dot" {
		t.Errorf("ParseFormats() = %v", got)
	}
	if _, err := ParseFormats("json,pdf"); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestLayoutOptions(t *testing.T) {
	opts := Options{SideOrder: "registration", HeaderLabel: "Hello."}
	lo, err := opts.LayoutOptions()
	if err != nil {
		t.Fatalf("LayoutOptions() error: %v", err)
	}
	if lo.TrunkX != 250 || lo.SideX != 150 || lo.Header.Label != "Hello." || lo.Header.X != 25 {
		t.Errorf("defaults not applied: %+v", lo)
	}

	bad := Options{SideOrder: "sideways"}
	if _, err := bad.LayoutOptions(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad side order: %v", err)
	}
	overlap := Options{TrunkX: 100, SideX: 100}
	if _, err := overlap.LayoutOptions(); err == nil {
		t.Error("overlapping columns should fail")
	}
}

func TestLayoutKeyOptsResolvesDefaults(t *testing.T) {
	implicit := Options{}
	explicit := Options{TrunkX: 250, SideX: 150, RowHeight: 100, OffsetY: 75, SideOrder: "reverse"}
	if implicit.LayoutKeyOpts() != explicit.LayoutKeyOpts() {
		t.Error("explicit defaults should share the implicit key")
	}
	other := Options{SideOrder: "registration"}
	if implicit.LayoutKeyOpts() == other.LayoutKeyOpts() {
		t.Error("side order should change the key")
	}
}

func TestExecute(t *testing.T) {
	r, st := newTestRunner(t, testSnapshot)
	ctx := context.Background()
	opts := Options{Owner: "u1", Formats: []string{FormatJSON, FormatDOT}}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Stats.NodeCount != 4 || res.Stats.BranchCount != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run should miss every cache: %+v", res.CacheInfo)
	}
	if res.SnapshotHash == "" {
		t.Error("missing snapshot hash")
	}
	if len(res.Layout.Moments()) != 4 {
		t.Errorf("positioned %d moments, want 4", len(res.Layout.Moments()))
	}

	l, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(l.Nodes) != len(res.Layout.Nodes) {
		t.Errorf("json artifact has %d nodes, layout has %d", len(l.Nodes), len(res.Layout.Nodes))
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `"s1" -> "n3"`) {
		t.Errorf("dot artifact missing closing edge:\n%s", res.Artifacts[FormatDOT])
	}

	// Second run is served from cache.
	res, err = r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !res.CacheInfo.LoadHit || !res.CacheInfo.LayoutHit || !res.CacheInfo.RenderHit {
		t.Errorf("second run should hit every cache: %+v", res.CacheInfo)
	}
	if st.calls.Load() != 1 {
		t.Errorf("store called %d times, want 1", st.calls.Load())
	}

	// Refresh bypasses the snapshot cache only.
	opts.Refresh = true
	res, err = r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if res.CacheInfo.LoadHit || !res.CacheInfo.LayoutHit {
		t.Errorf("refresh cache info = %+v", res.CacheInfo)
	}
	if st.calls.Load() != 2 {
		t.Errorf("store called %d times, want 2", st.calls.Load())
	}
}

func TestExecute_DefaultFormat(t *testing.T) {
	r, _ := newTestRunner(t, testSnapshot)
	res, err := r.Execute(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if _, ok := res.Artifacts[FormatJSON]; !ok || len(res.Artifacts) != 1 {
		t.Errorf("artifacts = %v, want json only", res.Artifacts)
	}
}

func TestExecute_StructuralError(t *testing.T) {
	broken := strings.Replace(testSnapshot, `"children": ["n3"]}`, `"children": ["ghost"]}`, 1)
	r, _ := newTestRunner(t, broken)

	res, err := r.Execute(context.Background(), Options{})
	if res != nil {
		t.Error("no result expected on structural error")
	}
	if !errors.Is(err, errors.ErrCodeDanglingReference) {
		t.Errorf("err = %v, want DANGLING_REFERENCE", err)
	}
}

func TestExecute_InvalidOptions(t *testing.T) {
	r, st := newTestRunner(t, testSnapshot)
	if _, err := r.Execute(context.Background(), Options{Formats: []string{"gif"}}); err == nil {
		t.Error("unsupported format should fail")
	}
	if _, err := r.Execute(context.Background(), Options{SideOrder: "up"}); err == nil {
		t.Error("bad side order should fail")
	}
	if st.calls.Load() != 0 {
		t.Error("store should not be read when options are invalid")
	}
}

func TestLoad_NoStore(t *testing.T) {
	r := NewRunner(nil, nil, nil, log.New(io.Discard))
	if _, err := r.Load(context.Background(), Options{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() without store: %v", err)
	}
}

func TestComputeLayoutAndRender(t *testing.T) {
	r := NewRunner(nil, nil, nil, log.New(io.Discard))
	snap, err := timeline.Unmarshal([]byte(testSnapshot))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	l, err := r.ComputeLayout(ctx, snap, Options{NoHeader: true})
	if err != nil {
		t.Fatalf("ComputeLayout() error: %v", err)
	}
	if _, ok := l.Node("title"); ok {
		t.Error("header present with NoHeader")
	}

	artifacts, err := r.Render(ctx, l, Options{Formats: []string{FormatDOT}, Detailed: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(artifacts[FormatDOT]), `6/1/19`) {
		t.Errorf("detailed dot missing date:\n%s", artifacts[FormatDOT])
	}
}

func TestInvalidate(t *testing.T) {
	r, st := newTestRunner(t, testSnapshot)
	ctx := context.Background()

	r.Load(ctx, Options{Owner: "u1"})
	if err := r.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, hit, _ := r.LoadWithCacheInfo(ctx, Options{Owner: "u1"}); hit {
		t.Error("snapshot still cached after Invalidate")
	}
	if st.calls.Load() != 2 {
		t.Errorf("store called %d times, want 2", st.calls.Load())
	}
}

package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/timeline"
)

const snapshotJSON = `{
  "branches": [
    {"_id": "b1", "name": "branch_main", "user_id": "u1", "root_node": "n1"},
    {"_id": "b2", "name": "travel", "user_id": "u1", "root_node": null}
  ],
  "nodes": [
    {"_id": "n1", "title": "Born", "branch": "b1", "parents": [], "children": ["n2"], "root": true},
    {"_id": "n2", "title": "School", "branch": "b1", "parents": ["n1"], "children": []}
  ]
}`

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, []byte(snapshotJSON), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, "")
	defer s.Close()
	snap, err := s.Snapshot(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if len(snap.Nodes) != 2 || len(snap.Branches) != 2 {
		t.Fatalf("got %d nodes, %d branches", len(snap.Nodes), len(snap.Branches))
	}
	if !snap.Branches[0].IsTrunk {
		t.Error("branch_main should be marked as trunk")
	}
	if err := snap.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestFileStore_Missing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), "")
	if _, err := s.Snapshot(context.Background(), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileStore_CustomTrunkName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	os.WriteFile(path, []byte(snapshotJSON), 0644)

	snap, err := NewFileStore(path, "travel").Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if snap.Branches[0].IsTrunk || !snap.Branches[1].IsTrunk {
		t.Error("trunk should follow the configured name")
	}
}

func TestHTTPStore(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nodes" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(snapshotJSON))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL+"/", "tok", "")
	defer s.Close()
	snap, err := s.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
	if len(snap.Nodes) != 2 || !snap.Branches[0].IsTrunk {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestHTTPStore_StatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
	}{
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{http.StatusNotFound, errors.ErrCodeNotFound},
		{http.StatusInternalServerError, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(tt.status)
		}))

		s := NewHTTPStore(srv.URL, "tok", "")
		s.Attempts, s.Delay = 2, time.Millisecond
		_, err := s.Snapshot(context.Background(), "u1")
		srv.Close()

		if got := errors.GetCode(err); got != tt.code {
			t.Errorf("status %d: code = %q, want %q (err %v)", tt.status, got, tt.code, err)
		}
		wantCalls := int32(1)
		if tt.status >= 500 {
			wantCalls = 2
		}
		if calls.Load() != wantCalls {
			t.Errorf("status %d: %d calls, want %d", tt.status, calls.Load(), wantCalls)
		}
	}
}

func TestHTTPStore_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(snapshotJSON))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "", "")
	s.Attempts, s.Delay = 3, time.Millisecond
	if _, err := s.Snapshot(context.Background(), ""); err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestHTTPStore_InvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes": [{"title": "no id"}]}`))
	}))
	defer srv.Close()

	_, err := NewHTTPStore(srv.URL, "", "").Snapshot(context.Background(), "")
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("err = %v, want INVALID_SNAPSHOT", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Kind: KindFile, Path: "x.json"})
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T", s)
	}

	s, err = Open(ctx, Options{Kind: KindHTTP, APIURL: "http://api"})
	if err != nil {
		t.Fatalf("Open(http) error: %v", err)
	}
	if _, ok := s.(*HTTPStore); !ok {
		t.Errorf("Open(http) = %T", s)
	}

	if _, err := Open(ctx, Options{Kind: KindMongo}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(mongo) without uri: %v", err)
	}
	if _, err := Open(ctx, Options{Kind: KindFile}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(file) without path: %v", err)
	}
	if _, err := Open(ctx, Options{Kind: KindHTTP, APIURL: "ftp://api"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(http) with ftp url: %v", err)
	}
	if _, err := Open(ctx, Options{Kind: "sqlite"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(sqlite): %v", err)
	}
}

func TestMongoDocuments(t *testing.T) {
	branchID := primitive.NewObjectID()
	rootID := primitive.NewObjectID()
	childID := primitive.NewObjectID()
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	raw, err := bson.Marshal(bson.M{
		"_id":         rootID,
		"title":       "Started university",
		"branch":      branchID.Hex(),
		"user_id":     "u1",
		"parents":     bson.A{},
		"children":    bson.A{childID.Hex()},
		"sources":     bson.A{bson.M{"kind": "email", "item": "m-1"}},
		"created_at":  created,
		"occurred_at": nil,
		"root":        true,
	})
	if err != nil {
		t.Fatal(err)
	}
	var nd nodeDoc
	if err := bson.Unmarshal(raw, &nd); err != nil {
		t.Fatalf("unmarshal node: %v", err)
	}
	n := nd.toNode()

	if n.ID != rootID.Hex() || n.BranchID != branchID.Hex() {
		t.Errorf("ids not converted: %+v", n)
	}
	if len(n.ChildIDs) != 1 || n.ChildIDs[0] != childID.Hex() || len(n.ParentIDs) != 0 {
		t.Errorf("references = %v / %v", n.ParentIDs, n.ChildIDs)
	}
	if !n.CreatedAt.Equal(created) || n.OccurredAt != nil {
		t.Errorf("timestamps = %v / %v", n.CreatedAt, n.OccurredAt)
	}
	if len(n.Sources) != 1 || n.Sources[0] != (timeline.Source{Kind: "email", Item: "m-1"}) {
		t.Errorf("sources = %+v", n.Sources)
	}
	if !n.IsRoot {
		t.Error("root flag lost")
	}

	raw, _ = bson.Marshal(bson.M{"_id": branchID, "name": "branch_main", "user_id": "u1", "root_node": nil})
	var bd branchDoc
	if err := bson.Unmarshal(raw, &bd); err != nil {
		t.Fatalf("unmarshal branch: %v", err)
	}
	b := bd.toBranch()
	if b.ID != branchID.Hex() || b.RootNodeID != nil {
		t.Errorf("branch = %+v", b)
	}

	raw, _ = bson.Marshal(bson.M{"_id": "legacy", "name": "x", "root_node": rootID})
	bd = branchDoc{}
	bson.Unmarshal(raw, &bd)
	if b := bd.toBranch(); b.ID != "legacy" || b.RootNodeID == nil || *b.RootNodeID != rootID.Hex() {
		t.Errorf("legacy branch = %+v", b)
	}
}

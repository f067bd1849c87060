package store

import (
	"context"
	"time"

	"github.com/lifetree/lifetree/pkg/observability"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// FileStore reads a snapshot JSON file. The owner argument is ignored.
type FileStore struct {
	Path      string
	TrunkName string
}

// NewFileStore returns a store reading path.
func NewFileStore(path, trunkName string) *FileStore {
	return &FileStore{Path: path, TrunkName: trunkName}
}

// Snapshot re-reads the file on every call.
func (s *FileStore) Snapshot(ctx context.Context, owner string) (*timeline.Snapshot, error) {
	start := time.Now()
	observability.Store().OnFetch(ctx, KindFile, owner)
	snap, err := timeline.ReadFile(s.Path)
	return finish(ctx, KindFile, owner, start, snap, s.TrunkName, err)
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

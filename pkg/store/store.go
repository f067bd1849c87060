// Package store reads timeline snapshots from the places they live.
//
// A [Store] returns the branches and nodes owned by one user as a
// [timeline.Snapshot]. Three backends are provided:
//
//   - [MongoStore]: the production database (collections branches and nodes)
//   - [HTTPStore]: the backend API's bearer-protected GET /nodes endpoint
//   - [FileStore]: a snapshot JSON file on disk
//
// Every backend schema-checks what it read and flags the trunk branch by
// name when the data does not already carry a trunk flag. Structural
// validation is left to the layout engine.
package store

import (
	"context"
	"time"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/observability"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// Store backend kinds, as named in configuration.
const (
	KindMongo = "mongo"
	KindHTTP  = "http"
	KindFile  = "file"
)

// Store returns snapshots by owner.
type Store interface {
	// Snapshot returns every branch and node owned by owner, in registration
	// order. Backends that hold a single timeline ignore owner.
	Snapshot(ctx context.Context, owner string) (*timeline.Snapshot, error)

	// Close releases connections held by the store.
	Close() error
}

// finish applies the checks shared by every backend and reports the fetch
// to the store hooks.
func finish(ctx context.Context, kind, owner string, start time.Time, snap *timeline.Snapshot, trunkName string, err error) (*timeline.Snapshot, error) {
	if err == nil {
		if trunkName == "" {
			trunkName = timeline.DefaultTrunkName
		}
		snap.MarkTrunk(trunkName)
		err = timeline.CheckSchema(snap)
	}
	observability.Store().OnFetchComplete(ctx, kind, owner, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ValidKind reports whether kind names a known backend.
func ValidKind(kind string) bool {
	switch kind {
	case KindMongo, KindHTTP, KindFile:
		return true
	}
	return false
}

func unknownKind(kind string) error {
	return errors.New(errors.ErrCodeInvalidConfig, "unknown store kind %q (want mongo, http or file)", kind)
}

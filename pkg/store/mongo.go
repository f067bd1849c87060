package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/observability"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// Collection names and the default database of the backend.
const (
	DefaultDatabase    = "production"
	BranchesCollection = "branches"
	NodesCollection    = "nodes"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI       string
	Database  string // default "production"
	TrunkName string // default "branch_main"
}

// MongoStore reads snapshots from the backend's MongoDB database.
type MongoStore struct {
	client    *mongo.Client
	db        *mongo.Database
	trunkName string
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo store: uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongo ping")
	}
	return NewMongoStoreFromClient(client, opts.Database, opts.TrunkName), nil
}

// NewMongoStoreFromClient wraps an existing client. Close disconnects it.
func NewMongoStoreFromClient(client *mongo.Client, database, trunkName string) *MongoStore {
	if database == "" {
		database = DefaultDatabase
	}
	return &MongoStore{client: client, db: client.Database(database), trunkName: trunkName}
}

// Snapshot reads the owner's branches and nodes, both sorted by _id so that
// branch order matches registration order.
func (s *MongoStore) Snapshot(ctx context.Context, owner string) (*timeline.Snapshot, error) {
	start := time.Now()
	observability.Store().OnFetch(ctx, KindMongo, owner)

	snap, err := s.read(ctx, owner)
	return finish(ctx, KindMongo, owner, start, snap, s.trunkName, err)
}

func (s *MongoStore) read(ctx context.Context, owner string) (*timeline.Snapshot, error) {
	var branches []branchDoc
	if err := s.find(ctx, BranchesCollection, owner, &branches); err != nil {
		return nil, err
	}
	var nodes []nodeDoc
	if err := s.find(ctx, NodesCollection, owner, &nodes); err != nil {
		return nil, err
	}

	snap := &timeline.Snapshot{
		Branches: make([]timeline.Branch, 0, len(branches)),
		Nodes:    make([]timeline.Node, 0, len(nodes)),
	}
	for _, b := range branches {
		snap.Branches = append(snap.Branches, b.toBranch())
	}
	for _, n := range nodes {
		snap.Nodes = append(snap.Nodes, n.toNode())
	}
	return snap, nil
}

func (s *MongoStore) find(ctx context.Context, coll, owner string, out any) error {
	filter := bson.D{{Key: "user_id", Value: owner}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "query %s", coll)
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", coll)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

// =============================================================================
// Documents
// =============================================================================

// branchDoc and nodeDoc mirror the backend's documents. Identifiers are
// usually ObjectIDs but older documents store them as strings.
type branchDoc struct {
	ID       bson.RawValue `bson:"_id"`
	Name     string        `bson:"name"`
	UserID   string        `bson:"user_id"`
	RootNode bson.RawValue `bson:"root_node"`
	IsTrunk  bool          `bson:"is_trunk"`
}

type sourceDoc struct {
	Kind string        `bson:"kind"`
	Item bson.RawValue `bson:"item"`
}

type nodeDoc struct {
	ID          bson.RawValue   `bson:"_id"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Branch      bson.RawValue   `bson:"branch"`
	UserID      string          `bson:"user_id"`
	Parents     []bson.RawValue `bson:"parents"`
	Children    []bson.RawValue `bson:"children"`
	Sources     []sourceDoc     `bson:"sources"`
	CreatedAt   *time.Time      `bson:"created_at"`
	UpdatedAt   *time.Time      `bson:"updated_at"`
	OccurredAt  *time.Time      `bson:"occurred_at"`
	Root        bool            `bson:"root"`
}

func (d branchDoc) toBranch() timeline.Branch {
	b := timeline.Branch{
		ID:      idString(d.ID),
		Name:    d.Name,
		Owner:   d.UserID,
		IsTrunk: d.IsTrunk,
	}
	if root := idString(d.RootNode); root != "" {
		b.RootNodeID = &root
	}
	return b
}

func (d nodeDoc) toNode() timeline.Node {
	n := timeline.Node{
		ID:          idString(d.ID),
		Title:       d.Title,
		Description: d.Description,
		BranchID:    idString(d.Branch),
		Owner:       d.UserID,
		ParentIDs:   idStrings(d.Parents),
		ChildIDs:    idStrings(d.Children),
		IsRoot:      d.Root,
	}
	for _, src := range d.Sources {
		n.Sources = append(n.Sources, timeline.Source{Kind: src.Kind, Item: idString(src.Item)})
	}
	if d.CreatedAt != nil {
		n.CreatedAt = timeline.NewTimestamp(d.CreatedAt.UTC())
	}
	if d.UpdatedAt != nil {
		n.UpdatedAt = timeline.NewTimestamp(d.UpdatedAt.UTC())
	}
	if d.OccurredAt != nil {
		ts := timeline.NewTimestamp(d.OccurredAt.UTC())
		n.OccurredAt = &ts
	}
	return n
}

// idString renders an identifier field as the hex or string form the API
// uses. Missing and null values give "".
func idString(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	case bsontype.Int32:
		return fmt.Sprint(v.Int32())
	case bsontype.Int64:
		return fmt.Sprint(v.Int64())
	default:
		return ""
	}
}

func idStrings(vs []bson.RawValue) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, idString(v))
	}
	return out
}

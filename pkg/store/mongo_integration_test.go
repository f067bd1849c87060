//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("LIFETREE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LIFETREE_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := "lifetree_test_" + primitive.NewObjectID().Hex()
	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: db})
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer s.Close()
	defer s.db.Drop(context.Background())

	branchID := primitive.NewObjectID()
	rootID := primitive.NewObjectID()
	if _, err := s.db.Collection(BranchesCollection).InsertOne(ctx, bson.M{
		"_id": branchID, "name": "branch_main", "user_id": "u1", "root_node": rootID.Hex(),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Collection(NodesCollection).InsertOne(ctx, bson.M{
		"_id": rootID, "title": "Born", "branch": branchID.Hex(), "user_id": "u1",
		"parents": bson.A{}, "children": bson.A{}, "root": true,
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if len(snap.Nodes) != 1 || !snap.Branches[0].IsTrunk {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if err := snap.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	other, err := s.Snapshot(ctx, "someone-else")
	if err != nil || !other.Empty() {
		t.Errorf("other owner snapshot = %+v, %v", other, err)
	}
}

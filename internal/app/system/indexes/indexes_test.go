package indexes_test

import (
	"testing"

	"github.com/dalemusser/ideahub/internal/app/system/indexes"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesUniqueIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		coll string
		name string
	}{
		{"groups", "uniq_groups_invite_code"},
		{"group_members", "uniq_gm_group_user"},
		{"join_requests", "uniq_jr_group_user"},
		{"idea_votes", "uniq_votes_idea_user"},
		{"group_ideas", "idx_gideas_group_created"},
		{"notifications", "idx_notifications_user_created"},
	}
	for _, tt := range tests {
		t.Run(tt.coll+"/"+tt.name, func(t *testing.T) {
			if !indexNames(t, db, tt.coll)[tt.name] {
				t.Errorf("expected index %s on %s", tt.name, tt.coll)
			}
		})
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same key pattern as uniq_gm_group_user but under another name.
	_, err := db.Collection("group_members").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: nil,
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	names := indexNames(t, db, "group_members")
	if !names["uniq_gm_group_user"] {
		t.Error("expected uniq_gm_group_user after reconcile")
	}
	if names["group_id_1_user_id_1"] {
		t.Error("expected default-named index to be replaced")
	}
}

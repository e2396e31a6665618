package groupideastore_test

import (
	"errors"
	"testing"

	groupideastore "github.com/dalemusser/ideahub/internal/app/store/groupideas"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_ReplaceFeaturesCompareAndSwap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := groupideastore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gi := fixtures.CreateGroupIdea(ctx, primitive.NewObjectID(), "u1", "Dark mode")

	features := []models.Feature{{ID: "f1", Name: "Toggle", Priority: "medium", Status: "todo", Votes: []string{}}}
	ok, err := store.ReplaceFeatures(ctx, gi.ID, gi.Version, features)
	if err != nil || !ok {
		t.Fatalf("ReplaceFeatures at current version = %v, %v; want ok", ok, err)
	}

	// The version moved on, so a writer holding the old one loses.
	ok, err = store.ReplaceFeatures(ctx, gi.ID, gi.Version, nil)
	if err != nil || ok {
		t.Errorf("ReplaceFeatures at stale version = %v, %v; want !ok, nil", ok, err)
	}

	got, err := store.GetByID(ctx, gi.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Version != gi.Version+1 {
		t.Errorf("Version = %d, want %d", got.Version, gi.Version+1)
	}
	if len(got.Features) != 1 || got.Features[0].ID != "f1" {
		t.Errorf("Features = %+v, want the swapped-in feature", got.Features)
	}
}

func TestStore_CommentCountNeverNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := groupideastore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gi := fixtures.CreateGroupIdea(ctx, primitive.NewObjectID(), "u1", "Idea")

	if err := store.IncCommentCount(ctx, gi.ID, 1); err != nil {
		t.Fatalf("IncCommentCount(+1) failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.IncCommentCount(ctx, gi.ID, -1); err != nil {
			t.Fatalf("IncCommentCount(-1) failed: %v", err)
		}
	}
	got, _ := store.GetByID(ctx, gi.ID)
	if got.CommentCount != 0 {
		t.Errorf("CommentCount = %d, want 0", got.CommentCount)
	}

	if swapped, err := store.SetCommentCount(ctx, gi.ID, 1, 9); err != nil || swapped {
		t.Errorf("stale SetCommentCount = %v, %v; want not swapped", swapped, err)
	}
	if swapped, err := store.SetCommentCount(ctx, gi.ID, 0, 7); err != nil || !swapped {
		t.Fatalf("SetCommentCount = %v, %v; want swapped", swapped, err)
	}
	got, _ = store.GetByID(ctx, gi.ID)
	if got.CommentCount != 7 {
		t.Errorf("CommentCount after set = %d, want 7", got.CommentCount)
	}
	if _, err := store.SetCommentCount(ctx, primitive.NewObjectID(), 0, 1); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("SetCommentCount on missing idea: got %v, want ErrNoDocuments", err)
	}
}

func TestStore_ApproveAndDeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := groupideastore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	a := fixtures.CreateGroupIdea(ctx, groupID, "u1", "A")
	fixtures.CreateGroupIdea(ctx, groupID, "u2", "B")
	fixtures.CreateGroupIdea(ctx, primitive.NewObjectID(), "u3", "Elsewhere")

	if err := store.Approve(ctx, a.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := store.Approve(ctx, a.ID); err != nil {
		t.Errorf("second Approve failed: %v", err)
	}
	if err := store.Approve(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Approve missing: got %v, want ErrNoDocuments", err)
	}

	ideas, err := store.ListByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("ListByGroup returned %d, want 2", len(ideas))
	}

	n, err := store.DeleteByGroup(ctx, groupID)
	if err != nil || n != 2 {
		t.Errorf("DeleteByGroup = %d, %v; want 2", n, err)
	}
	all, _ := store.ListIDs(ctx)
	if len(all) != 1 {
		t.Errorf("ListIDs after delete = %d ids, want 1", len(all))
	}
}

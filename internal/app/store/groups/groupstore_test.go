package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/ideahub/internal/app/store/groups"
	"github.com/dalemusser/ideahub/internal/app/system/indexes"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Team Ä", "u-owner", "ABCD-1234")

	got, err := store.GetByInviteCode(ctx, "ABCD-1234")
	if err != nil {
		t.Fatalf("GetByInviteCode failed: %v", err)
	}
	if got.ID != g.ID {
		t.Errorf("ID: got %v, want %v", got.ID, g.ID)
	}
	if got.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if !got.HasMember("u-owner") || got.MemberCount != 1 {
		t.Errorf("member set = %v (%d), want owner only", got.MemberIDs, got.MemberCount)
	}

	if _, err := store.GetByInviteCode(ctx, "ZZZZ-9999"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("unknown code: got %v, want ErrNoDocuments", err)
	}

	groups, err := store.ListByMember(ctx, "u-owner")
	if err != nil {
		t.Fatalf("ListByMember failed: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("ListByMember returned %d groups, want 1", len(groups))
	}
}

func TestStore_DuplicateInviteCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fixtures := testutil.NewFixtures(t, db)
	store := groupstore.New(db)

	fixtures.CreateGroup(ctx, "A", "u1", "AAAA-0000")
	err := store.Create(ctx, models.Group{ID: primitive.NewObjectID(), Name: "B", OwnerID: "u2", InviteCode: "AAAA-0000"})
	if !errors.Is(err, groupstore.ErrDuplicateInviteCode) {
		t.Errorf("Create: got %v, want ErrDuplicateInviteCode", err)
	}

	other := fixtures.CreateGroup(ctx, "C", "u3", "CCCC-0000")
	if err := store.SetInviteCode(ctx, other.ID, "AAAA-0000"); !errors.Is(err, groupstore.ErrDuplicateInviteCode) {
		t.Errorf("SetInviteCode: got %v, want ErrDuplicateInviteCode", err)
	}
}

func TestStore_AddRemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Team", "u-owner", "TEAM-0001")

	added, err := store.AddMember(ctx, g.ID, "u1", 2)
	if err != nil || !added {
		t.Fatalf("AddMember(u1) = %v, %v; want added", added, err)
	}

	// Already counted: no double increment.
	added, err = store.AddMember(ctx, g.ID, "u1", 2)
	if err != nil || added {
		t.Errorf("second AddMember(u1) = %v, %v; want not added, nil", added, err)
	}

	if _, err := store.AddMember(ctx, g.ID, "u2", 2); !errors.Is(err, groupstore.ErrGroupFull) {
		t.Errorf("AddMember over cap: got %v, want ErrGroupFull", err)
	}

	if _, err := store.AddMember(ctx, primitive.NewObjectID(), "u1", 2); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("AddMember on missing group: got %v, want ErrNoDocuments", err)
	}

	removed, err := store.RemoveMember(ctx, g.ID, "u1")
	if err != nil || !removed {
		t.Fatalf("RemoveMember(u1) = %v, %v; want removed", removed, err)
	}
	removed, err = store.RemoveMember(ctx, g.ID, "u1")
	if err != nil || removed {
		t.Errorf("second RemoveMember(u1) = %v, %v; want no-op", removed, err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.MemberCount != 1 || len(got.MemberIDs) != 1 {
		t.Errorf("after churn: count=%d ids=%v, want owner only", got.MemberCount, got.MemberIDs)
	}
}

func TestStore_SetMembersAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Team", "u-owner", "TEAM-0002")
	swapped, err := store.SetMembers(ctx, g.ID, g.MemberIDs, g.MemberCount, []string{"u-owner", "u1", "u2"})
	if err != nil || !swapped {
		t.Fatalf("SetMembers = %v, %v; want swapped", swapped, err)
	}
	got, _ := store.GetByID(ctx, g.ID)
	if got.MemberCount != 3 {
		t.Errorf("MemberCount = %d, want 3", got.MemberCount)
	}

	// A write based on the old read must not land.
	swapped, err = store.SetMembers(ctx, g.ID, g.MemberIDs, g.MemberCount, []string{"u-owner"})
	if err != nil || swapped {
		t.Errorf("stale SetMembers = %v, %v; want not swapped", swapped, err)
	}
	got, _ = store.GetByID(ctx, g.ID)
	if got.MemberCount != 3 || len(got.MemberIDs) != 3 {
		t.Errorf("after stale write: count=%d ids=%v, want 3 members", got.MemberCount, got.MemberIDs)
	}

	if _, err := store.SetMembers(ctx, primitive.NewObjectID(), nil, 0, nil); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("SetMembers on missing group: got %v, want ErrNoDocuments", err)
	}

	n, err := store.Delete(ctx, g.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v; want 1", n, err)
	}
	ids, err := store.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDs after delete = %v, want empty", ids)
	}
}

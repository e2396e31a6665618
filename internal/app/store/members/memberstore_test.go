package memberstore_test

import (
	"errors"
	"testing"
	"time"

	memberstore "github.com/dalemusser/ideahub/internal/app/store/members"
	"github.com/dalemusser/ideahub/internal/app/system/indexes"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_RowLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fixtures := testutil.NewFixtures(t, db)
	store := memberstore.New(db)

	g := fixtures.CreateGroup(ctx, "Team", "u-owner", "ROWS-0001")
	m := models.GroupMember{GroupID: g.ID, UserID: "u1", UserName: "One", Role: models.RoleMember, JoinedAt: time.Now().UTC()}
	if err := store.Create(ctx, m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(ctx, m); !errors.Is(err, memberstore.ErrDuplicateMember) {
		t.Errorf("duplicate Create: got %v, want ErrDuplicateMember", err)
	}

	if err := store.UpdateRole(ctx, g.ID, "u1", models.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	got, err := store.Get(ctx, g.ID, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, models.RoleAdmin)
	}

	rows, err := store.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("ListByGroup returned %d rows, want 2", len(rows))
	}

	if n, _ := store.Remove(ctx, g.ID, "u1"); n != 1 {
		t.Errorf("Remove = %d, want 1", n)
	}
	if _, err := store.Get(ctx, g.ID, "u1"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Get after Remove: got %v, want ErrNoDocuments", err)
	}
	if n, _ := store.DeleteByGroup(ctx, g.ID); n != 1 {
		t.Errorf("DeleteByGroup = %d, want 1 (owner row)", n)
	}
}

package testutil

import (
	"context"
	"testing"
	"time"

	groupstore "github.com/dalemusser/ideahub/internal/app/store/groups"
	groupideastore "github.com/dalemusser/ideahub/internal/app/store/groupideas"
	memberstore "github.com/dalemusser/ideahub/internal/app/store/members"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data in a real database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser mirrors a directory entry.
func (f *Fixtures) CreateUser(ctx context.Context, id, name, email string) models.User {
	f.t.Helper()
	u, err := userstore.New(f.db).Upsert(ctx, models.User{ID: id, DisplayName: name, Email: email})
	if err != nil {
		f.t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateGroup writes a group whose only member is its owner, with a
// matching owner row.
func (f *Fixtures) CreateGroup(ctx context.Context, name, ownerID, inviteCode string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		OwnerID:     ownerID,
		OwnerName:   "Owner " + ownerID,
		InviteCode:  inviteCode,
		CreatedAt:   now,
		MemberCount: 1,
		MemberIDs:   []string{ownerID},
	}
	if err := groupstore.New(f.db).Create(ctx, g); err != nil {
		f.t.Fatalf("CreateGroup: %v", err)
	}
	if err := memberstore.New(f.db).Create(ctx, models.GroupMember{
		GroupID:  g.ID,
		UserID:   ownerID,
		UserName: g.OwnerName,
		Role:     models.RoleOwner,
		JoinedAt: now,
	}); err != nil {
		f.t.Fatalf("CreateGroup owner row: %v", err)
	}
	return g
}

// CreateGroupIdea writes an idea with the given features.
func (f *Fixtures) CreateGroupIdea(ctx context.Context, groupID primitive.ObjectID, authorID, name string, features ...models.Feature) models.GroupIdea {
	f.t.Helper()

	gi := models.GroupIdea{
		ID:         primitive.NewObjectID(),
		GroupID:    groupID,
		Name:       name,
		AuthorID:   authorID,
		AuthorName: "Author " + authorID,
		CreatedAt:  time.Now().UTC(),
		Features:   features,
	}
	if err := groupideastore.New(f.db).Create(ctx, gi); err != nil {
		f.t.Fatalf("CreateGroupIdea: %v", err)
	}
	if gi.Features == nil {
		gi.Features = []models.Feature{}
	}
	return gi
}

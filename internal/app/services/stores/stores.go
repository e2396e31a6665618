// Package stores declares the persistence capabilities the core services
// depend on. The Mongo-backed stores under internal/app/store satisfy them;
// internal/testutil/memstore provides an in-memory implementation.
//
// Stores return raw errors: mongo.ErrNoDocuments for a missing row and the
// store package sentinels (ErrGroupFull, ErrDuplicateMember, ...) for
// rejected conditional writes. Services translate them with apperr.
package stores

import (
	"context"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Groups interface {
	Create(ctx context.Context, g models.Group) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	GetByInviteCode(ctx context.Context, code string) (models.Group, error)
	ListByMember(ctx context.Context, userID string) ([]models.Group, error)
	ListIDs(ctx context.Context) ([]primitive.ObjectID, error)
	SetInviteCode(ctx context.Context, id primitive.ObjectID, code string) error
	// AddMember is the conditional counter update: it adds userID and
	// increments member_count only if userID is absent and the group is
	// below max. See groupstore.Store.AddMember for the result contract.
	AddMember(ctx context.Context, id primitive.ObjectID, userID string, max int) (bool, error)
	RemoveMember(ctx context.Context, id primitive.ObjectID, userID string) (bool, error)
	// SetMembers replaces member_ids and member_count only while they still
	// hold seenIDs and seenCount. swapped=false means another write got there
	// first and the caller should re-read.
	SetMembers(ctx context.Context, id primitive.ObjectID, seenIDs []string, seenCount int, userIDs []string) (swapped bool, err error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type Members interface {
	Create(ctx context.Context, m models.GroupMember) error
	Get(ctx context.Context, groupID primitive.ObjectID, userID string) (models.GroupMember, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMember, error)
	UpdateRole(ctx context.Context, groupID primitive.ObjectID, userID, role string) error
	Remove(ctx context.Context, groupID primitive.ObjectID, userID string) (int64, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

type JoinRequests interface {
	Create(ctx context.Context, r models.JoinRequest) error
	Get(ctx context.Context, groupID primitive.ObjectID, userID string) (models.JoinRequest, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.JoinRequest, error)
	Delete(ctx context.Context, groupID primitive.ObjectID, userID string) (int64, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

type Invites interface {
	Upsert(ctx context.Context, inv models.GroupInvite) error
	Get(ctx context.Context, id string) (models.GroupInvite, error)
	ListForUser(ctx context.Context, userID string) ([]models.GroupInvite, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

type GroupIdeas interface {
	Create(ctx context.Context, gi models.GroupIdea) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupIdea, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupIdea, error)
	ListIDsByGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error)
	ListIDs(ctx context.Context) ([]primitive.ObjectID, error)
	Approve(ctx context.Context, id primitive.ObjectID) error
	// ReplaceFeatures is a compare-and-swap on the idea's version.
	ReplaceFeatures(ctx context.Context, id primitive.ObjectID, expectedVersion int64, features []models.Feature) (bool, error)
	IncCommentCount(ctx context.Context, id primitive.ObjectID, delta int) error
	// SetCommentCount is the compare-and-swap form of the counter write.
	SetCommentCount(ctx context.Context, id primitive.ObjectID, seen, n int) (swapped bool, err error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

type Votes interface {
	Upsert(ctx context.Context, v models.Vote) error
	Get(ctx context.Context, ideaID primitive.ObjectID, userID string) (models.Vote, error)
	ListByIdea(ctx context.Context, ideaID primitive.ObjectID) ([]models.Vote, error)
	Delete(ctx context.Context, ideaID primitive.ObjectID, userID string) (int64, error)
	DeleteByIdeas(ctx context.Context, ideaIDs []primitive.ObjectID) (int64, error)
}

type Comments interface {
	Create(ctx context.Context, c models.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	ListByIdea(ctx context.Context, ideaID primitive.ObjectID) ([]models.Comment, error)
	CountByIdea(ctx context.Context, ideaID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	DeleteByIdeas(ctx context.Context, ideaIDs []primitive.ObjectID) (int64, error)
}

// Users is the user directory mirrored from the identity provider.
type Users interface {
	Upsert(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByDisplayName(ctx context.Context, name string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Ideas is the personal idea store.
type Ideas interface {
	Create(ctx context.Context, idea models.Idea) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Idea, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Idea, error)
	ListPublic(ctx context.Context, limit int64) ([]models.Idea, error)
}

type Notifications interface {
	Insert(ctx context.Context, n models.Notification) error
	ListForUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

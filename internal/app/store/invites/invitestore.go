// internal/app/store/invites/invitestore.go
package invitestore

import (
	"context"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_invites")}
}

// Upsert writes the invite under its deterministic key. Re-inviting the same
// user overwrites the previous pending invite instead of adding another.
func (s *Store) Upsert(ctx context.Context, inv models.GroupInvite) error {
	if inv.ID == "" {
		inv.ID = models.InviteKey(inv.GroupID, inv.InvitedUserID)
	}
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Get(ctx context.Context, id string) (models.GroupInvite, error) {
	var inv models.GroupInvite
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return models.GroupInvite{}, err
	}
	return inv, nil
}

// ListForUser returns the pending invites addressed to userID, newest first.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.GroupInvite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"invited_user_id": userID, "status": models.InvitePending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupInvite
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

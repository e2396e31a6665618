// internal/app/store/joinrequests/requeststore.go
package requeststore

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateRequest is returned when the user already has a pending request.
var ErrDuplicateRequest = errors.New("join request already pending")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("join_requests")}
}

func (s *Store) Create(ctx context.Context, r models.JoinRequest) error {
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateRequest
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, groupID primitive.ObjectID, userID string) (models.JoinRequest, error) {
	var r models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&r); err != nil {
		return models.JoinRequest{}, err
	}
	return r, nil
}

// ListByGroup returns pending requests for a group, oldest first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.JoinRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID, "status": models.JoinRequestPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, groupID primitive.ObjectID, userID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
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

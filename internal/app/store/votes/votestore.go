// internal/app/store/votes/votestore.go
package votestore

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
	return &Store{c: db.Collection("idea_votes")}
}

// Upsert writes the caller's rating, replacing any earlier one.
func (s *Store) Upsert(ctx context.Context, v models.Vote) error {
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"idea_id": v.IdeaID, "user_id": v.UserID},
		v,
		options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Get(ctx context.Context, ideaID primitive.ObjectID, userID string) (models.Vote, error) {
	var v models.Vote
	if err := s.c.FindOne(ctx, bson.M{"idea_id": ideaID, "user_id": userID}).Decode(&v); err != nil {
		return models.Vote{}, err
	}
	return v, nil
}

func (s *Store) ListByIdea(ctx context.Context, ideaID primitive.ObjectID) ([]models.Vote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"idea_id": ideaID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Vote
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, ideaID primitive.ObjectID, userID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"idea_id": ideaID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteByIdeas(ctx context.Context, ideaIDs []primitive.ObjectID) (int64, error) {
	if len(ideaIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"idea_id": bson.M{"$in": ideaIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

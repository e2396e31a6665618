// internal/app/store/ideas/ideastore.go
package ideastore

import (
	"context"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists personal ideas.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ideas")}
}

func (s *Store) Create(ctx context.Context, idea models.Idea) error {
	_, err := s.c.InsertOne(ctx, idea)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Idea, error) {
	var idea models.Idea
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&idea); err != nil {
		return models.Idea{}, err
	}
	return idea, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.Idea, error) {
	return s.find(ctx, bson.M{"owner_id": ownerID}, 0)
}

// ListPublic returns the most recent public ideas. limit <= 0 means 50.
func (s *Store) ListPublic(ctx context.Context, limit int64) ([]models.Idea, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.find(ctx, bson.M{"is_public": true}, limit)
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Idea, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Idea
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

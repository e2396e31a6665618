// internal/app/store/comments/commentstore.go
package commentstore

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
	return &Store{c: db.Collection("idea_comments")}
}

func (s *Store) Create(ctx context.Context, c models.Comment) error {
	_, err := s.c.InsertOne(ctx, c)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var c models.Comment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListByIdea returns the comments on an idea, oldest first.
func (s *Store) ListByIdea(ctx context.Context, ideaID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"idea_id": ideaID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountByIdea(ctx context.Context, ideaID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"idea_id": ideaID})
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
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

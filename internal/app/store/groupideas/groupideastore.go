// internal/app/store/groupideas/groupideastore.go
package groupideastore

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
	return &Store{c: db.Collection("group_ideas")}
}

func (s *Store) Create(ctx context.Context, gi models.GroupIdea) error {
	if gi.Features == nil {
		gi.Features = []models.Feature{}
	}
	_, err := s.c.InsertOne(ctx, gi)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupIdea, error) {
	var gi models.GroupIdea
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&gi); err != nil {
		return models.GroupIdea{}, err
	}
	return gi, nil
}

// ListByGroup returns a group's ideas, newest first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupIdea, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupIdea
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListIDsByGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// Approve sets is_approved. Approving twice is harmless.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_approved": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ReplaceFeatures swaps the features array only if the stored version still
// equals expectedVersion, bumping the version on success. ok=false means
// another writer got there first and the caller should re-read.
func (s *Store) ReplaceFeatures(ctx context.Context, id primitive.ObjectID, expectedVersion int64, features []models.Feature) (bool, error) {
	if features == nil {
		features = []models.Feature{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{
			"$set": bson.M{"features": features},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) IncCommentCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["comment_count"] = bson.M{"$gte": -delta}
	}
	_, err := s.c.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"comment_count": delta}})
	return err
}

// SetCommentCount sets comment_count to n if it still equals seen.
// swapped=false means a concurrent IncCommentCount moved it.
func (s *Store) SetCommentCount(ctx context.Context, id primitive.ObjectID, seen, n int) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "comment_count": seen},
		bson.M{"$set": bson.M{"comment_count": n}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
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

// ListIDs returns every group idea id. Used by the reconciler.
func (s *Store) ListIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

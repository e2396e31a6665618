// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateInviteCode = errors.New("invite code already in use")
	ErrGroupFull           = errors.New("group has reached its member limit")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) Create(ctx context.Context, g models.Group) error {
	g.NameCI = text.Fold(g.Name)
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateInviteCode
		}
		return err
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByInviteCode looks up a group by its (already normalized) invite code.
func (s *Store) GetByInviteCode(ctx context.Context, code string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"invite_code": code}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListByMember returns the groups whose member set contains userID, newest first.
func (s *Store) ListByMember(ctx context.Context, userID string) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"member_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIDs returns every group id. Used by the reconciler.
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

func (s *Store) SetInviteCode(ctx context.Context, id primitive.ObjectID, code string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"invite_code": code}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateInviteCode
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddMember appends userID to member_ids and increments member_count in one
// document update. The filter only matches when userID is absent and the
// group is below max, so the update can neither double count nor overflow.
//
// Returns added=false, err=nil when userID was already counted,
// ErrGroupFull when the cap is reached, and mongo.ErrNoDocuments when the
// group does not exist.
func (s *Store) AddMember(ctx context.Context, id primitive.ObjectID, userID string, max int) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":          id,
			"member_ids":   bson.M{"$ne": userID},
			"member_count": bson.M{"$lt": max},
		},
		bson.M{
			"$addToSet": bson.M{"member_ids": userID},
			"$inc":      bson.M{"member_count": 1},
		})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	g, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if g.HasMember(userID) {
		return false, nil
	}
	return false, ErrGroupFull
}

// RemoveMember pulls userID from member_ids and decrements member_count.
// A second call is a no-op. Returns removed=false when userID was not counted.
func (s *Store) RemoveMember(ctx context.Context, id primitive.ObjectID, userID string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "member_ids": userID},
		bson.M{
			"$pull": bson.M{"member_ids": userID},
			"$inc":  bson.M{"member_count": -1},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// SetMembers overwrites the denormalized member set, but only if member_ids
// and member_count still equal what the caller read. Used only by repair.
//
// Returns swapped=false when the group changed since it was read and
// mongo.ErrNoDocuments when it no longer exists.
func (s *Store) SetMembers(ctx context.Context, id primitive.ObjectID, seenIDs []string, seenCount int, userIDs []string) (bool, error) {
	if seenIDs == nil {
		seenIDs = []string{}
	}
	if userIDs == nil {
		userIDs = []string{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "member_ids": seenIDs, "member_count": seenCount},
		bson.M{"$set": bson.M{
			"member_ids":   userIDs,
			"member_count": len(userIDs),
		}})
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

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

package userstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Upsert mirrors a directory entry from the identity provider, refreshing
// the lower-cased email key. The provider id is the document key.
func (s *Store) Upsert(ctx context.Context, u models.User) (models.User, error) {
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	u.Email = strings.TrimSpace(u.Email)
	u.EmailCI = models.EmailKey(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	u.UpdatedAt = time.Now().UTC()

	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by provider id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail looks up a user by email, ignoring case. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "email_ci", models.EmailKey(email))
}

// FindByDisplayName returns the lowest-id user whose display name is exactly name.
func (s *Store) FindByDisplayName(ctx context.Context, name string) (*models.User, error) {
	return s.findOne(ctx, "display_name", strings.TrimSpace(name))
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, "username", strings.TrimSpace(username))
}

func (s *Store) findOne(ctx context.Context, field, key string) (*models.User, error) {
	if key == "" {
		return nil, mongo.ErrNoDocuments
	}
	var u models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := s.c.FindOne(ctx, bson.M{field: key}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

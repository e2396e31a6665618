package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Idea is a user's personal idea. Public ideas also appear in the
// discovery feed. Either kind can be shared into a group.
type Idea struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	OwnerID     string             `bson:"owner_id" json:"ownerId"`
	OwnerName   string             `bson:"owner_name" json:"ownerName"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	IsPublic    bool               `bson:"is_public" json:"isPublic"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds for idea votes.
const (
	MinRating = 1
	MaxRating = 5

	// UpvoteRating marks a vote row written by the binary upvote toggle.
	UpvoteRating = 5
)

// Vote is a star rating on a GroupIdea. One document per (idea_id, user_id);
// a later vote by the same user overwrites the rating.
type Vote struct {
	IdeaID    primitive.ObjectID `bson:"idea_id" json:"-"`
	UserID    string             `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// ClampRating forces r into [MinRating, MaxRating].
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

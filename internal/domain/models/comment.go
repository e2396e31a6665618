package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reply on a GroupIdea. GroupIdea.CommentCount mirrors the
// number of comment documents for the idea.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	IdeaID     primitive.ObjectID `bson:"idea_id" json:"ideaId"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"groupId"`
	AuthorID   string             `bson:"author_id" json:"authorId"`
	AuthorName string             `bson:"author_name" json:"authorName"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

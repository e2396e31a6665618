package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JoinRequestPending is the only stored status; a request is deleted
// when it is approved or rejected.
const JoinRequestPending = "pending"

// JoinRequest is a non-member's request to join a group via its invite code.
// One document per (group_id, user_id).
type JoinRequest struct {
	GroupID     primitive.ObjectID `bson:"group_id" json:"groupId"`
	UserID      string             `bson:"user_id" json:"userId"`
	UserName    string             `bson:"user_name" json:"userName"`
	RequestedAt time.Time          `bson:"requested_at" json:"requestedAt"`
	Status      string             `bson:"status" json:"status"`
}

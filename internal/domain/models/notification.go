package models

import (
	"time"
)

// Notification types.
const (
	NotifyJoinRequest    = "join_request"
	NotifyJoinApproved   = "join_approved"
	NotifyJoinRejected   = "join_rejected"
	NotifyGroupInvite    = "group_invite"
	NotifyInviteDeclined = "invite_declined"
	NotifyMemberRemoved  = "member_removed"
	NotifyNewGroupIdea   = "new_group_idea"
	NotifyIdeaApproved   = "idea_approved"
)

// Notification is a message for one user. It is stored in the user's inbox
// and handed to the push channel; delivery is best-effort.
type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Type      string    `bson:"type" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	GroupID   string    `bson:"group_id,omitempty" json:"groupId,omitempty"`
	IdeaID    string    `bson:"idea_id,omitempty" json:"ideaId,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

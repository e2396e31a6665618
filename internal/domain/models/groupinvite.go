package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvitePending is the status written on every invite.
const InvitePending = "pending"

// GroupInvite is a direct invitation of an identified non-member.
// The document key is InviteKey(groupID, invitedUserID), so there is at
// most one pending invite per group per invitee.
type GroupInvite struct {
	ID              string             `bson:"_id" json:"id"`
	GroupID         primitive.ObjectID `bson:"group_id" json:"groupId"`
	GroupName       string             `bson:"group_name" json:"groupName"`
	InvitedUserID   string             `bson:"invited_user_id" json:"invitedUserId"`
	InvitedUserName string             `bson:"invited_user_name" json:"invitedUserName"`
	InvitedBy       string             `bson:"invited_by" json:"invitedBy"`
	InvitedByName   string             `bson:"invited_by_name" json:"invitedByName"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	Status          string             `bson:"status" json:"status"`
}

// InviteKey builds the invite document key "{groupId}_{invitedUserId}".
func InviteKey(groupID primitive.ObjectID, invitedUserID string) string {
	return fmt.Sprintf("%s_%s", groupID.Hex(), invitedUserID)
}

// internal/domain/models/groupmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member roles. Exactly one owner per group, set at creation.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember is the authoritative membership row.
// Exactly one document per (group_id, user_id).
type GroupMember struct {
	GroupID  primitive.ObjectID `bson:"group_id" json:"-"`
	UserID   string             `bson:"user_id" json:"userId"`
	UserName string             `bson:"user_name" json:"userName"`
	Role     string             `bson:"role" json:"role"` // owner | admin | member
	JoinedAt time.Time          `bson:"joined_at" json:"joinedAt"`
}

// IsManager reports whether the member may manage membership and approvals.
func (m GroupMember) IsManager() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

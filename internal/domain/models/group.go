// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxMembers is the member cap applied when no other limit is configured.
const DefaultMaxMembers = 10

// Group is a bounded collaboration unit that owns members, join requests,
// invites and group ideas.
//
// NOTE:
//   - MemberIDs and MemberCount are denormalized from the group_members rows.
//     They are updated together in a single document update so that
//     MemberCount == len(MemberIDs) holds after every completed operation.
//   - OwnerID never changes after creation and is always in MemberIDs.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	OwnerID     string             `bson:"owner_id" json:"ownerId"`
	OwnerName   string             `bson:"owner_name" json:"ownerName"`
	InviteCode  string             `bson:"invite_code" json:"inviteCode"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	MemberCount int                `bson:"member_count" json:"memberCount"`
	MemberIDs   []string           `bson:"member_ids" json:"memberIds"`
}

// HasMember reports whether userID is listed in the denormalized member set.
func (g Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanAddMembers reports whether the group is below the given member cap.
func (g Group) CanAddMembers(max int) bool {
	return g.MemberCount < max
}

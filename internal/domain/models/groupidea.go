// internal/domain/models/groupidea.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feature priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Feature statuses. Transitions between them are free-form.
const (
	StatusBacklog    = "backlog"
	StatusInProgress = "inProgress"
	StatusDone       = "done"
)

// Idea share sources.
const (
	SharedFromPersonal = "personal"
	SharedFromPublic   = "public"
)

// ValidPriority reports whether p is a known feature priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidStatus reports whether s is a known feature status.
func ValidStatus(s string) bool {
	return s == StatusBacklog || s == StatusInProgress || s == StatusDone
}

// GroupIdea is an idea scoped to a group.
//
// NOTE:
//   - Features are embedded, not a subcollection. Every feature mutation is a
//     read-modify-write of the whole array guarded by Version (compare-and-swap).
//   - IsApproved only ever moves from false to true.
//   - CommentCount is denormalized from idea_comments.
type GroupIdea struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	GroupID          primitive.ObjectID `bson:"group_id" json:"groupId"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	AuthorID         string             `bson:"author_id" json:"authorId"`
	AuthorName       string             `bson:"author_name" json:"authorName"`
	SharedFromIdeaID string             `bson:"shared_from_idea_id,omitempty" json:"sharedFromIdeaId,omitempty"`
	SharedFromType   string             `bson:"shared_from_type,omitempty" json:"sharedFromType,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	Features         []Feature          `bson:"features" json:"features"`
	IsApproved       bool               `bson:"is_approved" json:"isApproved"`
	CommentCount     int                `bson:"comment_count" json:"commentCount"`
	Version          int64              `bson:"version" json:"version"`
}

// Feature is a sub-capability of a GroupIdea. Votes holds the ids of users
// who upvoted it; membership is toggled, never counted twice.
type Feature struct {
	ID          string   `bson:"id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description" json:"description"`
	Priority    string   `bson:"priority" json:"priority"`
	Status      string   `bson:"status" json:"status"`
	Votes       []string `bson:"votes" json:"votes"`
}

// VoteCount is the number of upvotes on the feature.
func (f Feature) VoteCount() int { return len(f.Votes) }

// HasVote reports whether userID has upvoted the feature.
func (f Feature) HasVote(userID string) bool {
	for _, v := range f.Votes {
		if v == userID {
			return true
		}
	}
	return false
}

// ToggleVote flips userID's upvote and reports whether it is now present.
func (f *Feature) ToggleVote(userID string) bool {
	for i, v := range f.Votes {
		if v == userID {
			f.Votes = append(f.Votes[:i:i], f.Votes[i+1:]...)
			return false
		}
	}
	f.Votes = append(f.Votes, userID)
	return true
}

// FeatureIndex returns the position of the feature with id, or -1.
func (gi GroupIdea) FeatureIndex(id string) int {
	for i, f := range gi.Features {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// FeaturesWithStatus is the read view of the features in one workflow column,
// in their stored order.
func (gi GroupIdea) FeaturesWithStatus(status string) []Feature {
	out := []Feature{}
	for _, f := range gi.Features {
		if f.Status == status {
			out = append(out, f)
		}
	}
	return out
}

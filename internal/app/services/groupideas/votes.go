package groupideas

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Stats is the derived view of an idea's star ratings.
type Stats struct {
	AverageRating float64 `json:"averageRating"`
	VoteCount     int     `json:"voteCount"`
	MyRating      int     `json:"myRating,omitempty"`
	Upvoted       bool    `json:"upvoted"`
}

// AddVote records the caller's rating, clamped to 1..5. A later vote from
// the same user replaces the earlier one.
func (s *Service) AddVote(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID, rating int) error {
	if _, _, err := s.memberIdea(ctx, caller, groupID, ideaID); err != nil {
		return err
	}
	return s.putVote(ctx, caller, ideaID, models.ClampRating(rating))
}

// RemoveVote deletes the caller's rating. Removing a missing vote succeeds.
func (s *Service) RemoveVote(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) error {
	if _, _, err := s.memberIdea(ctx, caller, groupID, ideaID); err != nil {
		return err
	}
	if _, err := s.st.Votes.Delete(ctx, ideaID, caller.UserID); err != nil {
		return apperr.Store("delete vote", apperr.CodeIdeaNotFound, err)
	}
	return nil
}

// ToggleVote is the binary upvote: it removes the caller's vote row if one
// exists and otherwise writes one with UpvoteRating. It reports whether the
// caller has upvoted afterwards.
func (s *Service) ToggleVote(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) (bool, error) {
	if _, _, err := s.memberIdea(ctx, caller, groupID, ideaID); err != nil {
		return false, err
	}
	_, err := s.st.Votes.Get(ctx, ideaID, caller.UserID)
	switch {
	case err == nil:
		if _, err := s.st.Votes.Delete(ctx, ideaID, caller.UserID); err != nil {
			return false, apperr.Store("delete vote", apperr.CodeIdeaNotFound, err)
		}
		return false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return true, s.putVote(ctx, caller, ideaID, models.UpvoteRating)
	default:
		return false, apperr.Store("load vote", apperr.CodeIdeaNotFound, err)
	}
}

func (s *Service) putVote(ctx context.Context, caller identity.Caller, ideaID primitive.ObjectID, rating int) error {
	err := s.st.Votes.Upsert(ctx, models.Vote{
		IdeaID:    ideaID,
		UserID:    caller.UserID,
		UserName:  caller.DisplayName,
		Rating:    rating,
		CreatedAt: s.now(),
	})
	if err != nil {
		return apperr.Store("write vote", apperr.CodeIdeaNotFound, err)
	}
	return nil
}

// IdeaStats computes the average rating from the vote rows on every call.
// A store failure is logged and yields empty stats.
func (s *Service) IdeaStats(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) (Stats, error) {
	if _, _, err := s.memberIdea(ctx, caller, groupID, ideaID); err != nil {
		return Stats{}, err
	}
	votes, err := s.st.Votes.ListByIdea(ctx, ideaID)
	if err != nil {
		s.log.Warn("list votes failed", zap.String("idea_id", ideaID.Hex()), zap.Error(err))
		return Stats{}, nil
	}
	return Summarize(votes, caller.UserID), nil
}

// Summarize derives Stats from vote rows as seen by userID.
func Summarize(votes []models.Vote, userID string) Stats {
	var st Stats
	sum := 0
	for _, v := range votes {
		sum += v.Rating
		if v.UserID == userID {
			st.MyRating = v.Rating
			st.Upvoted = true
		}
	}
	st.VoteCount = len(votes)
	if st.VoteCount > 0 {
		st.AverageRating = float64(sum) / float64(st.VoteCount)
	}
	return st
}

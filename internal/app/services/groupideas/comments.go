package groupideas

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/limits"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AddComment posts a comment on the idea. Members only. The comment row is
// the primary write; the idea's comment_count follows and a failure there
// is left for the reconciler.
func (s *Service) AddComment(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID, text string) (models.Comment, error) {
	if _, _, err := s.memberIdea(ctx, caller, groupID, ideaID); err != nil {
		return models.Comment{}, err
	}
	text = htmlsanitize.PlainText(text)
	if text == "" {
		return models.Comment{}, apperr.Validation(apperr.CodeInvalidInput, "text: is required")
	}
	if utf8.RuneCountInString(text) > limits.MaxCommentLen {
		return models.Comment{}, apperr.Validation(apperr.CodeInvalidInput, "text: must be at most %d characters", limits.MaxCommentLen)
	}

	c := models.Comment{
		ID:         primitive.NewObjectID(),
		IdeaID:     ideaID,
		GroupID:    groupID,
		AuthorID:   caller.UserID,
		AuthorName: caller.DisplayName,
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.st.Comments.Create(ctx, c); err != nil {
		return models.Comment{}, apperr.Store("create comment", apperr.CodeIdeaNotFound, err)
	}
	s.bumpCommentCount(ctx, ideaID, 1)
	return c, nil
}

// DeleteComment removes a comment. Its author or an owner/admin.
func (s *Service) DeleteComment(ctx context.Context, caller identity.Caller, groupID, ideaID, commentID primitive.ObjectID) error {
	actor, _, err := s.memberIdea(ctx, caller, groupID, ideaID)
	if err != nil {
		return err
	}
	c, err := s.st.Comments.GetByID(ctx, commentID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && c.IdeaID != ideaID) {
		return apperr.NotFound(apperr.CodeCommentNotFound, "comment not found")
	}
	if err != nil {
		return apperr.Store("load comment", apperr.CodeCommentNotFound, err)
	}
	if err := grouppolicy.CanDeleteAuthored(actor, c.AuthorID); err != nil {
		return err
	}

	n, err := s.st.Comments.Delete(ctx, commentID)
	if err != nil {
		return apperr.Store("delete comment", apperr.CodeCommentNotFound, err)
	}
	if n > 0 {
		s.bumpCommentCount(ctx, ideaID, -1)
	}
	return nil
}

// ListComments returns the idea's comments, oldest first. Members only.
func (s *Service) ListComments(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) ([]models.Comment, error) {
	if _, _, err := s.memberIdea(ctx, caller, groupID, ideaID); err != nil {
		return nil, err
	}
	cs, err := s.st.Comments.ListByIdea(ctx, ideaID)
	if err != nil {
		s.log.Warn("list comments failed", zap.String("idea_id", ideaID.Hex()), zap.Error(err))
		return []models.Comment{}, nil
	}
	if cs == nil {
		cs = []models.Comment{}
	}
	return cs, nil
}

func (s *Service) bumpCommentCount(ctx context.Context, ideaID primitive.ObjectID, delta int) {
	if err := s.st.GroupIdeas.IncCommentCount(ctx, ideaID, delta); err != nil {
		s.log.Warn("comment count update failed; reconciler will repair",
			zap.String("idea_id", ideaID.Hex()), zap.Int("delta", delta), zap.Error(err))
	}
}

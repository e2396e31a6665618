package groupideas

import (
	"context"
	"errors"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IdeaInput is the user-supplied part of a new group idea.
type IdeaInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// CreateGroupIdea adds an unapproved idea authored by the caller and
// notifies every other member.
func (s *Service) CreateGroupIdea(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, in IdeaInput) (models.GroupIdea, error) {
	if _, err := s.member(ctx, groupID, caller); err != nil {
		return models.GroupIdea{}, err
	}
	gi, err := s.insert(ctx, caller, groupID, in.Name, in.Description, "", "")
	if err != nil {
		return models.GroupIdea{}, err
	}
	s.audit.Idea(ctx, audit.EventGroupIdeaCreated, groupID.Hex(), gi.ID.Hex(), caller.UserID)
	s.announce(ctx, gi, caller)
	return gi, nil
}

// ShareIdeaToGroup copies a personal idea into the group. The caller must
// own the idea or the idea must be public.
func (s *Service) ShareIdeaToGroup(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) (models.GroupIdea, error) {
	if _, err := s.member(ctx, groupID, caller); err != nil {
		return models.GroupIdea{}, err
	}
	src, err := s.st.Ideas.GetByID(ctx, ideaID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupIdea{}, apperr.NotFound(apperr.CodeIdeaNotFound, "idea not found")
	}
	if err != nil {
		return models.GroupIdea{}, apperr.Store("load personal idea", apperr.CodeIdeaNotFound, err)
	}

	var from string
	switch {
	case src.OwnerID == caller.UserID:
		from = models.SharedFromPersonal
	case src.IsPublic:
		from = models.SharedFromPublic
	default:
		// Someone else's private idea is indistinguishable from a missing one.
		return models.GroupIdea{}, apperr.NotFound(apperr.CodeIdeaNotFound, "idea not found")
	}

	gi, err := s.insert(ctx, caller, groupID, src.Name, src.Description, src.ID.Hex(), from)
	if err != nil {
		return models.GroupIdea{}, err
	}
	s.audit.Idea(ctx, audit.EventGroupIdeaShared, groupID.Hex(), gi.ID.Hex(), caller.UserID)
	s.announce(ctx, gi, caller)
	return gi, nil
}

func (s *Service) insert(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID, name, desc, fromID, fromType string) (models.GroupIdea, error) {
	name = htmlsanitize.PlainText(name)
	if name == "" {
		return models.GroupIdea{}, apperr.Validation(apperr.CodeInvalidInput, "name: is required")
	}
	gi := models.GroupIdea{
		ID:               primitive.NewObjectID(),
		GroupID:          groupID,
		Name:             name,
		Description:      htmlsanitize.PlainText(desc),
		AuthorID:         caller.UserID,
		AuthorName:       caller.DisplayName,
		SharedFromIdeaID: fromID,
		SharedFromType:   fromType,
		CreatedAt:        s.now(),
		Features:         []models.Feature{},
	}
	if err := s.st.GroupIdeas.Create(ctx, gi); err != nil {
		return models.GroupIdea{}, apperr.Store("create idea", apperr.CodeGroupNotFound, err)
	}
	return gi, nil
}

// announce tells every member but the author about a new idea.
func (s *Service) announce(ctx context.Context, gi models.GroupIdea, author identity.Caller) {
	ids := s.memberIDsExcept(ctx, gi.GroupID, author.UserID)
	s.notify.SendMany(ctx, ids, models.Notification{
		Type:    models.NotifyNewGroupIdea,
		Title:   "New idea",
		Message: author.DisplayName + " shared \"" + gi.Name + "\"",
		GroupID: gi.GroupID.Hex(),
		IdeaID:  gi.ID.Hex(),
	})
}

// ApproveIdea flips isApproved to true. Owner or admin. Approving an
// approved idea is a no-op.
func (s *Service) ApproveIdea(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) error {
	actor, gi, err := s.memberIdea(ctx, caller, groupID, ideaID)
	if err != nil {
		return err
	}
	if err := grouppolicy.CanManage(actor); err != nil {
		return err
	}
	if gi.IsApproved {
		return nil
	}
	if err := s.st.GroupIdeas.Approve(ctx, ideaID); err != nil {
		return apperr.Store("approve idea", apperr.CodeIdeaNotFound, err)
	}

	s.audit.Idea(ctx, audit.EventGroupIdeaApproved, groupID.Hex(), ideaID.Hex(), caller.UserID)
	if gi.AuthorID != caller.UserID {
		s.notify.Send(ctx, models.Notification{
			UserID:  gi.AuthorID,
			Type:    models.NotifyIdeaApproved,
			Title:   "Idea approved",
			Message: "\"" + gi.Name + "\" was approved",
			GroupID: groupID.Hex(),
			IdeaID:  ideaID.Hex(),
		})
	}
	return nil
}

// DeleteGroupIdea removes the idea with its votes and comments. The author
// or an owner/admin may delete.
func (s *Service) DeleteGroupIdea(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) error {
	actor, gi, err := s.memberIdea(ctx, caller, groupID, ideaID)
	if err != nil {
		return err
	}
	if err := grouppolicy.CanDeleteAuthored(actor, gi.AuthorID); err != nil {
		return err
	}

	ids := []primitive.ObjectID{ideaID}
	err = s.st.Txn.Run(ctx, func(ctx context.Context) error {
		if _, err := s.st.Votes.DeleteByIdeas(ctx, ids); err != nil {
			return err
		}
		if _, err := s.st.Comments.DeleteByIdeas(ctx, ids); err != nil {
			return err
		}
		_, err := s.st.GroupIdeas.Delete(ctx, ideaID)
		return err
	})
	if err != nil {
		return apperr.Store("delete idea", apperr.CodeIdeaNotFound, err)
	}
	s.audit.Idea(ctx, audit.EventGroupIdeaDeleted, groupID.Hex(), ideaID.Hex(), caller.UserID)
	return nil
}

// GetIdea returns one idea of the group. Members only.
func (s *Service) GetIdea(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID) (models.GroupIdea, error) {
	_, gi, err := s.memberIdea(ctx, caller, groupID, ideaID)
	return gi, err
}

// ListGroupIdeas returns the group's ideas, newest first. Members only. A
// store failure is logged and shows as an empty list.
func (s *Service) ListGroupIdeas(ctx context.Context, caller identity.Caller, groupID primitive.ObjectID) ([]models.GroupIdea, error) {
	if _, err := s.member(ctx, groupID, caller); err != nil {
		return nil, err
	}
	ideas, err := s.st.GroupIdeas.ListByGroup(ctx, groupID)
	if err != nil {
		s.log.Warn("list group ideas failed", zap.String("group_id", groupID.Hex()), zap.Error(err))
		return []models.GroupIdea{}, nil
	}
	if ideas == nil {
		ideas = []models.GroupIdea{}
	}
	return ideas, nil
}

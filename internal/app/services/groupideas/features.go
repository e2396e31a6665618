package groupideas

import (
	"context"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeatureInput is the user-supplied part of a new feature.
type FeatureInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Priority    string `json:"priority" validate:"omitempty,priority"`
}

// AddFeature appends a backlog feature to the idea. Members only.
func (s *Service) AddFeature(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID, in FeatureInput) (models.Feature, error) {
	if _, err := s.member(ctx, groupID, caller); err != nil {
		return models.Feature{}, err
	}
	name := htmlsanitize.PlainText(in.Name)
	if name == "" {
		return models.Feature{}, apperr.Validation(apperr.CodeInvalidInput, "name: is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return models.Feature{}, apperr.Validation(apperr.CodeInvalidInput, "priority: must be one of: low medium high")
	}

	f := models.Feature{
		ID:          uuid.NewString(),
		Name:        name,
		Description: htmlsanitize.PlainText(in.Description),
		Priority:    priority,
		Status:      models.StatusBacklog,
		Votes:       []string{},
	}
	_, err := s.mutateFeatures(ctx, groupID, ideaID, func(gi *models.GroupIdea) error {
		gi.Features = append(gi.Features, f)
		return nil
	})
	if err != nil {
		return models.Feature{}, err
	}
	return f, nil
}

// DeleteFeature removes a feature. The idea's author or an owner/admin.
func (s *Service) DeleteFeature(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID, featureID string) error {
	actor, err := s.member(ctx, groupID, caller)
	if err != nil {
		return err
	}
	_, err = s.mutateFeatures(ctx, groupID, ideaID, func(gi *models.GroupIdea) error {
		if err := grouppolicy.CanDeleteAuthored(actor, gi.AuthorID); err != nil {
			return err
		}
		i := gi.FeatureIndex(featureID)
		if i < 0 {
			return apperr.NotFound(apperr.CodeFeatureNotFound, "feature not found")
		}
		gi.Features = append(gi.Features[:i:i], gi.Features[i+1:]...)
		return nil
	})
	return err
}

// ToggleFeatureVote flips the caller's upvote on a feature and reports
// whether it is set afterwards. Members only.
func (s *Service) ToggleFeatureVote(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID, featureID string) (bool, error) {
	if _, err := s.member(ctx, groupID, caller); err != nil {
		return false, err
	}
	var voted bool
	_, err := s.mutateFeatures(ctx, groupID, ideaID, func(gi *models.GroupIdea) error {
		i := gi.FeatureIndex(featureID)
		if i < 0 {
			return apperr.NotFound(apperr.CodeFeatureNotFound, "feature not found")
		}
		voted = gi.Features[i].ToggleVote(caller.UserID)
		return nil
	})
	if err != nil {
		return false, err
	}
	return voted, nil
}

// UpdateFeatureStatus moves a feature to status. Any authenticated caller
// may do this; transitions are free-form.
func (s *Service) UpdateFeatureStatus(ctx context.Context, caller identity.Caller, groupID, ideaID primitive.ObjectID, featureID, status string) (models.Feature, error) {
	if caller.UserID == "" {
		return models.Feature{}, apperr.Unauthorized(apperr.CodeForbidden, "sign in required")
	}
	if !models.ValidStatus(status) {
		return models.Feature{}, apperr.Validation(apperr.CodeInvalidInput, "status: must be one of: backlog inProgress done")
	}
	var out models.Feature
	_, err := s.mutateFeatures(ctx, groupID, ideaID, func(gi *models.GroupIdea) error {
		i := gi.FeatureIndex(featureID)
		if i < 0 {
			return apperr.NotFound(apperr.CodeFeatureNotFound, "feature not found")
		}
		gi.Features[i].Status = status
		out = gi.Features[i]
		return nil
	})
	if err != nil {
		return models.Feature{}, err
	}
	return out, nil
}

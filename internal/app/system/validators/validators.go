// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/ideahub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// maxMembers bounds groups.member_count so a write that would overflow the
// cap is rejected by the server as well as by the conditional update.
func EnsureAll(ctx context.Context, db *mongo.Database, maxMembers int) error {
	var problems []string

	if maxMembers <= 0 {
		maxMembers = models.DefaultMaxMembers
	}

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("groups", groupsSchema(maxMembers))
	ensure("group_members", groupMembersSchema())
	ensure("join_requests", joinRequestsSchema())
	ensure("group_invites", groupInvitesSchema())
	ensure("group_ideas", groupIdeasSchema())
	ensure("idea_votes", ideaVotesSchema())
	ensure("idea_comments", ideaCommentsSchema())
	ensure("ideas", ideasSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("notifications", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "display_name"},
			"properties": bson.M{
				"_id":          nonBlank,
				"display_name": bson.M{"bsonType": "string"},
				"email":        bson.M{"bsonType": "string"},
				"email_ci":     bson.M{"bsonType": "string"},
				"username":     bson.M{"bsonType": "string"},
			},
		},
	}
}

func groupsSchema(maxMembers int) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "owner_id", "invite_code", "member_count", "member_ids", "created_at"},
			"properties": bson.M{
				"name":         nonBlank,
				"name_ci":      bson.M{"bsonType": "string"},
				"description":  bson.M{"bsonType": "string"},
				"owner_id":     nonBlank,
				"owner_name":   bson.M{"bsonType": "string"},
				"invite_code":  bson.M{"bsonType": "string", "pattern": "^[A-Z0-9]{4}-[A-Z0-9]{4}$"},
				"member_count": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": maxMembers},
				"member_ids":   bson.M{"bsonType": "array", "maxItems": maxMembers, "uniqueItems": true, "items": bson.M{"bsonType": "string"}},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func groupMembersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "user_id", "role", "joined_at"},
			"properties": bson.M{
				"group_id":  bson.M{"bsonType": "objectId"},
				"user_id":   nonBlank,
				"user_name": bson.M{"bsonType": "string"},
				"role":      bson.M{"enum": bson.A{models.RoleOwner, models.RoleAdmin, models.RoleMember}},
				"joined_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func joinRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "user_id", "status", "requested_at"},
			"properties": bson.M{
				"group_id":     bson.M{"bsonType": "objectId"},
				"user_id":      nonBlank,
				"status":       bson.M{"enum": bson.A{models.JoinRequestPending}},
				"requested_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func groupInvitesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "group_id", "invited_user_id", "invited_by", "status", "created_at"},
			"properties": bson.M{
				"_id":             nonBlank,
				"group_id":        bson.M{"bsonType": "objectId"},
				"invited_user_id": nonBlank,
				"invited_by":      nonBlank,
				"status":          bson.M{"enum": bson.A{models.InvitePending}},
				"created_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}

func groupIdeasSchema() bson.M {
	feature := bson.M{
		"bsonType": "object",
		"required": bson.A{"id", "name", "priority", "status", "votes"},
		"properties": bson.M{
			"id":       nonBlank,
			"name":     nonBlank,
			"priority": bson.M{"enum": bson.A{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}},
			"status":   bson.M{"enum": bson.A{models.StatusBacklog, models.StatusInProgress, models.StatusDone}},
			"votes":    bson.M{"bsonType": "array", "uniqueItems": true, "items": bson.M{"bsonType": "string"}},
		},
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "name", "author_id", "features", "is_approved", "version", "created_at"},
			"properties": bson.M{
				"group_id":      bson.M{"bsonType": "objectId"},
				"name":          nonBlank,
				"author_id":     nonBlank,
				"features":      bson.M{"bsonType": "array", "items": feature},
				"is_approved":   bson.M{"bsonType": "bool"},
				"comment_count": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"version":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"created_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func ideaVotesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"idea_id", "user_id", "rating"},
			"properties": bson.M{
				"idea_id": bson.M{"bsonType": "objectId"},
				"user_id": nonBlank,
				"rating":  bson.M{"bsonType": bson.A{"int", "long"}, "minimum": models.MinRating, "maximum": models.MaxRating},
			},
		},
	}
}

func ideaCommentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"idea_id", "group_id", "author_id", "text", "created_at"},
			"properties": bson.M{
				"idea_id":    bson.M{"bsonType": "objectId"},
				"group_id":   bson.M{"bsonType": "objectId"},
				"author_id":  nonBlank,
				"text":       nonBlank,
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func ideasSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"owner_id", "name", "is_public", "created_at"},
			"properties": bson.M{
				"owner_id":   nonBlank,
				"name":       nonBlank,
				"is_public":  bson.M{"bsonType": "bool"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
// Each value is "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only) or "off".
type Config struct {
	// Membership covers group lifecycle, join requests, invites and roles.
	Membership string
	// Ideas covers group idea creation, sharing, approval and deletion.
	Ideas string
	// Repair covers reconciler corrections.
	Repair string
}

// Uniform returns a Config with every category set to mode.
func Uniform(mode string) Config {
	return Config{Membership: mode, Ideas: mode, Repair: mode}
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via EventStore) and structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.GroupID != "" {
		fields = append(fields, zap.String("group_id", event.GroupID))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryMembership:
		setting = l.config.Membership
	case audit.CategoryIdeas:
		setting = l.config.Ideas
	case audit.CategoryRepair:
		setting = l.config.Repair
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Membership Events ---

// Membership logs a successful membership change in groupID.
// targetUserID is the affected user and may equal actorID.
func (l *Logger) Membership(ctx context.Context, eventType, groupID, actorID, targetUserID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: eventType,
		GroupID:   groupID,
		ActorID:   actorID,
		UserID:    targetUserID,
		Success:   true,
		Details:   details,
	})
}

// GroupCreated logs the creation of a group by its owner.
func (l *Logger) GroupCreated(ctx context.Context, groupID, ownerID, groupName string) {
	l.Membership(ctx, audit.EventGroupCreated, groupID, ownerID, ownerID, map[string]string{
		"group_name": groupName,
	})
}

// GroupDeleted logs a cascade delete and how many rows it removed.
func (l *Logger) GroupDeleted(ctx context.Context, groupID, actorID string, members, ideas int64) {
	l.Membership(ctx, audit.EventGroupDeleted, groupID, actorID, "", map[string]string{
		"members_removed": strconv.FormatInt(members, 10),
		"ideas_removed":   strconv.FormatInt(ideas, 10),
	})
}

// MemberAdded logs a user joining a group. via names the path: approve, invite or direct.
func (l *Logger) MemberAdded(ctx context.Context, groupID, actorID, userID, role, via string) {
	l.Membership(ctx, audit.EventMemberAdded, groupID, actorID, userID, map[string]string{
		"member_role": role,
		"via":         via,
	})
}

// MemberRoleChanged logs a role update.
func (l *Logger) MemberRoleChanged(ctx context.Context, groupID, actorID, userID, from, to string) {
	l.Membership(ctx, audit.EventMemberRoleChanged, groupID, actorID, userID, map[string]string{
		"from": from,
		"to":   to,
	})
}

// MembershipDenied logs a membership operation rejected by policy.
func (l *Logger) MembershipDenied(ctx context.Context, eventType, groupID, actorID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryMembership,
		EventType:     eventType,
		GroupID:       groupID,
		ActorID:       actorID,
		Success:       false,
		FailureReason: reason,
	})
}

// --- Idea Events ---

// Idea logs a group idea event.
func (l *Logger) Idea(ctx context.Context, eventType, groupID, ideaID, actorID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryIdeas,
		EventType: eventType,
		GroupID:   groupID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"idea_id": ideaID,
		},
	})
}

// --- Repair Events ---

// Reconciled logs a correction applied by the reconciler.
func (l *Logger) Reconciled(ctx context.Context, eventType, groupID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryRepair,
		EventType: eventType,
		GroupID:   groupID,
		Success:   true,
		Details:   details,
	})
}

// Package notify delivers user notifications on a best-effort basis.
//
// A notification is written to the recipient's inbox collection and, when a
// publisher is configured, pushed to Redis for the push gateway. Failures
// are logged and swallowed: a notification must never fail the operation
// that triggered it.
package notify

import (
	"context"
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sender is the notification capability the core services depend on.
type Sender interface {
	Send(ctx context.Context, n models.Notification)
	SendMany(ctx context.Context, userIDs []string, n models.Notification)
}

// Inbox persists notifications for later reading.
type Inbox interface {
	Insert(ctx context.Context, n models.Notification) error
}

// Publisher hands a notification to an external push channel.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// DefaultConcurrency bounds SendMany when no other value is configured.
const DefaultConcurrency = 4

// Service implements Sender over an Inbox and an optional Publisher.
type Service struct {
	inbox       Inbox
	pub         Publisher
	log         *zap.Logger
	concurrency int
}

// New builds a Service. pub may be nil.
func New(inbox Inbox, pub Publisher, logger *zap.Logger, concurrency int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{inbox: inbox, pub: pub, log: logger, concurrency: concurrency}
}

// Send delivers n to n.UserID. It runs on a context detached from the
// caller's cancellation so a finished request does not abort delivery.
func (s *Service) Send(ctx context.Context, n models.Notification) {
	if s == nil || n.UserID == "" {
		return
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()

	log := s.log.With(
		zap.String("user_id", n.UserID),
		zap.String("type", n.Type),
		zap.String("group_id", n.GroupID),
		zap.String("idea_id", n.IdeaID))

	if s.inbox != nil {
		if err := s.inbox.Insert(ctx, n); err != nil {
			log.Warn("notification inbox write failed", zap.Error(err))
		}
	}
	if s.pub != nil {
		if err := s.pub.Publish(ctx, n); err != nil {
			log.Warn("notification publish failed", zap.Error(err))
		}
	}
}

// SendMany delivers a copy of n to each user concurrently, at most
// concurrency at a time. Each delivery is independent.
func (s *Service) SendMany(ctx context.Context, userIDs []string, n models.Notification) {
	if s == nil || len(userIDs) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, uid := range userIDs {
		msg := n
		msg.ID = ""
		msg.UserID = uid
		g.Go(func() error {
			s.Send(ctx, msg)
			return nil
		})
	}
	_ = g.Wait()
}

// Discard is a Sender that drops every notification.
var Discard Sender = discard{}

type discard struct{}

func (discard) Send(context.Context, models.Notification)               {}
func (discard) SendMany(context.Context, []string, models.Notification) {}

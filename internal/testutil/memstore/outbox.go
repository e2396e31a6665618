package memstore

import (
	"context"
	"sync"

	"github.com/dalemusser/ideahub/internal/domain/models"
)

// Outbox is a notify.Sender that records what would have been delivered.
type Outbox struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (o *Outbox) Send(_ context.Context, n models.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, n)
}

func (o *Outbox) SendMany(ctx context.Context, userIDs []string, n models.Notification) {
	for _, uid := range userIDs {
		msg := n
		msg.UserID = uid
		o.Send(ctx, msg)
	}
}

// For returns the notifications addressed to userID, in send order.
func (o *Outbox) For(userID string) []models.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.Notification
	for _, n := range o.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the total number of notifications sent.
func (o *Outbox) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

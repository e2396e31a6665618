package memstore

import (
	"context"
	"sync"

	"github.com/dalemusser/ideahub/internal/app/store/audit"
)

// AuditTrail is an auditlog.EventStore that keeps events in memory. It also
// serves the audit feed queries.
type AuditTrail struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *AuditTrail) Log(_ context.Context, e audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

// Events returns a copy of everything logged so far.
func (a *AuditTrail) Events() []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Event(nil), a.events...)
}

// Find returns the events of eventType in log order.
func (a *AuditTrail) Find(eventType string) []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []audit.Event
	for _, e := range a.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Query mirrors audit.Store.Query over the logged events, newest first.
// Time bounds are ignored.
func (a *AuditTrail) Query(_ context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []audit.Event
	for i := len(a.events) - 1; i >= 0; i-- {
		e := a.events[i]
		if (f.GroupID != "" && e.GroupID != f.GroupID) ||
			(f.UserID != "" && e.UserID != f.UserID) ||
			(f.Category != "" && e.Category != f.Category) ||
			(f.EventType != "" && e.EventType != f.EventType) {
			continue
		}
		out = append(out, e)
	}
	if f.Offset > 0 {
		if f.Offset >= int64(len(out)) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

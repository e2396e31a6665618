// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"go.uber.org/zap"
)

// EventReader reads persisted audit events. *audit.Store satisfies it.
type EventReader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

type Handler struct {
	Members *membership.Service
	Events  EventReader
	Log     *zap.Logger
}

// NewHandler constructs the group audit feed handler. events may be nil when
// audit events are not persisted; the feed is then always empty.
func NewHandler(members *membership.Service, events EventReader, logger *zap.Logger) *Handler {
	return &Handler{
		Members: members,
		Events:  events,
		Log:     logger,
	}
}

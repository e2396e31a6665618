// internal/app/features/groups/handler.go
package groups

import (
	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// Every endpoint is a thin adapter over the membership service: decode,
// call, encode.
type Handler struct {
	Members *membership.Service
	Log     *zap.Logger

	// JoinLimit throttles invite code lookups. Nil disables it.
	JoinLimit *ratelimit.JoinLimiter
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(svc *membership.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Members: svc,
		Log:     logger,
	}
}

// internal/app/features/groupideas/handler.go
package groupideas

import (
	"net/http"

	ideasvc "github.com/dalemusser/ideahub/internal/app/services/groupideas"
	"github.com/dalemusser/ideahub/internal/app/system/httpjson"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the ideas, votes, features and comments of one group.
type Handler struct {
	Ideas *ideasvc.Service
	Log   *zap.Logger
}

// NewHandler constructs a group ideas Handler.
func NewHandler(svc *ideasvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Ideas: svc, Log: logger}
}

// scope is the caller plus the group and idea ids of the request path.
type scope struct {
	caller  identity.Caller
	groupID primitive.ObjectID
	ideaID  primitive.ObjectID
}

// resolve parses the caller and path ids. withIdea is false for the
// collection endpoints. On failure the response is already written.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, withIdea bool) (scope, bool) {
	var sc scope
	var ok bool
	if sc.caller, ok = httpjson.Caller(w, r); !ok {
		return sc, false
	}
	var err error
	if sc.groupID, err = httpjson.ObjectID(r, "groupID"); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return sc, false
	}
	if withIdea {
		if sc.ideaID, err = httpjson.ObjectID(r, "ideaID"); err != nil {
			httpjson.Error(w, r, h.Log, err)
			return sc, false
		}
	}
	return sc, true
}

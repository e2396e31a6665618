package stores

import (
	commentstore "github.com/dalemusser/ideahub/internal/app/store/comments"
	groupideastore "github.com/dalemusser/ideahub/internal/app/store/groupideas"
	groupstore "github.com/dalemusser/ideahub/internal/app/store/groups"
	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	invitestore "github.com/dalemusser/ideahub/internal/app/store/invites"
	requeststore "github.com/dalemusser/ideahub/internal/app/store/joinrequests"
	memberstore "github.com/dalemusser/ideahub/internal/app/store/members"
	notificationstore "github.com/dalemusser/ideahub/internal/app/store/notifications"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	votestore "github.com/dalemusser/ideahub/internal/app/store/votes"
	"github.com/dalemusser/ideahub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Bundle groups every store the core uses plus the unit-of-work runner.
type Bundle struct {
	Groups        Groups
	Members       Members
	JoinRequests  JoinRequests
	Invites       Invites
	GroupIdeas    GroupIdeas
	Votes         Votes
	Comments      Comments
	Users         Users
	Ideas         Ideas
	Notifications Notifications
	Txn           txn.Runner
}

// NewMongo wires the Mongo-backed stores for db.
func NewMongo(db *mongo.Database, logger *zap.Logger) Bundle {
	return Bundle{
		Groups:        groupstore.New(db),
		Members:       memberstore.New(db),
		JoinRequests:  requeststore.New(db),
		Invites:       invitestore.New(db),
		GroupIdeas:    groupideastore.New(db),
		Votes:         votestore.New(db),
		Comments:      commentstore.New(db),
		Users:         userstore.New(db),
		Ideas:         ideastore.New(db),
		Notifications: notificationstore.New(db),
		Txn:           txn.NewMongo(db.Client(), logger),
	}
}

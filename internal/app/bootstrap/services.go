// internal/app/bootstrap/services.go
package bootstrap

import (
	auditfeature "github.com/dalemusser/ideahub/internal/app/features/auditlog"
	"github.com/dalemusser/ideahub/internal/app/services/aggregates"
	"github.com/dalemusser/ideahub/internal/app/services/groupideas"
	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/services/stores"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/app/system/notify"
	"go.uber.org/zap"
)

// services is the wired core.
type services struct {
	Stores     stores.Bundle
	Members    *membership.Service
	Ideas      *groupideas.Service
	Aggregates *aggregates.Service
	// Events is nil when audit events are not persisted.
	Events     auditfeature.EventReader
}

// newServices wires the core over the Mongo stores and, when connected, the
// Redis push publisher.
func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) services {
	st := stores.NewMongo(deps.MongoDatabase, logger)
	return wire(appCfg, st, deps, logger)
}

// wire builds the services over any store bundle.
func wire(appCfg AppConfig, st stores.Bundle, deps DBDeps, logger *zap.Logger) services {
	var pub notify.Publisher
	if deps.Redis != nil {
		pub = notify.NewRedisPublisher(deps.Redis, appCfg.RedisChannelPrefix)
	}
	sender := notify.New(st.Notifications, pub, logger, appCfg.NotifyConcurrency)

	var (
		events auditlog.EventStore
		reader auditfeature.EventReader
	)
	if deps.MongoDatabase != nil {
		store := audit.New(deps.MongoDatabase)
		events, reader = store, store
	}
	trail := auditlog.New(events, logger, auditlog.Uniform(appCfg.AuditLog))
	agg := aggregates.New(st, trail, logger)
	agg.SetMaxMembers(appCfg.MaxGroupMembers)

	return services{
		Stores:     st,
		Members:    membership.New(st, sender, trail, logger, appCfg.MaxGroupMembers),
		Ideas:      groupideas.New(st, sender, trail, logger),
		Aggregates: agg,
		Events:     reader,
	}
}

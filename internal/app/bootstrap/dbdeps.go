// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"sync"

	"github.com/dalemusser/ideahub/internal/app/system/ratelimit"
	"github.com/dalemusser/ideahub/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client // nil when push is disabled

	// bg is shared by Startup and Shutdown, which receive DBDeps by value.
	bg *background
}

// background tracks the goroutines owned by the app: the reconciler started
// by Startup and the join limiter built with the handler.
type background struct {
	mu         sync.Mutex
	reconciler *workers.Reconciler
	joinLimit  *ratelimit.JoinLimiter
}

// Package txn runs multi-document writes inside a MongoDB transaction when
// the deployment supports one, and falls back to plain sequential execution
// on a standalone mongod. Callers must write fn so that it is safe to run
// without isolation: every step idempotent, rows before counters.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes fn as one unit of work.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Mongo is a Runner backed by a mongo client session.
type Mongo struct {
	client *mongo.Client
	log    *zap.Logger
}

// NewMongo returns a Runner that uses transactions on client.
func NewMongo(client *mongo.Client, logger *zap.Logger) *Mongo {
	return &Mongo{client: client, log: logger}
}

// Run implements Runner.
func (m *Mongo) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunWithClient(ctx, m.client, m.log, fn)
}

// Run executes fn in a transaction on db's client.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	return RunWithClient(ctx, db.Client(), log, fn)
}

// RunWithClient executes fn in a transaction. If the server cannot run
// transactions, fn is executed directly with ctx.
func RunWithClient(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions not supported; running without", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

// Direct is a Runner that never opens a transaction.
type Direct struct{}

// Run implements Runner.
func (Direct) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone server, unsupported engine).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}
	s := strings.ToLower(err.Error())
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
	switch {
	case strings.Contains(s, "transaction") && has("replica set", "session", "illegal operation"):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	}
	return false
}

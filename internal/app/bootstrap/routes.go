// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditfeature "github.com/dalemusser/ideahub/internal/app/features/auditlog"
	groupideasfeature "github.com/dalemusser/ideahub/internal/app/features/groupideas"
	groupsfeature "github.com/dalemusser/ideahub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/ideahub/internal/app/features/health"
	ideasfeature "github.com/dalemusser/ideahub/internal/app/features/ideas"
	mefeature "github.com/dalemusser/ideahub/internal/app/features/me"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Everything except /health requires a
// verified bearer token.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := newServices(appCfg, deps, logger)
	verifier := identity.NewVerifier(appCfg.JWTSecret, appCfg.JWTIssuer)
	health := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)

	joinLimit := ratelimit.NewJoinLimiter()
	if deps.bg != nil {
		deps.bg.mu.Lock()
		deps.bg.joinLimit = joinLimit
		deps.bg.mu.Unlock()
	}
	return router(svc, verifier, health, joinLimit, logger), nil
}

// router mounts the feature routers. joinLimit may be nil.
func router(svc services, verifier *identity.Verifier, health *healthfeature.Handler, joinLimit *ratelimit.JoinLimiter, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(health))

	r.Group(func(pr chi.Router) {
		pr.Use(verifier.Middleware(logger))

		meHandler := mefeature.NewHandler(svc.Members, svc.Stores.Users, svc.Stores.Notifications, logger)
		pr.Mount("/me", mefeature.Routes(meHandler))

		ideasHandler := ideasfeature.NewHandler(svc.Stores.Ideas, logger)
		pr.Mount("/ideas", ideasfeature.Routes(ideasHandler))

		groupIdeasHandler := groupideasfeature.NewHandler(svc.Ideas, logger)
		auditHandler := auditfeature.NewHandler(svc.Members, svc.Events, logger)
		groupsHandler := groupsfeature.NewHandler(svc.Members, logger)
		groupsHandler.JoinLimit = joinLimit
		pr.Mount("/groups", groupsfeature.Routes(groupsHandler,
			groupideasfeature.Routes(groupIdeasHandler),
			auditfeature.Routes(auditHandler)))
	})

	return r
}

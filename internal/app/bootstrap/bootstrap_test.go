package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	healthfeature "github.com/dalemusser/ideahub/internal/app/features/health"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/ratelimit"
	"github.com/dalemusser/ideahub/internal/app/system/workers"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil/memstore"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "ideahub",
		JWTSecret:         strings.Repeat("k", 40),
		MaxGroupMembers:   10,
		ReconcileInterval: 15 * time.Minute,
		AuditLog:          "all",
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", "prod", func(*AppConfig) {}, false},
		{"dev secret in dev", "dev", func(c *AppConfig) { c.JWTSecret = devJWTSecret }, false},
		{"dev secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = devJWTSecret }, true},
		{"short secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = "short" }, true},
		{"short secret in dev", "dev", func(c *AppConfig) { c.JWTSecret = "short" }, false},
		{"empty secret", "dev", func(c *AppConfig) { c.JWTSecret = "" }, true},
		{"zero cap", "dev", func(c *AppConfig) { c.MaxGroupMembers = 0 }, true},
		{"negative interval", "dev", func(c *AppConfig) { c.ReconcileInterval = -time.Second }, true},
		{"zero interval disables", "dev", func(c *AppConfig) { c.ReconcileInterval = 0 }, false},
		{"bad audit mode", "dev", func(c *AppConfig) { c.AuditLog = "verbose" }, true},
		{"bad redis url", "dev", func(c *AppConfig) { c.RedisURL = "http://nope" }, true},
		{"good redis url", "dev", func(c *AppConfig) { c.RedisURL = "redis://localhost:6379/0" }, false},
		{"no database", "dev", func(c *AppConfig) { c.MongoDatabase = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateApp(tt.env, cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateApp() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	cfg := validConfig()
	logger := zap.NewNop()
	svc := wire(cfg, memstore.New().Bundle(), DBDeps{}, logger)
	verifier := identity.NewVerifier(cfg.JWTSecret, "")
	health := &healthfeature.Handler{Mongo: func(context.Context) error { return nil }, Log: logger}
	joinLimit := ratelimit.NewJoinLimiter()
	defer joinLimit.Stop()
	r := router(svc, verifier, health, joinLimit, logger)

	token, err := verifier.Issue(identity.Caller{UserID: "user-alice", DisplayName: "Alice"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Health is public.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health = %d, want 200", rec.Code)
	}

	// Everything else needs a token.
	for _, path := range []string{"/me/groups", "/ideas/mine", "/groups/65a1b2c3d4e5f60718293a4b"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token = %d, want 401", path, rec.Code)
		}
	}

	// Create a group, then an idea inside it, through the mounted routers.
	req := httptest.NewRequest("POST", "/groups", strings.NewReader(`{"name":"Team A"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /groups = %d: %s", rec.Code, rec.Body.String())
	}
	var g models.Group
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatalf("decode group: %v", err)
	}

	req = httptest.NewRequest("POST", "/groups/"+g.ID.Hex()+"/ideas", strings.NewReader(`{"name":"Dark mode"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /groups/{id}/ideas = %d: %s", rec.Code, rec.Body.String())
	}

	// Without a persisted trail the owner's audit feed is empty, not an error.
	req = httptest.NewRequest("GET", "/groups/"+g.ID.Hex()+"/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /groups/{id}/audit = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestShutdown_StopsReconciler(t *testing.T) {
	cfg := validConfig()
	logger := zap.NewNop()
	svc := wire(cfg, memstore.New().Bundle(), DBDeps{}, logger)

	deps := DBDeps{bg: &background{}}
	deps.bg.reconciler = workers.NewReconciler(svc.Aggregates, logger, time.Hour)
	deps.bg.reconciler.Start()
	deps.bg.joinLimit = ratelimit.NewJoinLimiter()

	if err := Shutdown(context.Background(), nil, cfg, deps, logger); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if deps.bg.reconciler != nil || deps.bg.joinLimit != nil {
		t.Error("background work still registered after Shutdown")
	}

	// A second Shutdown finds nothing left to stop.
	if err := Shutdown(context.Background(), nil, cfg, deps, logger); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

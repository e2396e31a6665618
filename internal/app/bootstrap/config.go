// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// devJWTSecret is accepted only when WAFFLE runs in dev mode.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minJWTSecretLen is the shortest HS256 key accepted outside dev.
const minJWTSecretLen = 32

// appConfigKeys defines the configuration keys for ideahub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: IDEAHUB_MONGO_URI, IDEAHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ideahub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Notification push
	{Name: "redis_url", Default: "", Desc: "Redis URL for notification push (blank disables push)"},
	{Name: "redis_channel_prefix", Default: "ideahub", Desc: "Prefix for the Redis push queue and user channels"},
	{Name: "notify_concurrency", Default: 4, Desc: "Concurrent deliveries per group notification fan-out"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 secret shared with the identity provider (must be strong in production)"},
	{Name: "jwt_issuer", Default: "", Desc: "Required token issuer (blank accepts any)"},

	// Groups
	{Name: "max_group_members", Default: models.DefaultMaxMembers, Desc: "Member cap per group"},

	// Background work
	{Name: "reconcile_interval", Default: "15m", Desc: "How often to repair denormalized counters (0 disables)"},

	// Audit logging
	{Name: "audit_log", Default: "all", Desc: "Group event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, IDEAHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "IDEAHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisURL:           appValues.String("redis_url"),
		RedisChannelPrefix: appValues.String("redis_channel_prefix"),
		NotifyConcurrency:  appValues.Int("notify_concurrency"),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		MaxGroupMembers:   appValues.Int("max_group_members"),
		ReconcileInterval: appValues.Duration("reconcile_interval", 15*time.Minute),
		AuditLog:          appValues.String("audit_log"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here, before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

// validateApp holds the checks that do not depend on WAFFLE.
func validateApp(env string, appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if env != "dev" {
		if appCfg.JWTSecret == devJWTSecret {
			return fmt.Errorf("jwt_secret is the development default; set a real secret outside dev")
		}
		if len(appCfg.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("jwt_secret must be at least %d bytes outside dev", minJWTSecretLen)
		}
	}
	if appCfg.MaxGroupMembers < 1 {
		return fmt.Errorf("max_group_members must be at least 1, got %d", appCfg.MaxGroupMembers)
	}
	if appCfg.ReconcileInterval < 0 {
		return fmt.Errorf("reconcile_interval must not be negative")
	}
	switch appCfg.AuditLog {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log must be one of all, db, log, off; got %q", appCfg.AuditLog)
	}
	if appCfg.RedisURL != "" {
		if _, err := redis.ParseURL(appCfg.RedisURL); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	}
	return nil
}

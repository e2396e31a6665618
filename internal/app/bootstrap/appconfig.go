// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, CORS, body limits); this
// struct carries everything ideahub itself needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Notification push (blank RedisURL disables push; the inbox still works)
	RedisURL           string
	RedisChannelPrefix string
	NotifyConcurrency  int // concurrent deliveries per group fan-out

	// Bearer token verification
	JWTSecret string // HS256 key shared with the identity provider
	JWTIssuer string // required iss claim (blank accepts any)

	// Groups
	MaxGroupMembers int

	// Background counter repair (0 disables the worker)
	ReconcileInterval time.Duration

	// Audit logging: "all" (db+log), "db", "log" or "off"
	AuditLog string
}

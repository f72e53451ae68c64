// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//
// AppConfig is where everything specific to the library lives.
type AppConfig struct {
	// MongoDB connection configuration. An empty URI disables audit storage;
	// the library itself never touches the database.
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: edulibrary-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFKey signs CSRF tokens. Blank in dev generates a per-process key.
	CSRFKey string

	// Audit logging modes: all, db, log, off.
	AuditLogAuth  string
	AuditLogAdmin string

	// SeedFile replaces the embedded catalog when set.
	SeedFile string

	// Per-session library lifetime.
	LibraryIdleTimeout   time.Duration
	LibrarySweepInterval time.Duration

	// MetricsEnabled exposes /metrics and records request latency.
	MetricsEnabled bool
}

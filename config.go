package verso

import (
	"log/slog"
	"time"

	"github.com/verso-dev/verso/pkg/assets"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the main application configuration.
// This is the user-friendly entry point for configuring a Verso app.
type Config struct {
	// Action configures the server-action endpoint.
	Action ActionConfig

	// Static configures static file serving.
	Static StaticConfig

	// DevMode enables development mode: the live-reload WebSocket
	// endpoint is mounted and the static directory is watched for
	// changes. Never enable in production.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// ActionConfig configures the server-action endpoint.
type ActionConfig struct {
	// Path is where action submissions are posted.
	// Default: "/_verso/action".
	Path string

	// ForwardTimeout bounds the server-side fetch performed when a
	// redirect is forwarded on behalf of a payload-aware client.
	// Default: 30 seconds.
	ForwardTimeout time.Duration
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory containing static files (e.g., "public").
	// Ignored when Store is set.
	Dir string

	// Store overrides the backend static files are read from. When nil
	// and Dir is set, a local directory store is used.
	Store assets.Store

	// Prefix is the URL path prefix for static files (e.g., "/static/").
	// A file at public/styles.css with Prefix="/" is served at /styles.css.
	// Default: "/".
	Prefix string

	// CacheControl determines caching behavior for static files.
	// Default: CacheControlNone (no caching headers).
	CacheControl CacheControlStrategy

	// Headers are custom headers added to all static file responses.
	Headers map[string]string
}

// CacheControlStrategy determines caching behavior for static files.
type CacheControlStrategy int

const (
	// CacheControlNone adds no-store headers.
	// Use in development for instant updates.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction uses appropriate caching:
	// - Fingerprinted files (*.abc123.css): immutable, 1 year max-age
	// - Other files: short cache with revalidation
	CacheControlProduction
)

// =============================================================================
// Default Configurations
// =============================================================================

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Action: DefaultActionConfig(),
		Static: DefaultStaticConfig(),
	}
}

// DefaultActionConfig returns an ActionConfig with sensible defaults.
func DefaultActionConfig() ActionConfig {
	return ActionConfig{
		Path:           "/_verso/action",
		ForwardTimeout: 30 * time.Second,
	}
}

// DefaultStaticConfig returns a StaticConfig with sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		Prefix:       "/",
		CacheControl: CacheControlNone,
	}
}

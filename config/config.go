// Package config provides configuration management for scoutindex.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for scoutindex.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Data is the on-disk data layout configuration.
	Data DataConfig `mapstructure:"data" validate:"required"`

	// Index is the indexing and scoring configuration.
	Index IndexConfig `mapstructure:"index" validate:"required"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host" validate:"omitempty,host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server timeout configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`

	// RequestTimeout bounds the duration of a single request handler.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the client.
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// DataConfig holds the on-disk data root and the file layout beneath it,
// matching the external interface contract.
type DataConfig struct {
	// Root is the data root directory.
	Root string `mapstructure:"root" validate:"required"`

	// LexiconPath is relative to Root: index/lexicon_complete.json.
	LexiconPath string `mapstructure:"lexicon_path" validate:"required"`

	// ForwardIndexPath is relative to Root: index/forward_index_termid.json.
	ForwardIndexPath string `mapstructure:"forward_index_path" validate:"required"`

	// BarrelsDir is relative to Root: index/barrels.
	BarrelsDir string `mapstructure:"barrels_dir" validate:"required"`

	// RoutingTablePath is relative to BarrelsDir: term_to_barrel_map.json.
	RoutingTablePath string `mapstructure:"routing_table_path" validate:"required"`

	// MarketValueDir is relative to Root: raw/player_latest_market_value.
	MarketValueDir string `mapstructure:"market_value_dir"`

	// ProfilesPath is relative to Root: processed/complete_player_profiles.json.
	ProfilesPath string `mapstructure:"profiles_path"`
}

// IndexConfig holds indexing, caching and scoring tunables.
type IndexConfig struct {
	// BarrelCacheSize is the bounded barrel cache capacity C.
	BarrelCacheSize int `mapstructure:"barrel_cache_size" validate:"min=1"`

	// InitialShards is the number of barrels seeded into a fresh routing
	// table, fixing the shard-count K before the first document arrives.
	// An existing routing table that already spans more shards wins.
	InitialShards int `mapstructure:"initial_shards" validate:"min=1"`

	// QueryBudgetMS is the soft query latency budget in milliseconds.
	QueryBudgetMS int `mapstructure:"query_budget_ms" validate:"min=1"`

	// AddDocumentBudgetSeconds is the add-document budget in seconds.
	AddDocumentBudgetSeconds int `mapstructure:"add_document_budget_seconds" validate:"min=1"`

	// BM25 holds the BM25 tuning constants.
	BM25 BM25Config `mapstructure:"bm25"`

	// Boosts holds the name-match and metadata boost tuning constants.
	Boosts BoostConfig `mapstructure:"boosts"`
}

// BM25Config holds the BM25 tuning constants.
type BM25Config struct {
	K1 float64 `mapstructure:"k1" validate:"min=0"`
	B  float64 `mapstructure:"b" validate:"min=0,max=1"`
}

// BoostConfig holds the empirical name-match and metadata boost constants.
// They are tuning values, not derived quantities, so they are exposed as
// configuration.
type BoostConfig struct {
	NameTokenHit        float64 `mapstructure:"name_token_hit" validate:"nonnegative"`
	NameExactMatch      float64 `mapstructure:"name_exact_match" validate:"nonnegative"`
	NamePrefixMatch     float64 `mapstructure:"name_prefix_match" validate:"nonnegative"`
	RawSubstringMatch   float64 `mapstructure:"raw_substring_match" validate:"nonnegative"`
	NoNameMatchPenalty  float64 `mapstructure:"no_name_match_penalty" validate:"penalty"`
	MarketValueWeight   float64 `mapstructure:"market_value_weight" validate:"nonnegative"`
	ProfileLengthWeight float64 `mapstructure:"profile_length_weight" validate:"nonnegative"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the tracing backend (stdout).
	Exporter string `mapstructure:"exporter" validate:"oneof=stdout none"`

	// SampleRate is the fraction of traces to sample (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Env: %s, DataRoot: %s}",
		c.App.Name, c.Server.Port, c.App.Environment, c.Data.Root)
}

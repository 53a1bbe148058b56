// Package config provides environment-driven configuration for papergraph.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/persistorai/papergraph/internal/dbpool"
	"github.com/persistorai/papergraph/internal/lookup"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL      Secret
	DBMaxConns       int32
	DBMinConns       int32
	StatementTimeout time.Duration

	Port        string
	ListenHost  string
	MetricsPort string
	CORSOrigins []string
	LogLevel    string
	HSTS        bool

	SemanticScholarURL    string
	SemanticScholarAPIKey Secret
	CrossrefURL           string
	CrossrefMailto        string
	ArxivURL              string
	LookupTimeout         time.Duration
	ResolveTimeout        time.Duration
	DOILookups            []string

	TagSiblingOrder    string
	TagDuplicatePolicy string
	TagEmptySegments   string
	EnrichWorkers      int
	EnrichQueueSize    int
	BackfillOnStart    bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:           Secret(envOrDefault("DATABASE_URL", "")),
		Port:                  envOrDefault("PORT", "3040"),
		ListenHost:            envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:           envOrDefault("METRICS_PORT", "9092"),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
		SemanticScholarURL:    envOrDefault("SEMANTIC_SCHOLAR_URL", lookup.DefaultSemanticScholarURL),
		SemanticScholarAPIKey: Secret(envOrDefault("SEMANTIC_SCHOLAR_API_KEY", "")),
		CrossrefURL:           envOrDefault("CROSSREF_URL", lookup.DefaultCrossrefURL),
		CrossrefMailto:        envOrDefault("CROSSREF_MAILTO", ""),
		ArxivURL:              envOrDefault("ARXIV_URL", lookup.DefaultArxivURL),
		TagSiblingOrder:       envOrDefault("TAG_SIBLING_ORDER", string(taxonomy.OrderSorted)),
		TagDuplicatePolicy:    envOrDefault("TAG_DUPLICATE_POLICY", string(taxonomy.DuplicateOverwrite)),
		TagEmptySegments:      envOrDefault("TAG_EMPTY_SEGMENTS", string(taxonomy.EmptySkip)),
		BackfillOnStart:       envOrDefault("BACKFILL_ON_START", "false") == "true",
		HSTS:                  envOrDefault("HSTS_ENABLED", "false") == "true",
		CORSOrigins:           splitList(envOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		DOILookups:            splitList(envOrDefault("DOI_LOOKUPS", lookup.NameSemanticScholar+","+lookup.NameCrossref)),
	}

	if err := cfg.loadNumbers(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadNumbers() error {
	var err error

	if c.EnrichWorkers, err = intInRange("ENRICH_WORKERS", "2", 1, 16); err != nil {
		return err
	}

	if c.EnrichQueueSize, err = intInRange("ENRICH_QUEUE_SIZE", "1000", 1, 100000); err != nil {
		return err
	}

	maxConns, err := intInRange("DB_MAX_CONNS", "11", 2, 200)
	if err != nil {
		return err
	}

	minConns, err := intInRange("DB_MIN_CONNS", "1", 0, 200)
	if err != nil {
		return err
	}

	c.DBMaxConns, c.DBMinConns = int32(maxConns), int32(minConns) //nolint:gosec // bounded above.

	if c.StatementTimeout, err = duration("DB_STATEMENT_TIMEOUT", "30s"); err != nil {
		return err
	}

	if c.LookupTimeout, err = duration("LOOKUP_TIMEOUT", "10s"); err != nil {
		return err
	}

	if c.ResolveTimeout, err = duration("RESOLVE_TIMEOUT", "45s"); err != nil {
		return err
	}

	return nil
}

// Addr returns the API listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// PoolOptions returns the database pool settings.
func (c *Config) PoolOptions() dbpool.Options {
	return dbpool.Options{MaxConns: c.DBMaxConns, MinConns: c.DBMinConns, StatementTimeout: c.StatementTimeout}
}

// Lookup returns the upstream lookup client settings.
func (c *Config) Lookup() lookup.Config {
	return lookup.Config{
		SemanticScholarURL:    c.SemanticScholarURL,
		SemanticScholarAPIKey: c.SemanticScholarAPIKey.Value(),
		CrossrefURL:           c.CrossrefURL,
		CrossrefMailto:        c.CrossrefMailto,
		ArxivURL:              c.ArxivURL,
		Timeout:               c.LookupTimeout,
		DOIOrder:              c.DOILookups,
	}
}

// TagOptions returns the default tag hierarchy build options.
func (c *Config) TagOptions() taxonomy.Options {
	return taxonomy.Options{
		Order:         taxonomy.SiblingOrder(c.TagSiblingOrder),
		Duplicates:    taxonomy.DuplicatePolicy(c.TagDuplicatePolicy),
		EmptySegments: taxonomy.EmptySegments(c.TagEmptySegments),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func intInRange(key, fallback string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return v, nil
}

func duration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 10s", key)
	}

	return d, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

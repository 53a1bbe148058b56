package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/lookup"
)

func (c *Config) validate() error {
	checks := []func() error{
		c.validateDatabase,
		c.validateNetwork,
		c.validateCORS,
		c.validateLookups,
		c.validateTags,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	if !isLoopback(dbURL.Hostname()) && dbURL.Query().Get("sslmode") == "disable" {
		return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbURL.Hostname())
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := parsePort("PORT", c.Port)
	if err != nil {
		return err
	}

	metricsPort, err := parsePort("METRICS_PORT", c.MetricsPort)
	if err != nil {
		return err
	}

	if metricsPort == port {
		return fmt.Errorf("METRICS_PORT must differ from PORT")
	}

	// 0.0.0.0 and :: are for containers where the network boundary is
	// enforced outside the process.
	switch c.ListenHost {
	case "127.0.0.1", "::1", "localhost", "0.0.0.0", "::":
	default:
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcards or glob characters, got %q", origin)
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateLookups() error {
	for key, raw := range map[string]string{
		"SEMANTIC_SCHOLAR_URL": c.SemanticScholarURL,
		"CROSSREF_URL":         c.CrossrefURL,
		"ARXIV_URL":            c.ArxivURL,
	} {
		u, err := url.ParseRequestURI(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%s is not a valid URL: %q", key, raw)
		}

		if u.Scheme != "https" && !isLoopback(u.Hostname()) {
			return fmt.Errorf("%s must use HTTPS for non-local hosts", key)
		}
	}

	if len(c.DOILookups) == 0 {
		return fmt.Errorf("DOI_LOOKUPS must name at least one service")
	}

	seen := map[string]bool{}

	for _, name := range c.DOILookups {
		name = strings.ToLower(name)
		if name != lookup.NameSemanticScholar && name != lookup.NameCrossref {
			return fmt.Errorf("DOI_LOOKUPS: unknown service %q (want %s or %s)", name, lookup.NameSemanticScholar, lookup.NameCrossref)
		}

		if seen[name] {
			return fmt.Errorf("DOI_LOOKUPS lists %q twice", name)
		}

		seen[name] = true
	}

	if c.CrossrefMailto != "" && !strings.Contains(c.CrossrefMailto, "@") {
		return fmt.Errorf("CROSSREF_MAILTO must be an email address")
	}

	return nil
}

func (c *Config) validateTags() error {
	if err := c.TagOptions().Validate(); err != nil {
		return fmt.Errorf("TAG_* settings: %w", err)
	}

	return nil
}

func parsePort(key, value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}

	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 1 and 65535", key)
	}

	return port, nil
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

package config

// Version is the papergraph binary version, set at build time via
// -ldflags "-X github.com/persistorai/papergraph/internal/config.Version=<tag>".
var Version = "dev"

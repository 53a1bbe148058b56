package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/papergraph/client"
	"github.com/persistorai/papergraph/internal/config"
)

const defaultURL = "http://localhost:3040"

// Build-time variables set via ldflags.
var (
	commit    = ""
	buildDate = ""
)

var (
	apiClient *client.Client
	flagURL   string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("papergraph version %s (commit: %s, built: %s)", config.Version, commit, buildDate)
	}
	return fmt.Sprintf("papergraph version %s-dev", config.Version)
}

// configFile is ~/.papergraph/config.yaml. A flat url wins only when no
// profile supplies one.
type configFile struct {
	URL           string                   `yaml:"url"`
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL string `yaml:"url"`
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "papergraph",
		Short:   "papergraph: a research paper graph with a tag hierarchy and metadata lookups",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL, client.WithUserAgent("papergraph-cli/"+config.Version))
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "papergraph server URL (env: PAPERGRAPH_URL)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	serveCmd := newServeCmd()
	serveCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // the server reads env config itself

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newNodeCmd())
	rootCmd.AddCommand(newEntryCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig fills flagURL from the environment and then the config
// file, unless the flag was set explicitly.
func resolveConfig() {
	if flagURL != defaultURL {
		return
	}

	if v := os.Getenv("PAPERGRAPH_URL"); v != "" {
		flagURL = v
		return
	}

	cfg, err := loadConfigFile(configPath())
	if err != nil {
		return
	}

	if u := cfg.resolvedURL(); u != "" {
		flagURL = u
	}
}

func configPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".papergraph", "config.yaml")
}

func loadConfigFile(path string) (*configFile, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *configFile) resolvedURL() string {
	if c.Profiles != nil {
		name := c.ActiveProfile
		if name == "" {
			name = "default"
		}
		if p, ok := c.Profiles[name]; ok && p.URL != "" {
			return p.URL
		}
	}
	return c.URL
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}

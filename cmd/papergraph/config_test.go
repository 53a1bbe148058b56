package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	origURL, origFmt := flagURL, flagFmt
	t.Cleanup(func() {
		flagURL = origURL
		flagFmt = origFmt
	})
}

// writeConfig creates ~/.papergraph/config.yaml under a temp HOME.
func writeConfig(t *testing.T, content string) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	if content == "" {
		return
	}

	dir := filepath.Join(home, ".papergraph")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		content string
		want    string
	}{
		{
			name: "env overrides default",
			flag: defaultURL, env: "http://env-server:9090",
			want: "http://env-server:9090",
		},
		{
			name: "explicit flag wins over env",
			flag: "http://explicit:1234", env: "http://env-server:9090",
			want: "http://explicit:1234",
		},
		{
			name: "env wins over file",
			flag: defaultURL, env: "http://env-server:9090", content: "url: http://file:9000\n",
			want: "http://env-server:9090",
		},
		{
			name: "flat file",
			flag: defaultURL, content: "url: http://from-file:8080\n",
			want: "http://from-file:8080",
		},
		{
			name: "active profile",
			flag: defaultURL,
			content: `
active_profile: staging
url: http://flat:1
profiles:
  default:
    url: http://default:3040
  staging:
    url: http://staging:4040
`,
			want: "http://staging:4040",
		},
		{
			name: "default profile when none active",
			flag: defaultURL,
			content: `
profiles:
  default:
    url: http://default-profile:5050
`,
			want: "http://default-profile:5050",
		},
		{
			name: "missing active profile falls back to flat url",
			flag: defaultURL,
			content: `
active_profile: prod
url: http://flat:7070
profiles:
  default:
    url: http://default:3040
`,
			want: "http://flat:7070",
		},
		{
			name: "missing file keeps default",
			flag: defaultURL,
			want: defaultURL,
		},
		{
			name: "invalid yaml keeps default",
			flag: defaultURL, content: ":::not-yaml:::",
			want: defaultURL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			writeConfig(t, tc.content)
			t.Setenv("PAPERGRAPH_URL", tc.env)

			flagURL = tc.flag
			resolveConfig()

			if flagURL != tc.want {
				t.Errorf("flagURL = %q, want %q", flagURL, tc.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	origCommit, origDate := commit, buildDate
	defer func() { commit, buildDate = origCommit, origDate }()

	commit, buildDate = "", ""
	if s := versionString(); !strings.HasSuffix(s, "-dev") {
		t.Errorf("expected -dev suffix for dev build, got %q", s)
	}

	commit, buildDate = "abc1234", "2026-01-01"
	s := versionString()
	if !strings.Contains(s, "abc1234") || !strings.Contains(s, "2026-01-01") {
		t.Errorf("release version string missing build info: %q", s)
	}
	if strings.HasSuffix(s, "-dev") {
		t.Errorf("release build should not have -dev suffix, got %q", s)
	}
}

package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds the real command tree with PersistentPreRun stubbed
// out so the API client is never initialised.
func newTestRoot() *cobra.Command {
	root := newRootCmd()
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {}
	return root
}

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "node get without id", args: []string{"node", "get"}},
		{name: "node get with two ids", args: []string{"node", "get", "a", "b"}},
		{name: "node metadata without id", args: []string{"node", "metadata"}},
		{name: "resolve without reference", args: []string{"resolve"}},
		{name: "entry add without name", args: []string{"entry", "add"}},
		{name: "import without file", args: []string{"import"}},
		{name: "tree with positional arg", args: []string{"tree", "ML"}},
		{name: "serve with positional arg", args: []string{"serve", "now"}},
		{name: "admin backfill with positional arg", args: []string{"admin", "backfill-metadata", "10"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := executeArgs(t, newTestRoot(), tc.args...); err == nil {
				t.Errorf("expected arg validation error for %v", tc.args)
			}
		})
	}
}

func TestUnknownFlag(t *testing.T) {
	if err := executeArgs(t, newTestRoot(), "tree", "--nope"); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"doctor"},
		{"tree"},
		{"graph"},
		{"resolve"},
		{"node", "get"},
		{"node", "metadata"},
		{"entry", "add"},
		{"import"},
		{"admin", "backfill-metadata"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered (got %v, %v)", path, cmd, err)
		}
	}
}

func TestTreeFlags(t *testing.T) {
	cmd := newTreeCmd()

	for _, name := range []string{"order", "duplicates", "empty-segments", "collapsed"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("tree is missing --%s", name)
		}
	}
}

func TestEntryAddFlags(t *testing.T) {
	cmd := entryAddCmd()

	for _, name := range []string{"tag", "link", "date", "user"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("entry add is missing --%s", name)
		}
	}
}

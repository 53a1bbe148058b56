package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/papergraph/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against the config file, the server, its database and its lookup services",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			results := runDoctor(ctx, apiClient, configPath())
			if !printResults(os.Stdout, results) {
				return errors.New("doctor found issues")
			}
			return nil
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(ctx context.Context, c *client.Client, cfgPath string) []checkResult {
	var results []checkResult

	// The config file is optional; a missing one is reported, not failed.
	if _, err := loadConfigFile(cfgPath); err != nil {
		detail := "not found, using flags and environment"
		if !errors.Is(err, os.ErrNotExist) {
			detail = err.Error()
		}
		results = append(results, checkResult{Name: "Config file", Passed: !isParseError(err), Detail: detail})
	} else {
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: cfgPath})
	}

	health, err := c.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Detail: flagURL,
			Hint: fmt.Sprintf("Is papergraph serve running? Error: %v", err),
		})
	}
	results = append(results, checkResult{Name: "Server reachable", Passed: true, Detail: "v" + health.Version})

	ready, err := c.Ready(ctx)
	switch {
	case ready != nil:
		for _, name := range sortedKeys(ready.Checks) {
			state := ready.Checks[name]
			results = append(results, checkResult{Name: "Ready: " + name, Passed: state == "ok", Detail: state})
		}
	case err != nil:
		results = append(results, checkResult{Name: "Readiness", Detail: err.Error()})
	}

	for _, name := range sortedKeys(health.Lookups) {
		state := health.Lookups[name]
		r := checkResult{Name: "Lookup " + name, Passed: state == "closed", Detail: "breaker " + state}
		if !r.Passed {
			r.Hint = "The upstream failed repeatedly and is paused. Resolution skips it and may report no metadata until it recovers."
		}
		results = append(results, r)
	}

	return results
}

func isParseError(err error) bool {
	return err != nil && !errors.Is(err, os.ErrNotExist)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// printResults writes one line per check and reports whether all passed.
func printResults(w io.Writer, results []checkResult) bool {
	fmt.Fprintln(w, "\npapergraph doctor")
	fmt.Fprintln(w, "=================")
	fmt.Fprintln(w)

	allPassed := true
	for _, r := range results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
			allPassed = false
		}

		if r.Detail != "" {
			fmt.Fprintf(w, "%s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(w, "%s %s\n", mark, r.Name)
		}

		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(w, "   Hint: %s\n", r.Hint)
		}
	}

	fmt.Fprintln(w)
	if allPassed {
		fmt.Fprintln(w, "✅ All checks passed!")
	} else {
		fmt.Fprintln(w, "❌ Some checks failed.")
	}
	return allPassed
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server, storage and auth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(ctx context.Context) error {
	fmt.Println("\nKinship Doctor")
	fmt.Println("==============")

	results := doctorChecks(ctx)

	fmt.Println()
	allPassed := true
	for _, r := range results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
			allPassed = false
		}

		if r.Detail != "" {
			fmt.Printf("%s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("%s %s\n", mark, r.Name)
		}

		if !r.Passed && r.Hint != "" {
			fmt.Printf("   Hint: %s\n", r.Hint)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("❌ Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Println("✅ All checks passed!")
	return nil
}

func doctorChecks(ctx context.Context) []checkResult {
	var results []checkResult

	cfgPath, cfg, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{Name: "Config file", Detail: cfgPath, Hint: "Run: kinship init"})
	} else {
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: fmt.Sprintf("found (%s)", cfgPath)})
	}

	url, apiKey := resolveSettings(flagURL, flagKey, cfg)
	results = append(results, checkResult{Name: "Server URL", Passed: true, Detail: url})

	if apiKey == "" {
		results = append(results, checkResult{Name: "API key", Hint: "Set --api-key, " + envAPIKey + ", or run kinship init"})
	} else {
		results = append(results, checkResult{Name: "API key", Passed: true, Detail: "configured"})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := newClient(url, apiKey)

	health, err := c.Health(ctx)
	if err != nil {
		results = append(results, checkResult{
			Name: "Server reachable", Detail: url,
			Hint: fmt.Sprintf("Is the kinship server running? Try: kinship serve\n   Error: %v", err),
		})
		return results
	}
	results = append(results, checkResult{
		Name: "Server reachable", Passed: true,
		Detail: fmt.Sprintf("v%s, %s storage", health.Version, health.Storage),
	})

	ready, err := c.Ready(ctx)
	switch {
	case err == nil:
		results = append(results, checkResult{Name: "Storage ready", Passed: true, Detail: "database and schema ok"})
	case ready != nil:
		results = append(results, checkResult{
			Name: "Storage ready", Detail: fmt.Sprintf("database=%s schema=%s", ready.Checks["database"], ready.Checks["schema"]),
			Hint: "Run: kinship migrate",
		})
	default:
		results = append(results, checkResult{Name: "Storage ready", Hint: err.Error()})
	}

	if apiKey != "" {
		if _, err := c.Stats(ctx); err != nil {
			hint := fmt.Sprintf("Check your API key. Error: %v", err)
			if client.IsUnauthorized(err) {
				hint = "The server rejected the API key. Create one with: kinship tenant create <name>"
			}
			results = append(results, checkResult{Name: "Authentication", Hint: hint})
		} else {
			results = append(results, checkResult{Name: "Authentication", Passed: true, Detail: "valid"})
		}
	}

	return results
}

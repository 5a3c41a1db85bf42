package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

var (
	apiClient *client.Client
	flagURL   string
	flagKey   string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("kinship version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("kinship version %s-dev", version)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "kinship",
		Short:   "Kinship CLI: family graphs and relationship labels",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = newClient(flagURL, flagKey)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", client.DefaultURL, "Kinship server URL (env: KINSHIP_URL)")
	rootCmd.PersistentFlags().StringVar(&flagKey, "api-key", "", "API key (env: KINSHIP_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	// These run without a server.
	noClient := func(cmd *cobra.Command, args []string) {}
	for _, c := range []*cobra.Command{newInitCmd(), newDoctorCmd(), newResolveCmd(), newBenchCmd()} {
		c.PersistentPreRun = noClient
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(newPersonCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newRelationCmd())
	rootCmd.AddCommand(newChainCmd())
	rootCmd.AddCommand(newAncestorsCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newAuditCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds an API client that identifies itself as this CLI build.
func newClient(url, apiKey string) *client.Client {
	opts := []client.Option{client.WithUserAgent("kinship-cli/" + version)}
	if apiKey != "" {
		opts = append(opts, client.WithAPIKey(apiKey))
	}

	return client.New(url, opts...)
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/client"
)

func newInitCmd() *cobra.Command {
	var url, apiKey string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up CLI configuration",
		Long: "Writes ~/.kinship/config.yaml after checking the server accepts the key.\n" +
			"Without --url or --api-key it asks for both interactively.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := setup{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), url: url, apiKey: apiKey}
			s.interactive = url == "" && apiKey == ""

			return s.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Server URL (skips the prompts)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (skips the prompts)")

	return cmd
}

// setup is one run of the init wizard.
type setup struct {
	in          io.Reader
	out         io.Writer
	url         string
	apiKey      string
	interactive bool
}

func (s *setup) say(format string, args ...any) {
	if s.interactive {
		fmt.Fprintf(s.out, format, args...)
	}
}

func (s *setup) prompt() {
	r := bufio.NewReader(s.in)
	ask := func(label string) string {
		fmt.Fprint(s.out, label)
		line, _ := r.ReadString('\n') //nolint:errcheck // EOF leaves the answer empty.
		return strings.TrimSpace(line)
	}

	fmt.Fprintln(s.out, "\n  Kinship Setup")
	fmt.Fprintln(s.out, "  ─────────────")
	fmt.Fprintln(s.out)

	s.url = ask(fmt.Sprintf("  Server URL [%s]: ", client.DefaultURL))
	s.apiKey = ask("  API Key: ")
}

func (s *setup) run(ctx context.Context) error {
	if s.interactive {
		s.prompt()
	}

	if s.url == "" {
		s.url = client.DefaultURL
	}

	if s.apiKey == "" {
		return errors.New("API key is required")
	}

	s.say("\n  Testing connection... ")

	ver, err := testConnection(ctx, s.url, s.apiKey)
	if err != nil {
		s.say("✗\n")
		return fmt.Errorf("connection failed: %w", err)
	}

	s.say("✓ Connected (v%s)\n", ver)

	path, err := writeConfig(s.url, s.apiKey)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if !s.interactive {
		fmt.Fprintf(s.out, "Config saved to %s\n", path)
		return nil
	}

	fmt.Fprintf(s.out, "\n  ✓ Config saved to %s\n\n", path)
	fmt.Fprintln(s.out, "  Next steps:")
	fmt.Fprintln(s.out, "    kinship doctor         # Full diagnostic check")
	fmt.Fprintln(s.out, "    kinship person list    # View your family")
	fmt.Fprintln(s.out, "    kinship resolve f.yaml # Label a family file offline")
	fmt.Fprintln(s.out)

	return nil
}

// testConnection checks the server is up and accepts the key, returning the
// server version.
func testConnection(ctx context.Context, url, apiKey string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := newClient(url, apiKey)

	health, err := c.Health(ctx)
	if err != nil {
		return "", err
	}

	if _, err := c.Stats(ctx); err != nil {
		return "", err
	}

	if health.Version == "" {
		return "unknown", nil
	}

	return health.Version, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a tenant and print its API key",
		Long:  "Create a tenant. The API key is shown once; only its hash is stored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("tenant name must not be blank")
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			be, err := openBackend(cmd.Context(), cfg, log, "")
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			defer be.close()

			id, key, err := be.tenants.CreateTenant(cmd.Context(), name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tenant_id: %s\n", id)
			fmt.Fprintf(out, "api_key:   %s\n", key)

			return nil
		},
	})

	return cmd
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/client"
)

type linkFunc func(ctx context.Context, personID, otherID string) (*client.Person, error)

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Add or remove parent and partner links",
	}

	cmd.AddCommand(newLinkOpCmd("parent <child-id> <parent-id>", "Record that parent-id is a parent of child-id",
		func(ctx context.Context, a, b string) (*client.Person, error) { return apiClient.Links.AddParent(ctx, a, b) }))
	cmd.AddCommand(newLinkOpCmd("unparent <child-id> <parent-id>", "Remove a parent link",
		func(ctx context.Context, a, b string) (*client.Person, error) {
			return apiClient.Links.RemoveParent(ctx, a, b)
		}))
	cmd.AddCommand(newLinkOpCmd("partner <person-id> <partner-id>", "Record a partnership (both directions)",
		func(ctx context.Context, a, b string) (*client.Person, error) {
			return apiClient.Links.AddPartner(ctx, a, b)
		}))
	cmd.AddCommand(newLinkOpCmd("unpartner <person-id> <partner-id>", "Remove a partnership",
		func(ctx context.Context, a, b string) (*client.Person, error) {
			return apiClient.Links.RemovePartner(ctx, a, b)
		}))

	return cmd
}

func newLinkOpCmd(use, short string, fn linkFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fn(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", cmd.Name(), err)
			}

			printPeople([]client.Person{*p}, p)
			return nil
		},
	}
}

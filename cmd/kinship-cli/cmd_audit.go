package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/client"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect or prune the family change history",
	}

	cmd.AddCommand(newAuditListCmd())
	cmd.AddCommand(newAuditPurgeCmd())

	return cmd
}

func newAuditListCmd() *cobra.Command {
	var (
		opts  client.AuditQueryOptions
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since > 0 {
				t := time.Now().Add(-since)
				opts.Since = &t
			}

			page, err := apiClient.Audit.Query(cmd.Context(), &opts)
			if err != nil {
				return fmt.Errorf("list audit entries: %w", err)
			}

			printAudit(page)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.EntityID, "person", "", "Only changes to this person")
	cmd.Flags().StringVar(&opts.Action, "action", "", "Only this action, e.g. person.create")
	cmd.Flags().DurationVar(&since, "since", 0, "Only changes newer than this, e.g. 24h")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum entries")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Entries to skip")

	return cmd
}

func newAuditPurgeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete changes older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}

			n, err := apiClient.Audit.Purge(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("purge audit log: %w", err)
			}

			output(map[string]int{"deleted": n}, strconv.Itoa(n))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (server default when 0)")

	return cmd
}

func printAudit(page *client.AuditPage) {
	switch flagFmt {
	case "quiet":
		for _, e := range page.Entries {
			formatQuiet(e.Action + "\t" + e.EntityID)
		}
	case "table":
		rows := make([][]string, 0, len(page.Entries))
		for _, e := range page.Entries {
			rows = append(rows, []string{e.CreatedAt.Local().Format(time.DateTime), e.Action, e.EntityType, e.EntityID})
		}
		formatTable([]string{"WHEN", "ACTION", "TYPE", "ENTITY"}, rows)
	default:
		formatJSON(page)
	}
}

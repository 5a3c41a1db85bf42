package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/internal/db"
	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/service"
	"github.com/persistorai/kinship/internal/store/sqlite"
)

func newMigrateCmd() *cobra.Command {
	var (
		fromSQLite string
		tenants    []string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Long: "Apply pending migrations to the configured storage engine.\n\n" +
			"With --from-sqlite, also copy tenants and their families from a SQLite\n" +
			"database into the configured engine. Tenant ids and API keys carry over,\n" +
			"and people already present in the target are overwritten.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			be, err := openBackend(cmd.Context(), cfg, log, "")
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer be.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s schema at version %d\n", cfg.StorageEngine, db.SchemaVersion())

			if fromSQLite == "" {
				return nil
			}

			if cfg.StorageEngine == "sqlite" && cfg.SQLitePath == fromSQLite {
				return fmt.Errorf("migrate: --from-sqlite is the configured database")
			}

			src, err := sqlite.Open(cmd.Context(), fromSQLite, log)
			if err != nil {
				return fmt.Errorf("opening source: %w", err)
			}
			defer src.Close() //nolint:errcheck // read side.

			c := copier{src: src, dst: be, log: log, only: tenants, dryRun: dryRun}

			report, err := c.run(cmd.Context())
			report.print(out)

			return err
		},
	}

	cmd.Flags().StringVar(&fromSQLite, "from-sqlite", "", "Copy data from this SQLite database")
	cmd.Flags().StringSliceVar(&tenants, "tenant", nil, "Only copy these tenant ids (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Read and validate the source without writing")

	return cmd
}

// copySource is the read side of a copy.
type copySource interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	LoadFamily(ctx context.Context, tenantID string) ([]models.Person, error)
}

// copier moves whole tenants from one store into another.
type copier struct {
	src    copySource
	dst    *backend
	log    *logrus.Logger
	only   []string
	dryRun bool
}

// tenantCopy is one row of the copy report.
type tenantCopy struct {
	tenant   models.Tenant
	read     int
	written  int
	verified int
	err      error
}

type copyReport struct {
	rows   []tenantCopy
	took   time.Duration
	dryRun bool
}

func (c *copier) run(ctx context.Context) (*copyReport, error) {
	start := time.Now()
	report := &copyReport{dryRun: c.dryRun}

	tenants, err := c.src.ListTenants(ctx)
	if err != nil {
		return report, err
	}

	var failed int

	for _, t := range tenants {
		if len(c.only) > 0 && !slices.Contains(c.only, t.ID) {
			continue
		}

		row := c.copyTenant(ctx, t)
		if row.err != nil {
			failed++
			c.log.WithError(row.err).WithField("tenant_id", t.ID).Error("tenant copy failed")
		}

		report.rows = append(report.rows, row)
	}

	report.took = time.Since(start)

	if failed > 0 {
		return report, fmt.Errorf("%d of %d tenants failed to copy", failed, len(report.rows))
	}

	return report, nil
}

// copyTenant copies one tenant's family and re-reads it from the target to
// check every person arrived.
func (c *copier) copyTenant(ctx context.Context, t models.Tenant) tenantCopy {
	row := tenantCopy{tenant: t}

	people, err := c.src.LoadFamily(ctx, t.ID)
	if err != nil {
		row.err = fmt.Errorf("reading family: %w", err)
		return row
	}
	row.read = len(people)

	snap, err := service.NewSnapshot(people)
	if err == nil {
		err = snap.Graph.Validate()
	}
	if err != nil {
		row.err = fmt.Errorf("source family is inconsistent: %w", err)
		return row
	}

	if c.dryRun {
		return row
	}

	if err := c.dst.tenants.RestoreTenant(ctx, t); err != nil {
		row.err = err
		return row
	}

	res, err := c.dst.family.ImportFamily(ctx, t.ID, people, true)
	if err != nil {
		row.err = fmt.Errorf("writing family: %w", err)
		return row
	}
	row.written = res.PeopleCreated + res.PeopleUpdated

	copied, err := c.dst.family.LoadFamily(ctx, t.ID)
	if err != nil {
		row.err = fmt.Errorf("verifying family: %w", err)
		return row
	}
	row.verified = len(copied)

	if row.verified < row.read {
		row.err = fmt.Errorf("verification found %d of %d people", row.verified, row.read)
	}

	return row
}

func (r *copyReport) print(w io.Writer) {
	if r == nil || len(r.rows) == 0 {
		fmt.Fprintln(w, "no tenants copied")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TENANT\tNAME\tREAD\tWRITTEN\tVERIFIED\tSTATUS")

	for _, row := range r.rows {
		status := "ok"
		switch {
		case row.err != nil:
			status = "FAILED: " + row.err.Error()
		case r.dryRun:
			status = "dry run"
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", row.tenant.ID, row.tenant.Name, row.read, row.written, row.verified, status)
	}

	tw.Flush() //nolint:errcheck // report output.
	fmt.Fprintf(w, "copied %d tenants in %s\n", len(r.rows), r.took.Round(time.Millisecond))
}

package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/config"
	"github.com/persistorai/kinship/internal/db"
	"github.com/persistorai/kinship/internal/dbpool"
	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/service"
	"github.com/persistorai/kinship/internal/store"
	"github.com/persistorai/kinship/internal/store/sqlite"
)

type familyStore interface {
	domain.FamilyLoader
	ImportFamily(ctx context.Context, tenantID string, people []models.Person, overwrite bool) (*models.ImportResult, error)
}

type tenantStore interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error)
	CreateTenant(ctx context.Context, name string) (id, apiKey string, err error)
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	RestoreTenant(ctx context.Context, t models.Tenant) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
	CheckSchema(ctx context.Context) error
}

// backend is one storage engine seen through the store roles the services need.
type backend struct {
	people  service.PersonStore
	links   service.LinkStore
	family  familyStore
	audit   domain.AuditService
	tenants tenantStore
	health  healthChecker

	// pool is set for PostgreSQL only; it feeds the notify bridge.
	pool  *dbpool.Pool
	close func()
}

// openBackend connects to the configured engine and applies pending
// migrations. origin tags the change notifications this process sends.
func openBackend(ctx context.Context, cfg *config.Config, log *logrus.Logger, origin string) (*backend, error) {
	switch cfg.StorageEngine {
	case config.EngineSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}

		return &backend{
			people:  st,
			links:   st,
			family:  st,
			audit:   st,
			tenants: st,
			health:  st,
			close:   func() { st.Close() }, //nolint:errcheck // best-effort close on shutdown
		}, nil

	case config.EnginePostgres:
		pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns)) //nolint:gosec // validated to 2..200
		if err != nil {
			return nil, err
		}

		if err := db.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}

		base := store.Base{Pool: pool, Log: log, Origin: origin}

		return &backend{
			people:  store.NewPersonStore(base),
			links:   store.NewLinkStore(base),
			family:  store.NewFamilyStore(base),
			audit:   store.NewAuditStore(base),
			tenants: store.NewTenantStore(pool),
			health:  store.HealthChecker{Pool: pool},
			pool:    pool,
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.StorageEngine)
	}
}

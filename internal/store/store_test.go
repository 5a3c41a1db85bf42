package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/db"
	"github.com/persistorai/kinship/internal/dbpool"
	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/security"
	"github.com/persistorai/kinship/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 5)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base with a fresh test tenant, cleaned up after the test.
func setupTestBase(t *testing.T) (_ store.Base, _ string) {
	t.Helper()

	env := getTestEnv(t)
	tenantID := uuid.New().String()
	ctx := context.Background()

	_, err := env.pool.Exec(ctx,
		"INSERT INTO tenants (id, name, api_key_hash) VALUES ($1, $2, $3)",
		tenantID, fmt.Sprintf("test-tenant-%s", tenantID[:8]), security.HashAPIKey("test-key-"+tenantID),
	)
	if err != nil {
		t.Fatalf("creating test tenant: %v", err)
	}

	t.Cleanup(func() {
		// People, links and audit rows cascade from the tenant.
		env.pool.Exec(context.Background(), "DELETE FROM tenants WHERE id = $1", tenantID) //nolint:errcheck // best-effort cleanup
	})

	return store.Base{Pool: env.pool, Log: env.log, Origin: "store-test"}, tenantID
}

// createPeople inserts people with the given ids; gender follows the id's first letter (m/f).
func createPeople(t *testing.T, ps *store.PersonStore, tenantID string, ids ...string) {
	t.Helper()

	for _, id := range ids {
		gender := models.GenderOther
		switch id[0] {
		case 'm':
			gender = models.GenderMale
		case 'f':
			gender = models.GenderFemale
		}

		if _, err := ps.CreatePerson(context.Background(), tenantID, models.CreatePersonRequest{
			ID: id, Name: "Person " + id, Gender: gender,
		}); err != nil {
			t.Fatalf("CreatePerson(%s): %v", id, err)
		}
	}
}

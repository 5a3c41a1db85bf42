package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/models"
)

const testTenant = "tenant1"

func person(id, name, gender string, parents []string, partners ...string) models.Person {
	return models.Person{ID: id, Name: name, Gender: gender, Parents: parents, Partners: partners}
}

// testFamily is a three-generation family:
//
//	gran+grandpa -> mum, aunt
//	mum+dad -> ada, bob
//	aunt -> cousin
func testFamily() []models.Person {
	return []models.Person{
		person("gran", "Gran", models.GenderFemale, nil, "grandpa"),
		person("grandpa", "Grandpa", models.GenderMale, nil, "gran"),
		person("mum", "Mum", models.GenderFemale, []string{"gran", "grandpa"}, "dad"),
		person("dad", "Dad", models.GenderMale, nil, "mum"),
		person("aunt", "Aunt", models.GenderFemale, []string{"gran", "grandpa"}),
		person("ada", "Ada", models.GenderFemale, []string{"mum", "dad"}),
		person("bob", "Bob", models.GenderMale, []string{"mum", "dad"}),
		person("cousin", "Cousin", models.GenderOther, []string{"aunt"}),
		person("stranger", "Stranger", models.GenderOther, nil),
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newTestCache(store FamilyLoader) *SnapshotCache {
	return NewSnapshotCache(store, 16, time.Minute, quietLogger())
}

// startAuditWorker runs an AuditWorker until the test ends.
func startAuditWorker(t *testing.T, auditor *mockAuditor) *AuditWorker {
	t.Helper()

	aw := NewAuditWorker(auditor, quietLogger(), 100)
	ctx, cancel := context.WithCancel(context.Background())
	go aw.Run(ctx)
	t.Cleanup(cancel)

	return aw
}

// waitForAudits polls until auditor has seen n calls or a second has passed.
func waitForAudits(auditor *mockAuditor, n int) []models.AuditEntry {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if calls := auditor.getCalls(); len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	return auditor.getCalls()
}

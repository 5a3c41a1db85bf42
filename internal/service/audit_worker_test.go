package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/persistorai/kinship/internal/models"
)

func TestAuditWorker_WritesEntries(t *testing.T) {
	auditor := &mockAuditor{}
	aw := startAuditWorker(t, auditor)

	aw.Enqueue(models.PersonChange("t1", models.AuditPersonCreate, "ada", nil))

	calls := waitForAudits(auditor, 1)
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if got := calls[0]; got.Action != models.AuditPersonCreate || got.EntityID != "ada" || got.EntityType != models.AuditEntityPerson {
		t.Errorf("entry = %+v", got)
	}
}

func TestAuditWorker_EnqueueNeverBlocks(t *testing.T) {
	aw := NewAuditWorker(&mockAuditor{}, quietLogger(), 2)

	done := make(chan struct{})
	go func() {
		for _, action := range []string{"a", "b", "c", "d"} {
			aw.Enqueue(&models.AuditEntry{Action: action})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	if len(aw.queue) != 2 {
		t.Errorf("queued = %d, want 2", len(aw.queue))
	}
}

func TestAuditWorker_FlushesOnCancel(t *testing.T) {
	auditor := &mockAuditor{}
	aw := NewAuditWorker(auditor, quietLogger(), 100)

	for i := range 5 {
		aw.Enqueue(models.PersonChange("t1", models.AuditPersonDelete, fmt.Sprintf("p%d", i), nil))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		aw.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if calls := auditor.getCalls(); len(calls) != 5 {
		t.Errorf("flushed = %d, want 5", len(calls))
	}
}

func TestAuditWorker_WriteErrorKeepsRunning(t *testing.T) {
	auditor := &mockAuditor{err: errors.New("disk full")}
	aw := startAuditWorker(t, auditor)

	aw.Enqueue(&models.AuditEntry{Action: "first"})
	aw.Enqueue(&models.AuditEntry{Action: "second"})

	if calls := waitForAudits(auditor, 2); len(calls) != 2 {
		t.Errorf("calls = %d, want 2", len(calls))
	}
}

type recordingEnqueuer struct {
	entries []*models.AuditEntry
}

func (r *recordingEnqueuer) Enqueue(e *models.AuditEntry) { r.entries = append(r.entries, e) }

func TestAuditAsync(t *testing.T) {
	auditAsync(nil, "t1", models.AuditPersonDelete, "ada", nil)

	rec := &recordingEnqueuer{}
	auditAsync(rec, "t1", models.AuditParentAdd, "ada", map[string]any{"parent_id": "bea"})

	if len(rec.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.TenantID != "t1" || e.Action != models.AuditParentAdd || e.EntityID != "ada" || e.Detail["parent_id"] != "bea" {
		t.Errorf("entry = %+v", e)
	}
}

func TestAuditService_PurgeBounds(t *testing.T) {
	svc := NewAuditService(&mockAuditStore{purged: 3}, quietLogger())

	for _, days := range []int{0, -1, maxRetentionDays + 1} {
		if _, err := svc.PurgeOldEntries(context.Background(), "t1", days); !errors.Is(err, models.ErrBadRetention) {
			t.Errorf("days=%d: err = %v, want ErrBadRetention", days, err)
		}
	}

	n, err := svc.PurgeOldEntries(context.Background(), "t1", 30)
	if err != nil || n != 3 {
		t.Errorf("PurgeOldEntries = %d, %v", n, err)
	}
}

type mockAuditStore struct {
	mockAuditor
	purged int
}

func (m *mockAuditStore) QueryAudit(context.Context, string, models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	return nil, false, nil
}

func (m *mockAuditStore) PurgeOldEntries(context.Context, string, int) (int, error) {
	return m.purged, nil
}

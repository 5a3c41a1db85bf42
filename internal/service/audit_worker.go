package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/metrics"
	"github.com/persistorai/kinship/internal/models"
)

const (
	defaultAuditQueue = 1000
	auditWriteTimeout = 5 * time.Second
)

// AuditEnqueuer accepts audit entries without blocking the caller.
type AuditEnqueuer interface {
	Enqueue(entry *models.AuditEntry)
}

// auditAsync files a person change on w. A nil w turns auditing off.
func auditAsync(w AuditEnqueuer, tenantID, action, personID string, detail map[string]any) {
	if w == nil {
		return
	}

	w.Enqueue(models.PersonChange(tenantID, action, personID, detail))
}

// AuditWorker moves audit entries off the request path. Entries queue in a
// bounded channel and a single Run goroutine writes them; when the queue is
// full new entries are dropped.
type AuditWorker struct {
	auditor Auditor
	log     *logrus.Logger
	queue   chan *models.AuditEntry
}

// NewAuditWorker creates an AuditWorker holding up to size pending entries.
func NewAuditWorker(auditor Auditor, log *logrus.Logger, size int) *AuditWorker {
	if size <= 0 {
		size = defaultAuditQueue
	}

	return &AuditWorker{auditor: auditor, log: log, queue: make(chan *models.AuditEntry, size)}
}

// Enqueue queues entry, or drops it when the queue is full.
func (w *AuditWorker) Enqueue(entry *models.AuditEntry) {
	select {
	case w.queue <- entry:
	default:
		w.log.WithFields(logrus.Fields{
			"tenant_id": entry.TenantID,
			"action":    entry.Action,
		}).Warn("audit queue full, dropping entry")
	}

	metrics.AuditQueueDepth.Set(float64(len(w.queue)))
}

// Run writes queued entries until ctx is done, then flushes what is left.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case entry := <-w.queue:
			w.write(ctx, entry)
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			return
		}
	}
}

func (w *AuditWorker) flush(ctx context.Context) {
	for {
		select {
		case entry := <-w.queue:
			w.write(ctx, entry)
		default:
			return
		}
	}
}

func (w *AuditWorker) write(ctx context.Context, entry *models.AuditEntry) {
	metrics.AuditQueueDepth.Set(float64(len(w.queue)))

	ctx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
	defer cancel()

	if err := w.auditor.RecordAudit(ctx, entry); err != nil {
		w.log.WithError(err).WithField("action", entry.Action).Warn("audit write failed")
	}
}

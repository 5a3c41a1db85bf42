package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/models"
)

// maxRetentionDays keeps purge cutoffs inside what make_interval accepts.
const maxRetentionDays = 36500

var _ domain.AuditService = (*AuditService)(nil)

// AuditService fronts the audit log store. Reads pass straight through;
// purges are bounds-checked and logged.
type AuditService struct {
	domain.AuditService
	log *logrus.Logger
}

// NewAuditService creates an AuditService over store.
func NewAuditService(store domain.AuditService, log *logrus.Logger) *AuditService {
	return &AuditService{AuditService: store, log: log}
}

// PurgeOldEntries deletes the tenant's entries older than retentionDays.
func (s *AuditService) PurgeOldEntries(ctx context.Context, tenantID string, retentionDays int) (int, error) {
	if retentionDays < 1 || retentionDays > maxRetentionDays {
		return 0, fmt.Errorf("%w: must be between 1 and %d", models.ErrBadRetention, maxRetentionDays)
	}

	deleted, err := s.AuditService.PurgeOldEntries(ctx, tenantID, retentionDays)
	if err != nil {
		return deleted, fmt.Errorf("purging audit log: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"retention_days": retentionDays,
		"deleted":        deleted,
	}).Info("audit.purge")

	return deleted, nil
}

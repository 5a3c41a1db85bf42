package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

const auditPath = "/api/v1/audit"

// AuditService reads and prunes the change log of the tenant's family.
type AuditService struct {
	c *Client
}

// AuditPage is one page of audit entries, newest first.
type AuditPage struct {
	Entries []AuditEntry `json:"entries"`
	HasMore bool         `json:"has_more"`
}

func (o *AuditQueryOptions) values() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}

	for key, v := range map[string]string{
		"entity_type": o.EntityType,
		"entity_id":   o.EntityID,
		"action":      o.Action,
	} {
		if v != "" {
			q.Set(key, v)
		}
	}

	if o.Since != nil {
		q.Set("since", o.Since.UTC().Format(time.RFC3339))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}

	return q
}

// Query returns one page of entries matching opts; nil opts matches all.
func (s *AuditService) Query(ctx context.Context, opts *AuditQueryOptions) (*AuditPage, error) {
	var page AuditPage
	if err := s.c.get(ctx, auditPath, opts.values(), &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// Purge deletes entries older than retentionDays and returns how many went.
// Zero uses the server's default retention.
func (s *AuditService) Purge(ctx context.Context, retentionDays int) (int, error) {
	q := url.Values{}
	if retentionDays > 0 {
		q.Set("retention_days", strconv.Itoa(retentionDays))
	}

	var resp struct {
		Deleted int `json:"deleted"`
	}
	if err := s.c.del(ctx, auditPath, q, &resp); err != nil {
		return 0, err
	}

	return resp.Deleted, nil
}

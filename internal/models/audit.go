package models

import (
	"strings"
	"time"
)

// Audit actions recorded for family changes.
const (
	AuditPersonCreate  = "person.create"
	AuditPersonUpdate  = "person.update"
	AuditPersonDelete  = "person.delete"
	AuditParentAdd     = "link.parent_add"
	AuditParentRemove  = "link.parent_remove"
	AuditPartnerAdd    = "link.partner_add"
	AuditPartnerRemove = "link.partner_remove"
	AuditFamilyImport  = "family.import"
)

// Audited entity kinds. Link changes are filed under the person whose
// parent or partner list changed.
const (
	AuditEntityPerson = "person"
	AuditEntityFamily = "family"
)

// DefaultAuditPageSize applies when a query does not set a limit.
const DefaultAuditPageSize = 50

// AuditEntry is one row of a tenant's change history.
type AuditEntry struct {
	ID         int64          `json:"id"`
	TenantID   string         `json:"-"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      string         `json:"actor,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PersonChange builds the entry for a change to one person or their links.
func PersonChange(tenantID, action, personID string, detail map[string]any) *AuditEntry {
	return &AuditEntry{
		TenantID:   tenantID,
		Action:     action,
		EntityType: AuditEntityPerson,
		EntityID:   personID,
		Detail:     detail,
	}
}

// AuditQueryOpts narrows an audit log query. Zero fields do not filter.
type AuditQueryOpts struct {
	EntityType string
	EntityID   string
	Action     string
	Since      *time.Time
	Limit      int
	Offset     int
}

// PageSize returns Limit, or DefaultAuditPageSize when unset.
func (o AuditQueryOpts) PageSize() int {
	if o.Limit <= 0 {
		return DefaultAuditPageSize
	}

	return o.Limit
}

// Where renders the non-empty filters as SQL conditions joined with AND,
// plus their arguments in order. placeholder returns the bind marker for
// the n-th argument, counting from first.
func (o AuditQueryOpts) Where(first int, placeholder func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(column string, v any) {
		conds = append(conds, column+placeholder(first+len(args)))
		args = append(args, v)
	}

	if o.EntityType != "" {
		add("entity_type = ", o.EntityType)
	}
	if o.EntityID != "" {
		add("entity_id = ", o.EntityID)
	}
	if o.Action != "" {
		add("action = ", o.Action)
	}
	if o.Since != nil {
		add("created_at >= ", o.Since.UTC())
	}

	return strings.Join(conds, " AND "), args
}

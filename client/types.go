package client

import (
	"time"
)

// Person is a member of the family graph.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date,omitempty"`
	Parents   []string  `json:"parents"`
	Partners  []string  `json:"partners"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePersonRequest is the payload for adding a person. An empty ID is
// assigned by the server.
type CreatePersonRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

// UpdatePersonRequest changes a person's attributes. Nil fields are left alone.
type UpdatePersonRequest struct {
	Name      *string `json:"name,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

// PersonListOptions filters a people listing.
type PersonListOptions struct {
	Query  string
	Limit  int
	Offset int
}

// Relationship describes how From relates to To.
type Relationship struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Kind     string `json:"kind,omitempty"`
	Label    string `json:"label,omitempty"`
	Sentence string `json:"sentence,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ChainLink is one hop of a relationship path.
type ChainLink struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Pair names two people for a batch query.
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Ancestor is one entry of a person's ancestry.
type Ancestor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
	Side     string `json:"side,omitempty"`
	Label    string `json:"label"`
}

// FamilyStats summarizes a tenant's family graph.
type FamilyStats struct {
	People       int            `json:"people"`
	ByGender     map[string]int `json:"by_gender"`
	ParentLinks  int            `json:"parent_links"`
	Partnerships int            `json:"partnerships"`
	Roots        int            `json:"roots"`
	Generations  int            `json:"generations"`
	Components   int            `json:"components"`
}

// HealthResponse is the liveness check response.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Storage       string  `json:"storage"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// AuditEntry is one recorded change.
type AuditEntry struct {
	ID         int64          `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      string         `json:"actor,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditQueryOptions filters an audit query.
type AuditQueryOptions struct {
	EntityType string
	EntityID   string
	Action     string
	Since      *time.Time
	Limit      int
	Offset     int
}

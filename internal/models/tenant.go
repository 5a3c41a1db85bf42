package models

import "time"

// Tenant owns one isolated family graph. Only the hash of its API key is
// stored, so copying a tenant between databases keeps existing keys valid.
type Tenant struct {
	ID         string
	Name       string
	APIKeyHash string
	CreatedAt  time.Time
}

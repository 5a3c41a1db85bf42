// Package security generates and hashes API keys and tracks authentication
// failures per key.
package security

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const (
	BruteForceMaxAttempts = 5
	BruteForceWindow      = 15 * time.Minute
	BruteForceLockout     = 5 * time.Minute
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard tracks per-key-hash authentication failures and blocks
// keys that exceed the failure threshold within the tracking window.
// Records live in a bounded LRU and expire with the window, so an idle
// key is forgotten and a flood of distinct keys evicts the oldest ones.
type BruteForceGuard struct {
	mu      sync.Mutex
	records *expirable.LRU[string, *failureRecord]
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a new guard.
func NewBruteForceGuard(log *logrus.Logger) *BruteForceGuard {
	return &BruteForceGuard{
		records: expirable.NewLRU[string, *failureRecord](bruteForceMaxRecords, nil, BruteForceWindow),
		log:     log,
		now:     time.Now,
	}
}

// IsBlocked returns true if the given API key is currently locked out.
func (g *BruteForceGuard) IsBlocked(apiKey string) bool {
	return g.LockedFor(apiKey) > 0
}

// LockedFor returns how long apiKey stays locked out, or zero.
func (g *BruteForceGuard) LockedFor(apiKey string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records.Peek(HashAPIKey(apiKey))
	if !ok || rec.lockedAt.IsZero() {
		return 0
	}

	return max(0, BruteForceLockout-g.now().Sub(rec.lockedAt))
}

// RecordFailure records a failed authentication attempt for the given API key.
func (g *BruteForceGuard) RecordFailure(apiKey string) {
	kh := HashAPIKey(apiKey)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records.Get(kh)
	if !ok || now.Sub(rec.firstFail) > BruteForceWindow {
		g.records.Add(kh, &failureRecord{attempts: 1, firstFail: now})
		return
	}

	rec.attempts++
	if rec.attempts >= BruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("key_hash", kh[:16]+"...").Warn("api key locked out due to repeated auth failures")
	}
}

// ResetKey clears failure tracking for a key (call on successful auth).
func (g *BruteForceGuard) ResetKey(apiKey string) {
	g.mu.Lock()
	g.records.Remove(HashAPIKey(apiKey))
	g.mu.Unlock()
}

// Tracked returns the number of keys with recorded failures.
func (g *BruteForceGuard) Tracked() int {
	return g.records.Len()
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/kinship"
	"github.com/persistorai/kinship/internal/metrics"
	"github.com/persistorai/kinship/internal/models"
)

// FamilyLoader is the data-access interface SnapshotCache depends on.
type FamilyLoader = domain.FamilyLoader

// Snapshot is an immutable view of one tenant's family. It is shared by concurrent
// queries and must not be modified.
type Snapshot struct {
	Graph    *kinship.Graph
	People   []models.Person
	Names    map[string]string
	LoadedAt time.Time
}

// Name returns the display name of id, falling back to the id itself.
func (s *Snapshot) Name(id string) string {
	if n, ok := s.Names[id]; ok && n != "" {
		return n
	}

	return id
}

// NewSnapshot builds a snapshot from a tenant's people.
func NewSnapshot(people []models.Person) (*Snapshot, error) {
	nodes := make([]kinship.Person, len(people))
	names := make(map[string]string, len(people))

	for i, p := range people {
		nodes[i] = kinship.Person{
			ID:       p.ID,
			Gender:   kinship.ParseGender(p.Gender),
			Parents:  p.Parents,
			Partners: p.Partners,
		}
		names[p.ID] = p.Name
	}

	g, err := kinship.NewGraph(nodes)
	if err != nil {
		return nil, fmt.Errorf("building family graph: %w", err)
	}

	return &Snapshot{Graph: g, People: people, Names: names, LoadedAt: time.Now()}, nil
}

// SnapshotCache keeps recently used family snapshots per tenant. Entries are keyed
// by tenant and generation; Invalidate bumps the generation so a load that raced
// with a write can never be served after it.
type SnapshotCache struct {
	loader FamilyLoader
	log    *logrus.Logger

	entries *expirable.LRU[string, *Snapshot]
	group   singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64

	people atomic.Int64
}

// NewSnapshotCache creates a cache holding at most size snapshots for at most ttl.
func NewSnapshotCache(loader FamilyLoader, size int, ttl time.Duration, log *logrus.Logger) *SnapshotCache {
	if size <= 0 {
		size = 256
	}

	c := &SnapshotCache{
		loader: loader,
		log:    log,
		gens:   make(map[string]uint64),
	}
	c.entries = expirable.NewLRU[string, *Snapshot](size, func(_ string, snap *Snapshot) {
		c.track(-len(snap.People))
	}, ttl)

	return c
}

// track adjusts the number of people held across cached snapshots.
func (c *SnapshotCache) track(delta int) {
	metrics.CachedPeople.Add(float64(delta))
	c.people.Add(int64(delta))
}

func (c *SnapshotCache) key(tenantID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return tenantID + ":" + strconv.FormatUint(c.gens[tenantID], 10)
}

// Get returns the tenant's snapshot, loading it on a miss. Concurrent misses for
// the same generation share one load.
func (c *SnapshotCache) Get(ctx context.Context, tenantID string) (*Snapshot, error) {
	key := c.key(tenantID)

	if snap, ok := c.entries.Get(key); ok {
		metrics.SnapshotCacheHits.Inc()
		return snap, nil
	}

	metrics.SnapshotCacheMisses.Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		if snap, ok := c.entries.Get(key); ok {
			return snap, nil
		}

		people, err := c.loader.LoadFamily(context.WithoutCancel(ctx), tenantID)
		if err != nil {
			return nil, fmt.Errorf("loading family: %w", err)
		}

		snap, err := NewSnapshot(people)
		if err != nil {
			return nil, err
		}

		c.entries.Add(key, snap)
		c.track(len(people))

		c.log.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"people":    len(people),
		}).Debug("snapshot.load")

		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Snapshot), nil //nolint:forcetypeassert // only *Snapshot is stored.
}

// Invalidate drops the tenant's snapshot. The next Get reloads it.
func (c *SnapshotCache) Invalidate(tenantID string) {
	c.mu.Lock()
	old := tenantID + ":" + strconv.FormatUint(c.gens[tenantID], 10)
	c.gens[tenantID]++
	c.mu.Unlock()

	c.entries.Remove(old)
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	return c.entries.Len()
}

// People returns how many people the cached snapshots hold in total.
func (c *SnapshotCache) People() int {
	return int(c.people.Load())
}

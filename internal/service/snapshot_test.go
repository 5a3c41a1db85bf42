package service

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSnapshotCache_LoadsOnceAndServesHits(t *testing.T) {
	store := &mockFamilyStore{people: testFamily()}
	cache := newTestCache(store)
	ctx := context.Background()

	for range 3 {
		snap, err := cache.Get(ctx, testTenant)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if snap.Graph.Len() != len(testFamily()) {
			t.Fatalf("graph has %d people, want %d", snap.Graph.Len(), len(testFamily()))
		}
	}

	if got := store.loadCount(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestSnapshotCache_InvalidateReloads(t *testing.T) {
	store := &mockFamilyStore{people: testFamily()}
	cache := newTestCache(store)
	ctx := context.Background()

	if _, err := cache.Get(ctx, testTenant); err != nil {
		t.Fatalf("Get: %v", err)
	}

	cache.Invalidate(testTenant)
	cache.Invalidate("other-tenant")

	if _, err := cache.Get(ctx, testTenant); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got := store.loadCount(); got != 2 {
		t.Errorf("loads = %d, want 2", got)
	}
}

func TestSnapshotCache_TenantsAreSeparate(t *testing.T) {
	store := &mockFamilyStore{people: testFamily()}
	cache := newTestCache(store)
	ctx := context.Background()

	_, _ = cache.Get(ctx, "a")
	_, _ = cache.Get(ctx, "b")

	if got := store.loadCount(); got != 2 {
		t.Errorf("loads = %d, want 2", got)
	}
	if cache.Len() != 2 {
		t.Errorf("Len = %d, want 2", cache.Len())
	}
}

func TestSnapshotCache_ConcurrentMissesShareLoad(t *testing.T) {
	store := &mockFamilyStore{people: testFamily()}
	cache := newTestCache(store)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(context.Background(), testTenant); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	// singleflight collapses overlapping loads; late arrivals hit the cache.
	if got := store.loadCount(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestSnapshotCache_LoadErrorIsNotCached(t *testing.T) {
	store := &mockFamilyStore{loadErr: errors.New("db down")}
	cache := newTestCache(store)
	ctx := context.Background()

	if _, err := cache.Get(ctx, testTenant); err == nil {
		t.Fatal("expected error")
	}

	store.mu.Lock()
	store.loadErr = nil
	store.people = testFamily()
	store.mu.Unlock()

	if _, err := cache.Get(ctx, testTenant); err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
}

func TestSnapshot_Name(t *testing.T) {
	snap, err := NewSnapshot(testFamily())
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	if got := snap.Name("ada"); got != "Ada" {
		t.Errorf("Name(ada) = %q", got)
	}
	if got := snap.Name("nobody"); got != "nobody" {
		t.Errorf("Name(nobody) = %q, want id fallback", got)
	}
}

func TestNewSnapshot_DuplicateID(t *testing.T) {
	people := append(testFamily(), person("ada", "Other Ada", "female", nil))

	if _, err := NewSnapshot(people); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestSnapshotCache_PeopleSummedAcrossTenants(t *testing.T) {
	store := &mockFamilyStore{people: testFamily()}
	cache := newTestCache(store)
	ctx := context.Background()
	n := len(testFamily())

	_, _ = cache.Get(ctx, "a")
	_, _ = cache.Get(ctx, "b")

	if got := cache.People(); got != 2*n {
		t.Errorf("People = %d, want %d", got, 2*n)
	}

	cache.Invalidate("a")

	if got := cache.People(); got != n {
		t.Errorf("People after invalidate = %d, want %d", got, n)
	}
}

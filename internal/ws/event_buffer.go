package ws

import (
	"sort"
	"sync"
	"time"
)

// EventBuffer keeps a bounded window of recent events per tenant so that a
// reconnecting client can catch up with the changes it missed.
type EventBuffer struct {
	mu     sync.RWMutex
	events map[string][]Event
	maxAge time.Duration
	maxLen int
	now    func() time.Time
}

// NewEventBuffer creates an EventBuffer holding at most maxLen events per
// tenant, none older than maxAge.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	return &EventBuffer{
		events: make(map[string][]Event),
		maxAge: maxAge,
		maxLen: maxLen,
		now:    time.Now,
	}
}

// Append stores an event, evicting expired and overflowing entries.
func (eb *EventBuffer) Append(tenantID string, event *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	buf := eb.trim(eb.events[tenantID])

	buf = append(buf, *event)
	if len(buf) > eb.maxLen {
		buf = buf[len(buf)-eb.maxLen:]
	}

	eb.events[tenantID] = buf
}

// trim drops expired events from the front of buf.
func (eb *EventBuffer) trim(buf []Event) []Event {
	cutoff := eb.now().Add(-eb.maxAge)
	start := sort.Search(len(buf), func(i int) bool { return !buf[i].Time.Before(cutoff) })

	return buf[start:]
}

// Since returns the tenant's events with ID > lastEventID that pass f.
func (eb *EventBuffer) Since(tenantID string, lastEventID uint64, f *Filter) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[tenantID]
	lo := sort.Search(len(buf), func(i int) bool { return buf[i].ID > lastEventID })

	var out []Event
	for i := lo; i < len(buf); i++ {
		if f.Match(&buf[i]) {
			out = append(out, buf[i])
		}
	}

	return out
}

// OldestID returns the oldest buffered event ID for a tenant, or 0 if empty.
func (eb *EventBuffer) OldestID(tenantID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[tenantID]
	if len(buf) == 0 {
		return 0
	}

	return buf[0].ID
}

// Sweep removes tenants whose newest event has expired.
func (eb *EventBuffer) Sweep() {
	cutoff := eb.now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for tenant, buf := range eb.events {
		if len(buf) == 0 || buf[len(buf)-1].Time.Before(cutoff) {
			delete(eb.events, tenant)
		}
	}
}

// Tenants returns the number of tenants with buffered events.
func (eb *EventBuffer) Tenants() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.events)
}

package ws

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// Event is a family change delivered to WebSocket clients.
type Event struct {
	Type     string          `json:"type"`
	ID       uint64          `json:"id"`
	TenantID string          `json:"-"`
	Data     json.RawMessage `json:"data"`
	Time     time.Time       `json:"time"`

	// people lists the person ids the event touches, for watch filters.
	people []string
}

// SubscribeMsg is sent by the client to request replay and narrow the stream.
// Empty Types or People means everything.
type SubscribeMsg struct {
	Type        string   `json:"type"`
	LastEventID uint64   `json:"last_event_id"`
	Types       []string `json:"types,omitempty"`
	People      []string `json:"people,omitempty"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// SubscribedMsg acknowledges a subscribe request.
type SubscribedMsg struct {
	Type     string `json:"type"`
	Replayed int    `json:"replayed"`
}

// Filter selects which events a client receives.
type Filter struct {
	types  []string
	people []string
}

// NewFilter builds a Filter. Nil slices match everything.
func NewFilter(types, people []string) *Filter {
	return &Filter{types: slices.Clone(types), people: slices.Clone(people)}
}

// Match reports whether evt passes the filter.
func (f *Filter) Match(evt *Event) bool {
	if f == nil {
		return true
	}

	if len(f.types) > 0 && !slices.Contains(f.types, evt.Type) {
		return false
	}

	if len(f.people) == 0 {
		return true
	}

	// Imports touch everyone.
	if len(evt.people) == 0 {
		return true
	}

	for _, id := range evt.people {
		if slices.Contains(f.people, id) {
			return true
		}
	}

	return false
}

// peopleIn pulls the person ids out of a change payload. Person events carry
// "id", link events "person_id" and "other_id", and notifications relayed
// from other instances "entity_id".
func peopleIn(data json.RawMessage) []string {
	var ids struct {
		ID       string `json:"id"`
		PersonID string `json:"person_id"`
		OtherID  string `json:"other_id"`
		EntityID string `json:"entity_id"`
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil
	}

	var out []string
	for _, id := range []string{ids.ID, ids.PersonID, ids.OtherID, ids.EntityID} {
		if id != "" {
			out = append(out, id)
		}
	}

	return out
}

// EventSequence hands out monotonic event ids per tenant.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{counters: make(map[string]uint64)}
}

// Next returns the next sequence number for a tenant.
func (es *EventSequence) Next(tenantID string) uint64 {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.counters[tenantID]++

	return es.counters[tenantID]
}

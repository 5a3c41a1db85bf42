package service

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/persistorai/kinship/internal/models"
)

// mockPersonStore records calls and returns configured responses.
type mockPersonStore struct {
	mu    sync.Mutex
	calls []string

	listPeople   func(ctx context.Context, tenantID string, opts models.PersonListOpts) ([]models.Person, bool, error)
	getPerson    func(ctx context.Context, tenantID, personID string) (*models.Person, error)
	createPerson func(ctx context.Context, tenantID string, req models.CreatePersonRequest) (*models.Person, error)
	updatePerson func(ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest) (*models.Person, error)
	deletePerson func(ctx context.Context, tenantID, personID string) error
}

func (m *mockPersonStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockPersonStore) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockPersonStore) ListPeople(ctx context.Context, tenantID string, opts models.PersonListOpts) ([]models.Person, bool, error) {
	m.record("ListPeople")
	return m.listPeople(ctx, tenantID, opts)
}

func (m *mockPersonStore) GetPerson(ctx context.Context, tenantID, personID string) (*models.Person, error) {
	m.record("GetPerson")
	if m.getPerson == nil {
		return &models.Person{ID: personID}, nil
	}
	return m.getPerson(ctx, tenantID, personID)
}

func (m *mockPersonStore) CreatePerson(ctx context.Context, tenantID string, req models.CreatePersonRequest) (*models.Person, error) {
	m.record("CreatePerson")
	return m.createPerson(ctx, tenantID, req)
}

func (m *mockPersonStore) UpdatePerson(ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest) (*models.Person, error) {
	m.record("UpdatePerson")
	return m.updatePerson(ctx, tenantID, personID, req)
}

func (m *mockPersonStore) DeletePerson(ctx context.Context, tenantID, personID string) error {
	m.record("DeletePerson")
	return m.deletePerson(ctx, tenantID, personID)
}

// mockLinkStore records calls; a nil func field succeeds.
type mockLinkStore struct {
	mu    sync.Mutex
	calls []string

	addParent     func(ctx context.Context, tenantID, childID, parentID string) error
	removeParent  func(ctx context.Context, tenantID, childID, parentID string) error
	addPartner    func(ctx context.Context, tenantID, personID, partnerID string) error
	removePartner func(ctx context.Context, tenantID, personID, partnerID string) error
}

func (m *mockLinkStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockLinkStore) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockLinkStore) AddParent(ctx context.Context, tenantID, childID, parentID string) error {
	m.record("AddParent")
	if m.addParent == nil {
		return nil
	}
	return m.addParent(ctx, tenantID, childID, parentID)
}

func (m *mockLinkStore) RemoveParent(ctx context.Context, tenantID, childID, parentID string) error {
	m.record("RemoveParent")
	if m.removeParent == nil {
		return nil
	}
	return m.removeParent(ctx, tenantID, childID, parentID)
}

func (m *mockLinkStore) AddPartner(ctx context.Context, tenantID, personID, partnerID string) error {
	m.record("AddPartner")
	if m.addPartner == nil {
		return nil
	}
	return m.addPartner(ctx, tenantID, personID, partnerID)
}

func (m *mockLinkStore) RemovePartner(ctx context.Context, tenantID, personID, partnerID string) error {
	m.record("RemovePartner")
	if m.removePartner == nil {
		return nil
	}
	return m.removePartner(ctx, tenantID, personID, partnerID)
}

// mockFamilyStore serves a fixed family and records imports.
type mockFamilyStore struct {
	mu     sync.Mutex
	loads  int
	people []models.Person

	loadErr   error
	importErr error
	imported  []models.Person
	overwrite bool
}

func (m *mockFamilyStore) LoadFamily(_ context.Context, _ string) ([]models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.people, nil
}

func (m *mockFamilyStore) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func (m *mockFamilyStore) ImportFamily(_ context.Context, _ string, people []models.Person, overwrite bool) (*models.ImportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.importErr != nil {
		return nil, m.importErr
	}
	m.imported = people
	m.overwrite = overwrite
	return &models.ImportResult{PeopleCreated: len(people)}, nil
}

// mockAuditor records audit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []models.AuditEntry

	err error
}

func (m *mockAuditor) RecordAudit(_ context.Context, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, *entry)
	return m.err
}

func (m *mockAuditor) getCalls() []models.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// mockPublisher records broadcast events.
type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Type     string
	TenantID string
	Data     json.RawMessage
}

func (m *mockPublisher) BroadcastEvent(eventType, tenantID string, data json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{Type: eventType, TenantID: tenantID, Data: data})
}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

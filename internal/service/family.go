// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/kinship"
	"github.com/persistorai/kinship/internal/models"
)

// PersonStore is the data-access interface for people.
// It reuses domain.PersonService since the method sets are identical, avoiding duplication.
type PersonStore = domain.PersonService

// LinkStore is the data-access interface for parent and partner links.
type LinkStore interface {
	AddParent(ctx context.Context, tenantID, childID, parentID string) error
	RemoveParent(ctx context.Context, tenantID, childID, parentID string) error
	AddPartner(ctx context.Context, tenantID, personID, partnerID string) error
	RemovePartner(ctx context.Context, tenantID, personID, partnerID string) error
}

// EventPublisher pushes change events to connected clients.
type EventPublisher interface {
	BroadcastEvent(eventType, tenantID string, data json.RawMessage)
}

// Auditor is an alias for the canonical domain.Auditor interface.
type Auditor = domain.Auditor

// Change event types published after successful writes.
const (
	EventPersonCreated  = "person.created"
	EventPersonUpdated  = "person.updated"
	EventPersonDeleted  = "person.deleted"
	EventLinkAdded      = "link.added"
	EventLinkRemoved    = "link.removed"
	EventFamilyImported = "family.imported"
)

// Link kinds carried by link events.
const (
	LinkParent  = "parent"
	LinkPartner = "partner"
)

// LinkEvent is the payload of link.added and link.removed events.
type LinkEvent struct {
	Kind     string `json:"kind"`
	PersonID string `json:"person_id"`
	OtherID  string `json:"other_id"`
}

// Compile-time checks.
var (
	_ domain.PersonService = (*FamilyService)(nil)
	_ domain.LinkService   = (*FamilyService)(nil)
)

// FamilyService manages people and their links. It guards graph integrity
// (no self links, no parent cycles, no orphaned children) and keeps the
// snapshot cache and connected clients in step with every change.
type FamilyService struct {
	people      PersonStore
	links       LinkStore
	snapshots   *SnapshotCache
	events      EventPublisher
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewFamilyService creates a FamilyService. events and auditWorker may be nil.
func NewFamilyService(
	people PersonStore,
	links LinkStore,
	snapshots *SnapshotCache,
	events EventPublisher,
	auditWorker AuditEnqueuer,
	log *logrus.Logger,
) *FamilyService {
	return &FamilyService{
		people:      people,
		links:       links,
		snapshots:   snapshots,
		events:      events,
		auditWorker: auditWorker,
		log:         log,
	}
}

// ListPeople returns a page of people (pass-through).
func (s *FamilyService) ListPeople(
	ctx context.Context, tenantID string, opts models.PersonListOpts,
) ([]models.Person, bool, error) {
	return s.people.ListPeople(ctx, tenantID, opts)
}

// GetPerson returns a single person by ID (pass-through).
func (s *FamilyService) GetPerson(ctx context.Context, tenantID, personID string) (*models.Person, error) {
	return s.people.GetPerson(ctx, tenantID, personID)
}

// CreatePerson adds a person without links.
func (s *FamilyService) CreatePerson(
	ctx context.Context, tenantID string, req models.CreatePersonRequest,
) (*models.Person, error) {
	person, err := s.people.CreatePerson(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	s.changed(tenantID, EventPersonCreated, person)
	auditAsync(s.auditWorker, tenantID, models.AuditPersonCreate, person.ID,
		map[string]any{"name": person.Name, "gender": person.Gender})

	return person, nil
}

// UpdatePerson changes a person's attributes.
func (s *FamilyService) UpdatePerson(
	ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest,
) (*models.Person, error) {
	person, err := s.people.UpdatePerson(ctx, tenantID, personID, req)
	if err != nil {
		return nil, err
	}

	detail := map[string]any{}
	if req.Name != nil {
		detail["name"] = *req.Name
	}
	if req.Gender != nil {
		detail["gender"] = *req.Gender
	}
	if req.BirthDate != nil {
		detail["birth_date"] = *req.BirthDate
	}

	s.changed(tenantID, EventPersonUpdated, person)
	auditAsync(s.auditWorker, tenantID, models.AuditPersonUpdate, personID, detail)

	return person, nil
}

// DeletePerson removes a person and their partner links. People who are still
// listed as someone's parent cannot be deleted.
func (s *FamilyService) DeletePerson(ctx context.Context, tenantID, personID string) error {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	if len(snap.Graph.Children(personID)) > 0 {
		return models.ErrHasChildren
	}

	if err := s.people.DeletePerson(ctx, tenantID, personID); err != nil {
		return err
	}

	s.changed(tenantID, EventPersonDeleted, map[string]string{"id": personID})
	auditAsync(s.auditWorker, tenantID, models.AuditPersonDelete, personID, nil)

	return nil
}

// AddParent appends parentID to childID's parents. The link is refused when it
// would make childID an ancestor of itself.
func (s *FamilyService) AddParent(ctx context.Context, tenantID, childID, parentID string) (*models.Person, error) {
	if childID == parentID {
		return nil, models.ErrSelfLink
	}

	if err := s.checkAcyclic(ctx, tenantID, childID, parentID); err != nil {
		return nil, err
	}

	if err := s.links.AddParent(ctx, tenantID, childID, parentID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"child_id":  childID,
		"parent_id": parentID,
	}).Debug("family.add_parent")

	s.changed(tenantID, EventLinkAdded, LinkEvent{Kind: LinkParent, PersonID: childID, OtherID: parentID})
	auditAsync(s.auditWorker, tenantID, models.AuditParentAdd, childID, map[string]any{"parent_id": parentID})

	return s.people.GetPerson(ctx, tenantID, childID)
}

// RemoveParent drops parentID from childID's parents.
func (s *FamilyService) RemoveParent(ctx context.Context, tenantID, childID, parentID string) (*models.Person, error) {
	if err := s.links.RemoveParent(ctx, tenantID, childID, parentID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"child_id":  childID,
		"parent_id": parentID,
	}).Debug("family.remove_parent")

	s.changed(tenantID, EventLinkRemoved, LinkEvent{Kind: LinkParent, PersonID: childID, OtherID: parentID})
	auditAsync(s.auditWorker, tenantID, models.AuditParentRemove, childID, map[string]any{"parent_id": parentID})

	return s.people.GetPerson(ctx, tenantID, childID)
}

// AddPartner records a partnership between personID and partnerID.
func (s *FamilyService) AddPartner(ctx context.Context, tenantID, personID, partnerID string) (*models.Person, error) {
	if personID == partnerID {
		return nil, models.ErrSelfLink
	}

	if err := s.links.AddPartner(ctx, tenantID, personID, partnerID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"person_id":  personID,
		"partner_id": partnerID,
	}).Debug("family.add_partner")

	s.changed(tenantID, EventLinkAdded, LinkEvent{Kind: LinkPartner, PersonID: personID, OtherID: partnerID})
	auditAsync(s.auditWorker, tenantID, models.AuditPartnerAdd, personID, map[string]any{"partner_id": partnerID})

	return s.people.GetPerson(ctx, tenantID, personID)
}

// RemovePartner ends the partnership between personID and partnerID.
func (s *FamilyService) RemovePartner(ctx context.Context, tenantID, personID, partnerID string) (*models.Person, error) {
	if err := s.links.RemovePartner(ctx, tenantID, personID, partnerID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"person_id":  personID,
		"partner_id": partnerID,
	}).Debug("family.remove_partner")

	s.changed(tenantID, EventLinkRemoved, LinkEvent{Kind: LinkPartner, PersonID: personID, OtherID: partnerID})
	auditAsync(s.auditWorker, tenantID, models.AuditPartnerRemove, personID, map[string]any{"partner_id": partnerID})

	return s.people.GetPerson(ctx, tenantID, personID)
}

// checkAcyclic refuses parentID as a parent of childID when childID already is
// one of parentID's ancestors. People missing from the snapshot are left to the
// store, which reports them as not found.
func (s *FamilyService) checkAcyclic(ctx context.Context, tenantID, childID, parentID string) error {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	if !snap.Graph.Has(childID) || !snap.Graph.Has(parentID) {
		return nil
	}

	ancestors, err := kinship.BuildAncestors(snap.Graph, parentID)
	if err != nil {
		if errors.Is(err, kinship.ErrCyclicAncestry) {
			return fmt.Errorf("%w: %w", models.ErrCyclicAncestry, err)
		}
		return err
	}

	if _, ok := ancestors.Distance(childID); ok {
		return models.ErrCyclicAncestry
	}

	return nil
}

// changed drops the tenant's snapshot and notifies connected clients.
func (s *FamilyService) changed(tenantID, eventType string, payload any) {
	s.snapshots.Invalidate(tenantID)
	publish(s.events, s.log, eventType, tenantID, payload)
}

func publish(events EventPublisher, log *logrus.Logger, eventType, tenantID string, payload any) {
	if events == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("event", eventType).Warn("failed to encode change event")
		return
	}

	events.BroadcastEvent(eventType, tenantID, data)
}

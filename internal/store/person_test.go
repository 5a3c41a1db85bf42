package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/store"
)

func ptr(s string) *string { return &s }

func TestPersonStore_CRUD(t *testing.T) {
	base, tenantID := setupTestBase(t)
	ps := store.NewPersonStore(base)
	ctx := context.Background()

	created, err := ps.CreatePerson(ctx, tenantID, models.CreatePersonRequest{
		ID: "alice", Name: "Alice", Gender: models.GenderFemale, BirthDate: "1970",
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if created.Name != "Alice" || created.BirthDate != "1970" {
		t.Errorf("created = %+v", created)
	}

	_, err = ps.CreatePerson(ctx, tenantID, models.CreatePersonRequest{ID: "alice", Name: "Again", Gender: models.GenderOther})
	if !errors.Is(err, models.ErrDuplicateKey) {
		t.Errorf("duplicate CreatePerson error = %v, want ErrDuplicateKey", err)
	}

	updated, err := ps.UpdatePerson(ctx, tenantID, "alice", models.UpdatePersonRequest{Name: ptr("Alice B."), BirthDate: ptr("")})
	if err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	if updated.Name != "Alice B." || updated.BirthDate != "" || updated.Gender != models.GenderFemale {
		t.Errorf("updated = %+v", updated)
	}

	got, err := ps.GetPerson(ctx, tenantID, "alice")
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if got.Name != "Alice B." || got.Parents == nil || got.Partners == nil {
		t.Errorf("got = %+v", got)
	}

	if err := ps.DeletePerson(ctx, tenantID, "alice"); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	if _, err := ps.GetPerson(ctx, tenantID, "alice"); !errors.Is(err, models.ErrPersonNotFound) {
		t.Errorf("GetPerson after delete error = %v, want ErrPersonNotFound", err)
	}
	if err := ps.DeletePerson(ctx, tenantID, "alice"); !errors.Is(err, models.ErrPersonNotFound) {
		t.Errorf("second DeletePerson error = %v, want ErrPersonNotFound", err)
	}
}

func TestPersonStore_ListPeople(t *testing.T) {
	base, tenantID := setupTestBase(t)
	ps := store.NewPersonStore(base)
	ctx := context.Background()

	createPeople(t, ps, tenantID, "m1", "f1", "x1")

	people, hasMore, err := ps.ListPeople(ctx, tenantID, models.PersonListOpts{Limit: 2})
	if err != nil {
		t.Fatalf("ListPeople: %v", err)
	}
	if len(people) != 2 || !hasMore {
		t.Errorf("page 1: %d people, hasMore=%v", len(people), hasMore)
	}

	people, hasMore, err = ps.ListPeople(ctx, tenantID, models.PersonListOpts{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListPeople page 2: %v", err)
	}
	if len(people) != 1 || hasMore {
		t.Errorf("page 2: %d people, hasMore=%v", len(people), hasMore)
	}

	people, _, err = ps.ListPeople(ctx, tenantID, models.PersonListOpts{Query: "son F"})
	if err != nil {
		t.Fatalf("ListPeople query: %v", err)
	}
	if len(people) != 1 || people[0].ID != "f1" {
		t.Errorf("query result = %+v", people)
	}
}

func TestPersonStore_DeleteParentRejected(t *testing.T) {
	base, tenantID := setupTestBase(t)
	ps := store.NewPersonStore(base)
	ls := store.NewLinkStore(base)
	ctx := context.Background()

	createPeople(t, ps, tenantID, "mdad", "mkid")

	if err := ls.AddParent(ctx, tenantID, "mkid", "mdad"); err != nil {
		t.Fatalf("AddParent: %v", err)
	}

	if err := ps.DeletePerson(ctx, tenantID, "mdad"); !errors.Is(err, models.ErrHasChildren) {
		t.Errorf("DeletePerson(parent) error = %v, want ErrHasChildren", err)
	}

	if err := ps.DeletePerson(ctx, tenantID, "mkid"); err != nil {
		t.Fatalf("DeletePerson(child): %v", err)
	}

	if err := ps.DeletePerson(ctx, tenantID, "mdad"); err != nil {
		t.Errorf("DeletePerson(parent) after child removal: %v", err)
	}
}

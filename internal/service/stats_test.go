package service

import (
	"context"
	"testing"

	"github.com/persistorai/kinship/internal/models"
)

func TestStatsService_FamilyStats(t *testing.T) {
	svc := NewStatsService(newTestCache(&mockFamilyStore{people: testFamily()}))

	got, err := svc.FamilyStats(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("FamilyStats: %v", err)
	}

	want := models.FamilyStats{
		People:       9,
		ParentLinks:  9,
		Partnerships: 2,
		Roots:        4,
		Generations:  3,
		Components:   2,
	}

	if got.People != want.People || got.ParentLinks != want.ParentLinks ||
		got.Partnerships != want.Partnerships || got.Roots != want.Roots ||
		got.Generations != want.Generations || got.Components != want.Components {
		t.Errorf("stats = %+v, want %+v", *got, want)
	}

	if got.ByGender["female"] != 4 || got.ByGender["male"] != 3 || got.ByGender["other"] != 2 {
		t.Errorf("by_gender = %v", got.ByGender)
	}
}

func TestStatsService_EmptyFamily(t *testing.T) {
	svc := NewStatsService(newTestCache(&mockFamilyStore{}))

	got, err := svc.FamilyStats(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("FamilyStats: %v", err)
	}

	if got.People != 0 || got.Generations != 0 || got.Components != 0 {
		t.Errorf("stats = %+v, want zeros", *got)
	}
}

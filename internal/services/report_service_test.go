package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evacreport/backend/internal/models"
)

func TestListIncidentsFilter(t *testing.T) {
	store := seededStore()
	store.incidents["inc-3"] = models.Incident{ID: "inc-3", Name: "Quake", Status: models.IncidentOngoing, Date: time.Now()}
	r := NewReportService(store)
	ctx := context.Background()

	tests := []struct {
		filter   string
		expected int
	}{
		{"all", 3},
		{"", 3},
		{"active", 2},
		{"closed", 1},
	}
	for _, tt := range tests {
		list, err := r.ListIncidents(ctx, tt.filter)
		if err != nil {
			t.Fatalf("ListIncidents(%q) failed: %v", tt.filter, err)
		}
		if list.Showing != tt.expected || list.Total != 3 {
			t.Errorf("ListIncidents(%q): Expected %d of 3, got %d of %d", tt.filter, tt.expected, list.Showing, list.Total)
		}
	}
	if _, err := r.ListIncidents(ctx, "archived"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown filter, got %v", err)
	}
}

func TestIncidentDetails(t *testing.T) {
	r := NewReportService(seededStore())

	d, err := r.IncidentDetails(context.Background(), "inc-1")
	if err != nil {
		t.Fatalf("IncidentDetails failed: %v", err)
	}
	if d.TotalCenters != 1 || d.Centers[0].ID != "ec-sj" {
		t.Errorf("Expected only ec-sj under inc-1, got %+v", d.Centers)
	}
	if d.TotalEvacuees != 30 || d.TotalCapacity != 100 {
		t.Errorf("Expected 30 evacuees and capacity 100, got %d and %d", d.TotalEvacuees, d.TotalCapacity)
	}

	if _, err := r.IncidentDetails(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCenterReport(t *testing.T) {
	store := seededStore()
	gym := store.centers["ec-gym"]
	gym.ContactPersons = []models.ContactPerson{{ID: "c1", Name: "Ana", Phone: "1", IsPrimary: true}}
	gym.Media = []models.Media{{ID: "m1", Type: models.MediaImage, URL: "a", Category: models.CategoryFoodArea}}
	store.centers["ec-gym"] = gym
	r := NewReportService(store)

	rep, err := r.CenterReport(context.Background(), "ec-gym")
	if err != nil {
		t.Fatalf("CenterReport failed: %v", err)
	}
	if !rep.ExceedsCapacity || rep.CurrentEvacuees != 12 || rep.OccupancyRate != 120 {
		t.Errorf("Expected 12 evacuees at 120%% over capacity, got %+v", rep)
	}
	if len(rep.AgeBands) != 7 {
		t.Errorf("Expected 7 age bands, got %d", len(rep.AgeBands))
	}
	if rep.PrimaryContact == nil || rep.PrimaryContact.Name != "Ana" {
		t.Errorf("Expected primary contact Ana, got %+v", rep.PrimaryContact)
	}
	if rep.MediaByCategory[models.CategoryFoodArea] != 1 {
		t.Errorf("Expected 1 food area item, got %v", rep.MediaByCategory)
	}

	if _, err := r.CenterReport(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDirectoryAndDashboard(t *testing.T) {
	r := NewReportService(seededStore())
	ctx := context.Background()

	dir, err := r.Directory(ctx, "ormoc", "all")
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}
	if len(dir) != 1 || dir[0].ID != "ec-gym" {
		t.Errorf("Expected ec-gym, got %+v", dir)
	}
	dir, _ = r.Directory(ctx, "", "Active")
	if len(dir) != 1 || dir[0].ID != "ec-sj" {
		t.Errorf("Expected only the active center, got %+v", dir)
	}

	dash, err := r.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	expected := Dashboard{TotalCenters: 2, ActiveCenters: 1, TotalEvacuees: 42, TotalIncidents: 2, ActiveIncidents: 1}
	if dash != expected {
		t.Errorf("Expected %+v, got %+v", expected, dash)
	}
}

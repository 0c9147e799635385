package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"

	"github.com/evacreport/backend/internal/db"
	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	gdb, err := db.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return NewGormStore(gdb)
}

var (
	_ services.CenterStore     = (*GormStore)(nil)
	_ services.DraftRepository = (*GormStore)(nil)
	_ services.UserRepository  = (*GormStore)(nil)
)

func TestGormStoreCenterRoundTrip(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	incidentID := "inc-1"
	c := models.NewEvacuationCenter(models.SchemaAgeBanded)
	c.Name = "San Jose ES"
	c.IncidentID = &incidentID
	c.Capacity = 50
	c.Demographics.AdultMaleNow = 60
	c.ContactPersons = []models.ContactPerson{{ID: "c1", Name: "Ana", Phone: "0917", IsPrimary: true}}
	c.Facilities[models.FacilityToilets] = models.FacilityCondition{Status: models.FacilityNeedsRepair, Notes: "leaking"}

	created, err := s.CreateCenter(ctx, c)
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	got, err := s.GetCenter(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCenter failed: %v", err)
	}
	if !got.ExceedsCapacity() || got.TotalCurrentEvacuees() != 60 {
		t.Errorf("Expected 60 evacuees over capacity, got %d", got.TotalCurrentEvacuees())
	}
	if got.Facilities[models.FacilityToilets].Notes != "leaking" {
		t.Errorf("Expected facility notes to persist, got %+v", got.Facilities[models.FacilityToilets])
	}
	if len(got.ContactPersons) != 1 || !got.ContactPersons[0].IsPrimary {
		t.Errorf("Expected primary contact to persist, got %+v", got.ContactPersons)
	}
	if !got.AssignedTo("inc-1") {
		t.Error("Expected incident id to persist")
	}

	got.Capacity = 100
	if _, err := s.UpdateCenter(ctx, got); err != nil {
		t.Fatalf("UpdateCenter failed: %v", err)
	}
	updated, _ := s.GetCenter(ctx, got.ID)
	if updated.Capacity != 100 || updated.ExceedsCapacity() {
		t.Errorf("Expected capacity 100 within limits, got %d", updated.Capacity)
	}

	ghost := models.NewEvacuationCenter(models.SchemaAgeBanded)
	ghost.ID = "ghost"
	ghost.Name = "Ghost"
	if _, err := s.UpdateCenter(ctx, ghost); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.CreateCenter(ctx, created); !errors.Is(err, services.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
}

func TestGormStoreCoarseHeadcount(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	c := models.NewEvacuationCenter(models.SchemaCoarse)
	c.Name = "Legacy Gym"
	c.Coarse = &models.CoarseHeadcount{InsideMale: 4, OutsideChildren: 3}
	created, err := s.CreateCenter(ctx, c)
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	got, _ := s.GetCenter(ctx, created.ID)
	if got.Coarse == nil || got.TotalCurrentEvacuees() != 4 || got.TotalServed() != 7 {
		t.Errorf("Expected coarse headcount 4 inside and 7 served, got %+v", got.Coarse)
	}
}

func TestGormStoreIncidentsAndDrafts(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	inc := models.Incident{ID: "inc-1", Name: "Typhoon", Severity: models.SeverityHigh, Status: models.IncidentActive, Date: time.Now()}
	if err := s.UpsertIncident(ctx, inc); err != nil {
		t.Fatalf("UpsertIncident failed: %v", err)
	}
	if err := s.UpdateIncidentCounters(ctx, "inc-1", 2, 80); err != nil {
		t.Fatalf("UpdateIncidentCounters failed: %v", err)
	}
	got, err := s.GetIncident(ctx, "inc-1")
	if err != nil {
		t.Fatalf("GetIncident failed: %v", err)
	}
	if got.EvacuationCenters != 2 || got.TotalEvacuees != 80 {
		t.Errorf("Expected 2 and 80, got %d and %d", got.EvacuationCenters, got.TotalEvacuees)
	}
	if _, err := s.GetIncident(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	draft := models.StoredDraft{
		SessionID:  "s-1",
		IncidentID: "inc-1",
		Step:       models.StepContact,
		Draft: models.Draft{
			ID:        "d-1",
			Center:    models.NewEvacuationCenter(models.SchemaAgeBanded),
			Completed: models.Completion{models.StepCenter: true},
		},
	}
	if err := s.SaveDraft(ctx, draft); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	draft.Step = models.StepSummary
	if err := s.SaveDraft(ctx, draft); err != nil {
		t.Fatalf("second SaveDraft failed: %v", err)
	}
	loaded, err := s.LoadDraft(ctx, "s-1")
	if err != nil {
		t.Fatalf("LoadDraft failed: %v", err)
	}
	if loaded.Step != models.StepSummary || !loaded.Draft.Completed[models.StepCenter] {
		t.Errorf("Expected latest draft at summary, got %+v", loaded)
	}
	if err := s.DeleteDraft(ctx, "s-1"); err != nil {
		t.Fatalf("DeleteDraft failed: %v", err)
	}
	if err := s.DeleteDraft(ctx, "s-1"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGormStoreUsers(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, models.User{Name: "Officer", Email: "Officer@Example.org", Password: "hash", Role: models.RoleLGU}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	u, err := s.FindUserByEmail(ctx, "officer@example.org")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if u.Role != models.RoleLGU {
		t.Errorf("Expected LGU role, got %q", u.Role)
	}
	if _, err := s.CreateUser(ctx, models.User{Name: "Dup", Email: "officer@example.org", Password: "x"}); !errors.Is(err, services.ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate email, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evacreport/backend/internal/models"
)

func newTestManager(store *stubStore) *SessionManager {
	counters := NewIncidentCounterService(store)
	return NewSessionManager(store, NewSubmissionCoordinator(store, store, counters), models.SchemaAgeBanded)
}

func TestSessionCapacityWarningEndToEnd(t *testing.T) {
	store := seededStore()
	m := newTestManager(store)
	ctx := context.Background()

	s, err := m.Open(ctx, "inc-1", "", "u-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.SelectCenter(ctx, ""); err != nil {
		t.Fatalf("SelectCenter failed: %v", err)
	}
	if _, err := s.UpdateCenterDetails(CenterDetails{Name: "Barangay Hall", Capacity: 50}); err != nil {
		t.Fatalf("UpdateCenterDetails failed: %v", err)
	}

	view, applied, err := s.UpdateSection(models.SectionDemographics, models.Demographics{
		InfantMaleNow:       5,
		ToddlerFemaleNow:    5,
		SchoolAgeMaleNow:    10,
		AdultMaleNow:        20,
		AdultFemaleNow:      15,
		ElderlyFemaleNow:    5,
		AdultMaleCumulative: 90,
	})
	if err != nil || !applied {
		t.Fatalf("UpdateSection failed: applied=%v err=%v", applied, err)
	}
	if view.Derived.TotalCurrentEvacuees != 60 || !view.Derived.ExceedsCapacity {
		t.Errorf("Expected total 60 exceeding capacity, got %d %v", view.Derived.TotalCurrentEvacuees, view.Derived.ExceedsCapacity)
	}

	view, _, err = s.UpdateSection(models.SectionDemographics, models.Demographics{AdultMaleNow: 20, AdultFemaleNow: 20})
	if err != nil {
		t.Fatalf("UpdateSection failed: %v", err)
	}
	if view.Derived.TotalCurrentEvacuees != 40 || view.Derived.ExceedsCapacity {
		t.Errorf("Expected total 40 within capacity, got %d %v", view.Derived.TotalCurrentEvacuees, view.Derived.ExceedsCapacity)
	}
}

func TestSessionNavigationDoesNotTouchCompletion(t *testing.T) {
	m := newTestManager(seededStore())
	s, err := m.Open(context.Background(), "inc-1", "", "u-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s.Next()
	view := s.Next()
	if view.Step != models.StepSectoral {
		t.Errorf("Expected sectoral, got %s", view.Step)
	}
	if len(view.Derived.Completed) != 0 {
		t.Errorf("Expected no completed steps from navigation, got %v", view.Derived.Completed)
	}
	if _, err := s.GoTo("nowhere"); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("Expected ErrUnknownStep, got %v", err)
	}
}

func TestSessionOpenOnExistingCenter(t *testing.T) {
	m := newTestManager(seededStore())
	s, err := m.Open(context.Background(), "inc-1", "ec-sj", "u-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	view := s.View()
	if view.Draft.Center.ID != "ec-sj" || !view.Draft.Completed[models.StepCenter] {
		t.Errorf("Expected ec-sj loaded with center complete, got %+v", view.Draft)
	}

	if _, err := m.Open(context.Background(), "inc-404", "", "u-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown incident, got %v", err)
	}
	if _, err := m.Open(context.Background(), "inc-1", "ec-404", "u-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown center, got %v", err)
	}
}

func TestSessionContactsKeepSinglePrimary(t *testing.T) {
	m := newTestManager(seededStore())
	s, _ := m.Open(context.Background(), "inc-1", "", "u-1")

	view, err := s.AddContact(models.ContactPerson{Name: "Ana", Phone: "1", IsPrimary: true})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	view, err = s.AddContact(models.ContactPerson{Name: "Ben", Phone: "2", IsPrimary: true})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	contacts := view.Draft.Center.ContactPersons
	if models.CountPrimary(contacts) != 1 || !contacts[1].IsPrimary {
		t.Errorf("Expected Ben as the only primary, got %v", primaries(contacts))
	}
	if !view.Draft.Completed[models.StepContact] {
		t.Error("Expected contact step complete")
	}

	view, err = s.TogglePrimary(contacts[0].ID)
	if err != nil {
		t.Fatalf("TogglePrimary failed: %v", err)
	}
	if !view.Draft.Center.ContactPersons[0].IsPrimary || view.Draft.Center.ContactPersons[1].IsPrimary {
		t.Errorf("Expected Ana primary after toggle, got %v", primaries(view.Draft.Center.ContactPersons))
	}

	before := s.View().Draft
	if _, err := s.AddContact(models.ContactPerson{Name: "NoPhone"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if len(s.View().Draft.Center.ContactPersons) != len(before.Center.ContactPersons) {
		t.Error("Expected contacts unchanged after rejected add")
	}
}

func TestSessionSubmitBatch(t *testing.T) {
	store := seededStore()
	m := newTestManager(store)
	ctx := context.Background()
	s, _ := m.Open(ctx, "inc-1", "", "u-1")

	if _, err := s.CommitToQueue(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput when nothing is selected, got %v", err)
	}

	_, _ = s.SelectCenter(ctx, "")
	_, _ = s.UpdateCenterDetails(CenterDetails{Name: "Gym A", Capacity: 30})
	view, err := s.CommitToQueue()
	if err != nil {
		t.Fatalf("CommitToQueue failed: %v", err)
	}
	if view.QueueLength != 1 || view.Step != models.StepCenter {
		t.Errorf("Expected queue 1 at center step, got %d at %s", view.QueueLength, view.Step)
	}

	_, _ = s.SelectCenter(ctx, "ec-sj")
	_, _ = s.GoTo(models.StepSummary)
	if _, err := s.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	view, result, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(result.Submitted) != 2 {
		t.Errorf("Expected 2 submitted, got %d", len(result.Submitted))
	}
	if view.QueueLength != 0 || view.Step != models.StepCenter {
		t.Errorf("Expected reset session, got queue %d at %s", view.QueueLength, view.Step)
	}
	if view.Navigation == nil || view.Navigation.View != ViewIncidentDetail || view.Navigation.Params["id"] != "inc-1" {
		t.Errorf("Expected navigation to incident-detail inc-1, got %+v", view.Navigation)
	}
	if view.Navigation != nil && view.Navigation.Path != "/incident/inc-1" {
		t.Errorf("Expected path /incident/inc-1, got %q", view.Navigation.Path)
	}
	if _, ok := store.drafts[s.ID()]; ok {
		t.Error("Expected saved draft removed after submission")
	}
	if inc := store.incidents["inc-1"]; inc.EvacuationCenters != 2 {
		t.Errorf("Expected incident counters refreshed to 2 centers, got %d", inc.EvacuationCenters)
	}
}

func TestSessionSubmitPartialFailureKeepsRemaining(t *testing.T) {
	store := seededStore()
	store.createErrAt = 2
	m := newTestManager(store)
	ctx := context.Background()
	s, _ := m.Open(ctx, "inc-1", "", "u-1")

	for _, name := range []string{"A", "B", "C"} {
		_, _ = s.SelectCenter(ctx, "")
		_, _ = s.UpdateCenterDetails(CenterDetails{Name: name})
		_, _ = s.CommitToQueue()
	}

	view, result, err := s.Submit(ctx)
	if err == nil {
		t.Fatal("Expected submission error")
	}
	if len(result.Submitted) != 1 {
		t.Errorf("Expected 1 submitted, got %d", len(result.Submitted))
	}
	if view.QueueLength != 2 {
		t.Errorf("Expected B and C left in queue, got %d", view.QueueLength)
	}
	if view.Navigation != nil {
		t.Errorf("Expected no navigation after failure, got %+v", view.Navigation)
	}

	store.createErrAt = 0
	view, result, err = s.Submit(ctx)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if len(result.Submitted) != 2 || view.QueueLength != 0 {
		t.Errorf("Expected retry to submit 2 and empty the queue, got %d, %d", len(result.Submitted), view.QueueLength)
	}
}

func TestSessionManagerResumeAfterRestart(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	first := newTestManager(store)
	s, _ := first.Open(ctx, "inc-1", "", "u-1")
	_, _ = s.UpdateCenterDetails(CenterDetails{Name: "Saved Gym", Capacity: 40})
	_, _ = s.GoTo(models.StepFacilities)
	if _, err := s.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	second := newTestManager(store)
	resumed, err := second.Resume(ctx, s.ID())
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	view := resumed.View()
	if view.Step != models.StepFacilities || view.Draft.Center.Name != "Saved Gym" {
		t.Errorf("Expected saved state restored, got %s %q", view.Step, view.Draft.Center.Name)
	}

	if _, err := second.Resume(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManagerDiscard(t *testing.T) {
	m := newTestManager(seededStore())
	ctx := context.Background()
	s, _ := m.Open(ctx, "inc-1", "", "u-1")

	if err := m.Discard(ctx, s.ID()); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := m.Discard(ctx, s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second discard, got %v", err)
	}
}

func TestSessionRefusesCenterUnderOtherSchema(t *testing.T) {
	store := seededStore()
	chapel := models.NewEvacuationCenter(models.SchemaCoarse)
	chapel.ID = "ec-chapel"
	chapel.Name = "Old Chapel"
	chapel.IncidentID = strPtr("inc-1")
	chapel.Coarse.InsideMale = 8
	store.centers[chapel.ID] = chapel
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.Open(ctx, "inc-1", "ec-chapel", "u-1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput opening a coarse center, got %v", err)
	}
	if got := len(m.sessions); got != 0 {
		t.Errorf("Expected no session registered, got %d", got)
	}

	s, err := m.Open(ctx, "inc-1", "", "u-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.SelectCenter(ctx, "ec-chapel"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput selecting a coarse center, got %v", err)
	}
	if _, err := s.CommitToQueue(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected nothing selected to commit, got %v", err)
	}
	if got := store.centers["ec-chapel"].TotalServed(); got != 8 {
		t.Errorf("Expected stored center to keep 8 evacuees, got %d", got)
	}
}

func TestEvictIdleSessions(t *testing.T) {
	store := seededStore()
	m := newTestManager(store)
	ctx := context.Background()
	now := time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, _ := m.Open(ctx, "inc-1", "", "u-1")
	fresh, _ := m.Open(ctx, "inc-1", "", "u-2")
	if _, err := stale.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	stale.updatedAt = now.Add(-3 * time.Hour)
	fresh.updatedAt = now.Add(-10 * time.Minute)

	if got := m.EvictIdle(2 * time.Hour); got != 1 {
		t.Errorf("Expected 1 session evicted, got %d", got)
	}
	if _, err := m.Get(stale.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected stale session gone, got %v", err)
	}
	if _, err := m.Get(fresh.ID()); err != nil {
		t.Errorf("Expected fresh session kept, got %v", err)
	}
	if _, ok := store.drafts[stale.ID()]; !ok {
		t.Error("Expected saved draft kept after eviction")
	}
	if _, err := m.Resume(ctx, stale.ID()); err != nil {
		t.Errorf("Expected evicted session to resume from its saved draft, got %v", err)
	}
	if got := m.EvictIdle(2 * time.Hour); got != 0 {
		t.Errorf("Expected nothing left to evict, got %d", got)
	}
}

func TestStartEvictionRejectsBadSchedule(t *testing.T) {
	m := newTestManager(seededStore())
	if err := m.StartEviction("not a schedule", time.Hour); err == nil {
		t.Error("Expected an error for an invalid schedule")
	}
	if err := m.StartEviction("@every 1m", 0); err == nil {
		t.Error("Expected an error for a zero idle timeout")
	}
	if err := m.StartEviction("@every 1m", time.Hour); err != nil {
		t.Fatalf("StartEviction failed: %v", err)
	}
	m.StopEviction()
}

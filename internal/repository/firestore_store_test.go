package repository

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

var (
	_ services.CenterStore     = (*FirestoreStore)(nil)
	_ services.DraftRepository = (*FirestoreStore)(nil)
	_ services.UserRepository  = (*FirestoreStore)(nil)
)

func firestoreName(t *testing.T, v any, field string) string {
	t.Helper()
	f, ok := reflect.TypeOf(v).FieldByName(field)
	if !ok {
		t.Fatalf("%T has no field %s", v, field)
	}
	return strings.Split(f.Tag.Get("firestore"), ",")[0]
}

func TestFirestoreFieldPathsMatchTags(t *testing.T) {
	tests := []struct {
		model any
		field string
		path  string
	}{
		{models.Incident{}, "EvacuationCenters", incidentCentersField},
		{models.Incident{}, "TotalEvacuees", incidentEvacueesField},
		{models.Incident{}, "UpdatedAt", incidentUpdatedField},
		{models.User{}, "Email", userEmailField},
	}
	for _, tt := range tests {
		if got := firestoreName(t, tt.model, tt.field); got != tt.path {
			t.Errorf("Expected %T.%s stored as %q, got %q", tt.model, tt.field, tt.path, got)
		}
	}
	if got := firestoreName(t, models.User{}, "Password"); got == "" || got == "-" {
		t.Errorf("Expected password hash persisted, got tag %q", got)
	}
}

// Runs only against the Firestore emulator.
func newEmulatorStore(t *testing.T) *FirestoreStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "evacreport-test")
	if err != nil {
		t.Fatalf("Failed to create Firestore client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewFirestoreStore(client)
}

func TestFirestoreStoreCenters(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	c := models.NewEvacuationCenter(models.SchemaAgeBanded)
	c.Name = "Emulator Gym"
	c.Capacity = 10
	created, err := s.CreateCenter(ctx, c)
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	created.Capacity = 25
	if _, err := s.UpdateCenter(ctx, created); err != nil {
		t.Fatalf("UpdateCenter failed: %v", err)
	}
	got, err := s.GetCenter(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCenter failed: %v", err)
	}
	if got.Capacity != 25 {
		t.Errorf("Expected capacity 25, got %d", got.Capacity)
	}
	if _, err := s.GetCenter(ctx, "missing-center"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteDraft(ctx, "missing-draft"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFirestoreStoreCountersAndUsers(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	if err := s.UpsertIncident(ctx, models.Incident{ID: "inc-emu", Name: "Emulator Storm", Status: models.IncidentActive}); err != nil {
		t.Fatalf("UpsertIncident failed: %v", err)
	}
	if err := s.UpdateIncidentCounters(ctx, "inc-emu", 3, 42); err != nil {
		t.Fatalf("UpdateIncidentCounters failed: %v", err)
	}
	inc, err := s.GetIncident(ctx, "inc-emu")
	if err != nil {
		t.Fatalf("GetIncident failed: %v", err)
	}
	if inc.EvacuationCenters != 3 || inc.TotalEvacuees != 42 {
		t.Errorf("Expected counters 3/42, got %d/%d", inc.EvacuationCenters, inc.TotalEvacuees)
	}

	if _, err := s.CreateUser(ctx, models.User{Name: "Emu", Email: "Emu@Example.org", Password: "hash"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	u, err := s.FindUserByEmail(ctx, "emu@example.org")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if u.Password != "hash" {
		t.Errorf("Expected password hash round-tripped, got %q", u.Password)
	}
}

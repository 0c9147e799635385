package services

import (
	"context"
	"errors"
	"testing"

	"github.com/evacreport/backend/internal/models"
)

func TestIncidentServiceCreate(t *testing.T) {
	store := newStubStore()
	svc := NewIncidentService(store)
	svc.idGenerator = func() string { return "inc-new" }

	inc, err := svc.Create(context.Background(), IncidentInput{
		Name:     strPtr("  Typhoon Rai "),
		Severity: strPtr("high"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if inc.ID != "inc-new" || inc.Name != "Typhoon Rai" {
		t.Errorf("Expected inc-new named Typhoon Rai, got %q %q", inc.ID, inc.Name)
	}
	if inc.Severity != models.SeverityHigh || inc.Status != models.IncidentActive {
		t.Errorf("Expected High/Active, got %s/%s", inc.Severity, inc.Status)
	}
	if _, ok := store.incidents["inc-new"]; !ok {
		t.Error("Expected incident to be stored")
	}
}

func TestIncidentServiceValidation(t *testing.T) {
	tests := []struct {
		name string
		in   IncidentInput
	}{
		{"missing name", IncidentInput{}},
		{"blank name", IncidentInput{Name: strPtr("   ")}},
		{"bad severity", IncidentInput{Name: strPtr("Flood"), Severity: strPtr("extreme")}},
		{"bad status", IncidentInput{Name: strPtr("Flood"), Status: strPtr("paused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIncidentService(newStubStore())
			if _, err := svc.Create(context.Background(), tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIncidentServiceUpdate(t *testing.T) {
	store := seededStore()
	svc := NewIncidentService(store)

	inc, err := svc.Update(context.Background(), "inc-1", IncidentInput{Status: strPtr("closed")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if inc.Status != models.IncidentClosed || inc.Name != "Typhoon Odette" {
		t.Errorf("Expected closed Typhoon Odette, got %s %q", inc.Status, inc.Name)
	}

	if _, err := svc.Update(context.Background(), "missing", IncidentInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

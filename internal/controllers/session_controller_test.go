package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("wrap: %w", services.ErrInvalidInput), http.StatusUnprocessableEntity},
		{fmt.Errorf("center x: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrSessionNotFound, http.StatusNotFound},
		{services.ErrUnknownStep, http.StatusBadRequest},
		{services.ErrConflict, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.expected {
			t.Errorf("statusFor(%v): expected %d, got %d", tt.err, tt.expected, got)
		}
	}
}

func TestDecodeSection(t *testing.T) {
	v, err := decodeSection(models.SectionDemographics, models.SchemaAgeBanded, []byte(`{"adult_male_now": 7}`))
	if err != nil {
		t.Fatalf("decodeSection failed: %v", err)
	}
	if d, ok := v.(models.Demographics); !ok || d.AdultMaleNow != 7 {
		t.Errorf("Expected age-banded demographics with 7 adult males, got %#v", v)
	}

	v, err = decodeSection(models.SectionDemographics, models.SchemaCoarse, []byte(`{"insideMale": 3}`))
	if err != nil {
		t.Fatalf("decodeSection failed: %v", err)
	}
	if h, ok := v.(models.CoarseHeadcount); !ok || h.InsideMale != 3 {
		t.Errorf("Expected coarse headcount with 3 inside males, got %#v", v)
	}

	v, err = decodeSection(models.SectionContactPersons, models.SchemaAgeBanded, []byte(`[{"id":"c1","name":"Ana","phone":"1"}]`))
	if err != nil {
		t.Fatalf("decodeSection failed: %v", err)
	}
	if contacts, ok := v.([]models.ContactPerson); !ok || len(contacts) != 1 {
		t.Errorf("Expected one contact, got %#v", v)
	}

	if v, err := decodeSection("weather", models.SchemaAgeBanded, []byte(`{}`)); v != nil || err != nil {
		t.Errorf("Expected nil for unknown section, got %v %v", v, err)
	}
	if _, err := decodeSection(models.SectionMedia, models.SchemaAgeBanded, []byte(`{"not":"a list"}`)); err == nil {
		t.Error("Expected decode error for wrong shape")
	}
}

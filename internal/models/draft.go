package models

import (
	"time"
)

// Draft is an in-progress report: a partially built center plus the steps
// completed so far. Nothing in a draft is persisted until submission.
type Draft struct {
	ID          string             `json:"id"`
	IncidentID  string             `json:"incidentId"`
	Schema      DemographicsSchema `json:"demographicsSchema"`
	Center      EvacuationCenter   `json:"center"`
	Completed   Completion         `json:"completed"`
	IsNewCenter bool               `json:"isNewCenter"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// IsExisting reports whether submitting the draft updates a stored center.
func (d Draft) IsExisting() bool {
	return d.Center.ID != ""
}

// Clone deep-copies the draft.
func (d Draft) Clone() Draft {
	out := d
	out.Center = d.Center.Clone()
	out.Completed = d.Completed.Clone()
	return out
}

// StoredDraft is a saved wizard session: the draft being edited, the step it
// was on, and any drafts already queued for the incident.
type StoredDraft struct {
	SessionID  string    `json:"sessionId" gorm:"primaryKey;size:64"`
	IncidentID string    `json:"incidentId" gorm:"size:64;index"`
	Step       Step      `json:"step"`
	Draft      Draft     `json:"draft" gorm:"serializer:json"`
	Queue      []Draft   `json:"queue" gorm:"serializer:json"`
	SavedBy    string    `json:"savedBy"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (StoredDraft) TableName() string {
	return "report_drafts"
}

package services

import (
	"context"

	"github.com/evacreport/backend/internal/models"
)

// IncidentReader is the read side of the incident store.
type IncidentReader interface {
	ListIncidents(ctx context.Context) ([]models.Incident, error)
	GetIncident(ctx context.Context, id string) (models.Incident, error)
}

// CenterWriter persists submitted centers. CreateCenter assigns an id when
// the center has none.
type CenterWriter interface {
	CreateCenter(ctx context.Context, center models.EvacuationCenter) (models.EvacuationCenter, error)
	UpdateCenter(ctx context.Context, center models.EvacuationCenter) (models.EvacuationCenter, error)
}

// CenterStore is the incident/center collaborator the reporting core reads
// from and writes to. Missing ids yield ErrNotFound.
type CenterStore interface {
	IncidentReader
	CenterWriter
	UpdateIncidentCounters(ctx context.Context, incidentID string, centers, evacuees int) error
	ListCenters(ctx context.Context) ([]models.EvacuationCenter, error)
	GetCenter(ctx context.Context, id string) (models.EvacuationCenter, error)
}

// DraftRepository keeps saved wizard sessions.
type DraftRepository interface {
	SaveDraft(ctx context.Context, draft models.StoredDraft) error
	LoadDraft(ctx context.Context, sessionID string) (models.StoredDraft, error)
	DeleteDraft(ctx context.Context, sessionID string) error
}

// UserRepository backs login for the identity collaborator.
type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
}

// IncidentWriter creates and replaces incidents.
type IncidentWriter interface {
	IncidentReader
	UpsertIncident(ctx context.Context, inc models.Incident) error
}

// UserDirectory lists accounts for the Central Office user admin view.
type UserDirectory interface {
	UserRepository
	ListUsers(ctx context.Context) ([]models.User, error)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
)

// IncidentInput carries the editable fields of an incident. Nil fields are
// left unchanged on update.
type IncidentInput struct {
	Name     *string    `json:"name"`
	Type     *string    `json:"type"`
	Severity *string    `json:"severity"`
	Date     *time.Time `json:"date"`
	Location *string    `json:"location"`
	Status   *string    `json:"status"`
}

// IncidentService lets the Central Office register and update incidents.
// Center and evacuee counters are owned by the counter service.
type IncidentService struct {
	store       IncidentWriter
	idGenerator func() string
	now         func() time.Time
}

func NewIncidentService(store IncidentWriter) *IncidentService {
	return &IncidentService{store: store, idGenerator: uuid.NewString, now: time.Now}
}

func (s *IncidentService) Create(ctx context.Context, in IncidentInput) (models.Incident, error) {
	inc := models.Incident{
		ID:       s.idGenerator(),
		Severity: models.SeverityLow,
		Status:   models.IncidentActive,
		Date:     s.now(),
	}
	if err := applyIncidentInput(&inc, in); err != nil {
		return models.Incident{}, err
	}
	if strings.TrimSpace(inc.Name) == "" {
		return models.Incident{}, invalidInput("incident name is required")
	}
	inc.CreatedAt = s.now()
	inc.UpdatedAt = inc.CreatedAt

	if err := s.store.UpsertIncident(ctx, inc); err != nil {
		return models.Incident{}, fmt.Errorf("failed to create incident: %w", err)
	}
	logger.Info("Incident created", map[string]interface{}{"incident_id": inc.ID, "name": inc.Name})
	return inc, nil
}

func (s *IncidentService) Update(ctx context.Context, id string, in IncidentInput) (models.Incident, error) {
	inc, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return models.Incident{}, err
	}
	if err := applyIncidentInput(&inc, in); err != nil {
		return models.Incident{}, err
	}
	if strings.TrimSpace(inc.Name) == "" {
		return models.Incident{}, invalidInput("incident name is required")
	}
	inc.UpdatedAt = s.now()

	if err := s.store.UpsertIncident(ctx, inc); err != nil {
		return models.Incident{}, fmt.Errorf("failed to update incident %s: %w", id, err)
	}
	logger.Info("Incident updated", map[string]interface{}{"incident_id": inc.ID, "status": inc.Status})
	return inc, nil
}

func applyIncidentInput(inc *models.Incident, in IncidentInput) error {
	if in.Name != nil {
		inc.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		inc.Type = *in.Type
	}
	if in.Location != nil {
		inc.Location = *in.Location
	}
	if in.Date != nil {
		inc.Date = *in.Date
	}
	if in.Severity != nil {
		severity, ok := models.ParseIncidentSeverity(*in.Severity)
		if !ok {
			return invalidInput("invalid severity value " + *in.Severity)
		}
		inc.Severity = severity
	}
	if in.Status != nil {
		status, ok := models.ParseIncidentStatus(*in.Status)
		if !ok {
			return invalidInput("invalid status value " + *in.Status)
		}
		inc.Status = status
	}
	return nil
}

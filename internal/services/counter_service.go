package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
)

// CounterStore is what the counter service needs from the center store.
type CounterStore interface {
	ListIncidents(ctx context.Context) ([]models.Incident, error)
	ListCenters(ctx context.Context) ([]models.EvacuationCenter, error)
	UpdateIncidentCounters(ctx context.Context, incidentID string, centers, evacuees int) error
}

// IncidentCounterService maintains the denormalized evacuationCenters and
// totalEvacuees counters on incidents.
type IncidentCounterService struct {
	store   CounterStore
	cron    *cron.Cron
	timeout time.Duration
}

func NewIncidentCounterService(store CounterStore) *IncidentCounterService {
	return &IncidentCounterService{store: store, timeout: 30 * time.Second}
}

// IncidentCounters tallies the centers assigned to one incident.
func IncidentCounters(centers []models.EvacuationCenter, incidentID string) (count, evacuees int) {
	for _, c := range centers {
		if c.AssignedTo(incidentID) {
			count++
			evacuees += c.TotalServed()
		}
	}
	return count, evacuees
}

// RefreshIncident recomputes the counters of a single incident.
func (s *IncidentCounterService) RefreshIncident(ctx context.Context, incidentID string) error {
	centers, err := s.store.ListCenters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list centers: %w", err)
	}
	count, evacuees := IncidentCounters(centers, incidentID)
	if err := s.store.UpdateIncidentCounters(ctx, incidentID, count, evacuees); err != nil {
		return fmt.Errorf("failed to update counters for incident %s: %w", incidentID, err)
	}
	return nil
}

// Refresh recomputes the counters of every incident.
func (s *IncidentCounterService) Refresh(ctx context.Context) error {
	incidents, err := s.store.ListIncidents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list incidents: %w", err)
	}
	centers, err := s.store.ListCenters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list centers: %w", err)
	}
	for _, inc := range incidents {
		count, evacuees := IncidentCounters(centers, inc.ID)
		if count == inc.EvacuationCenters && evacuees == inc.TotalEvacuees {
			continue
		}
		if err := s.store.UpdateIncidentCounters(ctx, inc.ID, count, evacuees); err != nil {
			return fmt.Errorf("failed to update counters for incident %s: %w", inc.ID, err)
		}
		logger.Info("Incident counters refreshed", map[string]interface{}{
			"incident_id": inc.ID,
			"centers":     count,
			"evacuees":    evacuees,
		})
	}
	return nil
}

// Start schedules Refresh with a cron spec such as "@every 5m".
func (s *IncidentCounterService) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			logger.WithError(err, "counter_service").Error("Scheduled counter refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid counter refresh schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	logger.Info("Counter refresh scheduled", map[string]interface{}{"spec": spec})
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *IncidentCounterService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

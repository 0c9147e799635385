package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/evacreport/backend/internal/models"
)

// stubStore is an in-memory CenterStore and DraftRepository for tests.
type stubStore struct {
	mu        sync.Mutex
	incidents map[string]models.Incident
	centers   map[string]models.EvacuationCenter
	drafts    map[string]models.StoredDraft
	nextID    int

	createErrAt int // fail the n-th create (1-based); 0 disables
	creates     int
	updates     int
	calls       []string
}

func newStubStore() *stubStore {
	return &stubStore{
		incidents: map[string]models.Incident{},
		centers:   map[string]models.EvacuationCenter{},
		drafts:    map[string]models.StoredDraft{},
	}
}

func (s *stubStore) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Incident{}
	for _, inc := range s.incidents {
		out = append(out, inc)
	}
	return out, nil
}

func (s *stubStore) GetIncident(ctx context.Context, id string) (models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return models.Incident{}, ErrNotFound
	}
	return inc, nil
}

func (s *stubStore) UpsertIncident(ctx context.Context, inc models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "upsert-incident:"+inc.ID)
	s.incidents[inc.ID] = inc
	return nil
}

func (s *stubStore) UpdateIncidentCounters(ctx context.Context, id string, centers, evacuees int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return ErrNotFound
	}
	inc.EvacuationCenters = centers
	inc.TotalEvacuees = evacuees
	s.incidents[id] = inc
	return nil
}

func (s *stubStore) ListCenters(ctx context.Context) ([]models.EvacuationCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.EvacuationCenter{}
	for _, c := range s.centers {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *stubStore) GetCenter(ctx context.Context, id string) (models.EvacuationCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.centers[id]
	if !ok {
		return models.EvacuationCenter{}, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *stubStore) CreateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.calls = append(s.calls, "create:"+c.Name)
	if s.createErrAt > 0 && s.creates == s.createErrAt {
		return models.EvacuationCenter{}, errors.New("store unavailable")
	}
	s.nextID++
	c.ID = fmt.Sprintf("ec-%d", s.nextID)
	s.centers[c.ID] = c.Clone()
	return c, nil
}

func (s *stubStore) UpdateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	s.calls = append(s.calls, "update:"+c.Name)
	if _, ok := s.centers[c.ID]; !ok {
		return models.EvacuationCenter{}, ErrNotFound
	}
	s.centers[c.ID] = c.Clone()
	return c, nil
}

func (s *stubStore) SaveDraft(ctx context.Context, d models.StoredDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.SessionID] = d
	return nil
}

func (s *stubStore) LoadDraft(ctx context.Context, sessionID string) (models.StoredDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[sessionID]
	if !ok {
		return models.StoredDraft{}, ErrNotFound
	}
	return d, nil
}

func (s *stubStore) DeleteDraft(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.drafts, sessionID)
	return nil
}

func strPtr(s string) *string {
	return &s
}

func seededStore() *stubStore {
	s := newStubStore()
	s.incidents["inc-1"] = models.Incident{ID: "inc-1", Name: "Typhoon Odette", Status: models.IncidentActive}
	s.incidents["inc-2"] = models.Incident{ID: "inc-2", Name: "Leyte Flood", Status: models.IncidentClosed}
	sj := models.NewEvacuationCenter(models.SchemaAgeBanded)
	sj.ID = "ec-sj"
	sj.IncidentID = strPtr("inc-1")
	sj.Name = "San Jose ES"
	sj.Barangay = "Poblacion"
	sj.City = "Tacloban"
	sj.Capacity = 100
	sj.Demographics.AdultMaleNow = 30
	s.centers[sj.ID] = sj
	gym := models.NewEvacuationCenter(models.SchemaAgeBanded)
	gym.ID = "ec-gym"
	gym.Name = "Ormoc Gym"
	gym.Barangay = "Cogon"
	gym.City = "Ormoc"
	gym.Capacity = 10
	gym.Status = models.CenterDamaged
	gym.Demographics.AdultFemaleNow = 12
	s.centers[gym.ID] = gym
	return s
}

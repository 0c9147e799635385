package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

// MemoryStore keeps incidents, centers, drafts, and users in process
// memory. It is the default store and the fallback when no database is
// configured.
type MemoryStore struct {
	mu          sync.RWMutex
	incidents   map[string]models.Incident
	centers     map[string]models.EvacuationCenter
	drafts      map[string]models.StoredDraft
	users       map[string]models.User
	idGenerator func() string
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		incidents:   make(map[string]models.Incident),
		centers:     make(map[string]models.EvacuationCenter),
		drafts:      make(map[string]models.StoredDraft),
		users:       make(map[string]models.User),
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

// Seed loads incidents, centers, and already hashed users.
func (s *MemoryStore) Seed(incidents []models.Incident, centers []models.EvacuationCenter, users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range incidents {
		if inc.ID == "" {
			inc.ID = s.idGenerator()
		}
		s.incidents[inc.ID] = inc
	}
	for _, c := range centers {
		if c.ID == "" {
			c.ID = s.idGenerator()
		}
		s.centers[c.ID] = c.Clone()
	}
	for _, u := range users {
		if u.ID == "" {
			u.ID = s.idGenerator()
		}
		s.users[strings.ToLower(u.Email)] = u
	}
}

func (s *MemoryStore) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) GetIncident(ctx context.Context, id string) (models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents[id]
	if !ok {
		return models.Incident{}, fmt.Errorf("incident %s: %w", id, services.ErrNotFound)
	}
	return inc, nil
}

func (s *MemoryStore) UpsertIncident(ctx context.Context, inc models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inc.ID == "" {
		inc.ID = s.idGenerator()
	}
	inc.UpdatedAt = s.now()
	s.incidents[inc.ID] = inc
	return nil
}

func (s *MemoryStore) UpdateIncidentCounters(ctx context.Context, id string, centers, evacuees int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return fmt.Errorf("incident %s: %w", id, services.ErrNotFound)
	}
	inc.EvacuationCenters = centers
	inc.TotalEvacuees = evacuees
	inc.UpdatedAt = s.now()
	s.incidents[id] = inc
	return nil
}

func (s *MemoryStore) ListCenters(ctx context.Context) ([]models.EvacuationCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EvacuationCenter, 0, len(s.centers))
	for _, c := range s.centers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetCenter(ctx context.Context, id string) (models.EvacuationCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.centers[id]
	if !ok {
		return models.EvacuationCenter{}, fmt.Errorf("center %s: %w", id, services.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *MemoryStore) CreateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.idGenerator()
	}
	if _, exists := s.centers[c.ID]; exists {
		return models.EvacuationCenter{}, fmt.Errorf("center %s: %w", c.ID, services.ErrConflict)
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.centers[c.ID] = c.Clone()
	return c, nil
}

func (s *MemoryStore) UpdateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.centers[c.ID]
	if !ok {
		return models.EvacuationCenter{}, fmt.Errorf("center %s: %w", c.ID, services.ErrNotFound)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	s.centers[c.ID] = c.Clone()
	return c, nil
}

func (s *MemoryStore) SaveDraft(ctx context.Context, d models.StoredDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Draft = d.Draft.Clone()
	queue := make([]models.Draft, len(d.Queue))
	for i, q := range d.Queue {
		queue[i] = q.Clone()
	}
	d.Queue = queue
	s.drafts[d.SessionID] = d
	return nil
}

func (s *MemoryStore) LoadDraft(ctx context.Context, sessionID string) (models.StoredDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[sessionID]
	if !ok {
		return models.StoredDraft{}, fmt.Errorf("draft %s: %w", sessionID, services.ErrNotFound)
	}
	return d, nil
}

func (s *MemoryStore) DeleteDraft(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[sessionID]; !ok {
		return fmt.Errorf("draft %s: %w", sessionID, services.ErrNotFound)
	}
	delete(s.drafts, sessionID)
	return nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", email, services.ErrNotFound)
	}
	return u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = s.idGenerator()
	}
	u.Email = strings.ToLower(u.Email)
	if _, exists := s.users[u.Email]; exists {
		return models.User{}, fmt.Errorf("user %s: %w", u.Email, services.ErrConflict)
	}
	s.users[u.Email] = u
	return u, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Health always succeeds for the memory store.
func (s *MemoryStore) Health(ctx context.Context) error {
	return nil
}

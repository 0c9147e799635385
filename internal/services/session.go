package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
)

// SessionView is the snapshot returned after every session operation.
type SessionView struct {
	ID           string                    `json:"id"`
	IncidentID   string                    `json:"incidentId"`
	IncidentName string                    `json:"incidentName"`
	Schema       models.DemographicsSchema `json:"demographicsSchema"`
	Step         models.Step               `json:"step"`
	Steps        []models.Step             `json:"steps"`
	CanGoBack    bool                      `json:"canGoBack"`
	AtSummary    bool                      `json:"atSummary"`
	Draft        models.Draft              `json:"draft"`
	Derived      Derived                   `json:"derived"`
	IsNewCenter  bool                      `json:"isNewCenter"`
	QueueLength  int                       `json:"queueLength"`
	Navigation   *Destination              `json:"navigation,omitempty"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

// ReportSession binds one draft store, wizard, and navigator to a single
// wizard session. Operations are serialized by the session mutex.
type ReportSession struct {
	mu        sync.Mutex
	id        string
	userID    string
	incident  models.Incident
	drafts    *DraftStore
	wizard    *Wizard
	engine    *Engine
	navigator *RecordingNavigator
	centers   CenterStore
	submitter *SubmissionCoordinator
	updatedAt time.Time
}

func (s *ReportSession) ID() string {
	return s.id
}

func (s *ReportSession) IncidentID() string {
	return s.incident.ID
}

func (s *ReportSession) touch() {
	s.updatedAt = time.Now()
}

func (s *ReportSession) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// view must be called with the mutex held.
func (s *ReportSession) view() SessionView {
	draft := s.drafts.Draft()
	v := SessionView{
		ID:           s.id,
		IncidentID:   s.incident.ID,
		IncidentName: s.incident.Name,
		Schema:       s.drafts.Schema(),
		Step:         s.wizard.Current(),
		Steps:        append([]models.Step{}, models.Steps...),
		CanGoBack:    s.wizard.CanGoBack(),
		AtSummary:    s.wizard.AtSummary(),
		Draft:        draft,
		Derived:      s.engine.Recompute(draft),
		IsNewCenter:  draft.IsNewCenter,
		QueueLength:  s.drafts.QueueLen(),
		UpdatedAt:    s.updatedAt,
	}
	if dest, ok := s.navigator.Last(); ok {
		v.Navigation = &dest
	}
	return v
}

func (s *ReportSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// do runs fn under the session lock and returns the resulting view.
func (s *ReportSession) do(fn func() error) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return s.view(), err
	}
	s.touch()
	return s.view(), nil
}

// SelectCenter loads a stored center into the draft. An empty id starts
// new-center mode.
func (s *ReportSession) SelectCenter(ctx context.Context, centerID string) (SessionView, error) {
	var center *models.EvacuationCenter
	if centerID != "" {
		c, err := s.centers.GetCenter(ctx, centerID)
		if err != nil {
			return s.View(), fmt.Errorf("failed to load center %s: %w", centerID, err)
		}
		center = &c
	}
	return s.do(func() error {
		return s.drafts.SelectCenter(center)
	})
}

func (s *ReportSession) UpdateCenterDetails(details CenterDetails) (SessionView, error) {
	return s.do(func() error {
		return s.drafts.UpdateCenterDetails(details)
	})
}

// UpdateSection replaces a whole section. applied is false for an unknown
// section or a value of the wrong shape.
func (s *ReportSession) UpdateSection(section models.Section, value any) (view SessionView, applied bool, err error) {
	view, err = s.do(func() error {
		var uerr error
		applied, uerr = s.drafts.UpdateSection(section, value)
		return uerr
	})
	return view, applied, err
}

// editCenter applies an engine edit to a copy of the draft center.
func (s *ReportSession) editCenter(step models.Step, edit func(c *models.EvacuationCenter) error) (SessionView, error) {
	return s.do(func() error {
		c := s.drafts.Draft().Center
		if err := edit(&c); err != nil {
			return err
		}
		s.drafts.replaceCenter(c, step)
		return nil
	})
}

func (s *ReportSession) AddContact(in models.ContactPerson) (SessionView, error) {
	return s.editCenter(models.StepContact, func(c *models.EvacuationCenter) (err error) {
		c.ContactPersons, err = s.engine.AddContact(c.ContactPersons, in)
		return err
	})
}

func (s *ReportSession) TogglePrimary(contactID string) (SessionView, error) {
	return s.editCenter(models.StepContact, func(c *models.EvacuationCenter) (err error) {
		c.ContactPersons, err = TogglePrimary(c.ContactPersons, contactID)
		return err
	})
}

func (s *ReportSession) RemoveContact(contactID string) (SessionView, error) {
	return s.editCenter(models.StepContact, func(c *models.EvacuationCenter) (err error) {
		c.ContactPersons, err = RemoveContact(c.ContactPersons, contactID)
		return err
	})
}

func (s *ReportSession) AddSectoralGroup(in models.SectoralGroup) (SessionView, error) {
	return s.editCenter(models.StepSectoral, func(c *models.EvacuationCenter) (err error) {
		c.SectoralGroups, err = s.engine.AddSectoralGroup(c.SectoralGroups, in)
		return err
	})
}

func (s *ReportSession) UpdateSectoralGroup(in models.SectoralGroup) (SessionView, error) {
	return s.editCenter(models.StepSectoral, func(c *models.EvacuationCenter) (err error) {
		c.SectoralGroups, err = UpdateSectoralGroup(c.SectoralGroups, in)
		return err
	})
}

func (s *ReportSession) RemoveSectoralGroup(groupID string) (SessionView, error) {
	return s.editCenter(models.StepSectoral, func(c *models.EvacuationCenter) (err error) {
		c.SectoralGroups, err = RemoveSectoralGroup(c.SectoralGroups, groupID)
		return err
	})
}

func (s *ReportSession) AddMedia(in models.Media) (SessionView, error) {
	return s.editCenter(models.StepMedia, func(c *models.EvacuationCenter) (err error) {
		c.Media, err = s.engine.AddMedia(c.Media, in)
		return err
	})
}

func (s *ReportSession) RemoveMedia(mediaID string) (SessionView, error) {
	return s.editCenter(models.StepMedia, func(c *models.EvacuationCenter) (err error) {
		c.Media, err = RemoveMedia(c.Media, mediaID)
		return err
	})
}

func (s *ReportSession) SetFacility(kind models.FacilityKind, status models.FacilityStatus, notes string) (SessionView, error) {
	return s.editCenter(models.StepFacilities, func(c *models.EvacuationCenter) (err error) {
		c.Facilities, err = SetFacility(c.Facilities, kind, status, notes)
		return err
	})
}

func (s *ReportSession) Next() SessionView {
	v, _ := s.do(func() error {
		s.wizard.Next()
		return nil
	})
	return v
}

func (s *ReportSession) Previous() SessionView {
	v, _ := s.do(func() error {
		s.wizard.Previous()
		return nil
	})
	return v
}

func (s *ReportSession) GoTo(step models.Step) (SessionView, error) {
	return s.do(func() error {
		return s.wizard.GoTo(step)
	})
}

// SearchCenters filters the store's centers for the center selector.
func (s *ReportSession) SearchCenters(ctx context.Context, term string) ([]models.EvacuationCenter, error) {
	centers, err := s.centers.ListCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	return FilterCenters(centers, term), nil
}

// CommitToQueue queues the draft for the "add another center" flow and
// sends the wizard back to the first step.
func (s *ReportSession) CommitToQueue() (SessionView, error) {
	return s.do(func() error {
		if !s.drafts.HasCenter() {
			return invalidInput("select or register a center before adding another")
		}
		s.drafts.CommitDraftToQueue()
		s.wizard.Reset()
		return nil
	})
}

// Cancel discards the in-progress draft. Queued drafts are kept.
func (s *ReportSession) Cancel() SessionView {
	v, _ := s.do(func() error {
		s.drafts.Reset()
		s.wizard.Reset()
		return nil
	})
	return v
}

func (s *ReportSession) snapshot() models.StoredDraft {
	return models.StoredDraft{
		SessionID:  s.id,
		IncidentID: s.incident.ID,
		Step:       s.wizard.Current(),
		Draft:      s.drafts.Draft(),
		Queue:      s.drafts.Queue(),
		SavedBy:    s.userID,
	}
}

// SaveDraft persists the session without finalizing it.
func (s *ReportSession) SaveDraft(ctx context.Context) (SessionView, error) {
	return s.do(func() error {
		return s.submitter.SaveDraft(ctx, s.snapshot())
	})
}

// Resume restores the last saved state of this session.
func (s *ReportSession) Resume(ctx context.Context) (SessionView, error) {
	return s.do(func() error {
		stored, err := s.submitter.LoadDraft(ctx, s.id)
		if err != nil {
			return fmt.Errorf("failed to load draft: %w", err)
		}
		s.restore(stored)
		return nil
	})
}

func (s *ReportSession) restore(stored models.StoredDraft) {
	s.drafts.Restore(stored.Draft, stored.Queue)
	if err := s.wizard.GoTo(stored.Step); err != nil {
		s.wizard.Reset()
	}
}

// Submit queues the current draft if it names a center, then submits the
// whole queue. On success the session is reset and the navigator points at
// the incident. On failure the unsubmitted drafts stay queued.
func (s *ReportSession) Submit(ctx context.Context) (SessionView, SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.WithSession(s.id, s.incident.ID)

	if s.drafts.HasCenter() {
		s.drafts.CommitDraftToQueue()
	}
	result, err := s.submitter.SubmitAll(ctx, s.drafts.Queue(), s.incident.ID)
	s.drafts.DropSubmitted(len(result.Submitted))
	s.touch()
	if err != nil {
		return s.view(), result, err
	}

	s.drafts.ClearQueue()
	s.drafts.Reset()
	s.wizard.Reset()
	if derr := s.submitter.DiscardDraft(ctx, s.id); derr != nil {
		log.WithError(derr).Warn("Failed to discard saved draft")
	}
	s.navigator.Navigate(ViewIncidentDetail, map[string]string{"id": s.incident.ID})
	log.WithField("submitted", len(result.Submitted)).Info("Report submitted")
	return s.view(), result, nil
}

// SessionManager creates and tracks report sessions.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*ReportSession
	centers     CenterStore
	submitter   *SubmissionCoordinator
	engine      *Engine
	schema      models.DemographicsSchema
	idGenerator func() string
	now         func() time.Time
	cron        *cron.Cron
}

func NewSessionManager(centers CenterStore, submitter *SubmissionCoordinator, schema models.DemographicsSchema) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*ReportSession),
		centers:     centers,
		submitter:   submitter,
		engine:      NewEngine(),
		schema:      schema,
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

func (m *SessionManager) newSession(id, userID string, incident models.Incident) *ReportSession {
	return &ReportSession{
		id:        id,
		userID:    userID,
		incident:  incident,
		drafts:    NewDraftStore(incident.ID, m.schema),
		wizard:    NewWizard(),
		engine:    m.engine,
		navigator: &RecordingNavigator{},
		centers:   m.centers,
		submitter: m.submitter,
		updatedAt: time.Now(),
	}
}

// Open starts a session for an incident. A non-empty centerID opens the
// session on that center for editing.
func (m *SessionManager) Open(ctx context.Context, incidentID, centerID, userID string) (*ReportSession, error) {
	incident, err := m.centers.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load incident %s: %w", incidentID, err)
	}
	s := m.newSession(m.idGenerator(), userID, incident)
	if centerID != "" {
		center, err := m.centers.GetCenter(ctx, centerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load center %s: %w", centerID, err)
		}
		if err := s.drafts.SelectCenter(&center); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	logger.WithSession(s.id, incidentID).Info("Report session opened")
	return s, nil
}

func (m *SessionManager) Get(id string) (*ReportSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Resume returns the live session, or rebuilds it from a saved draft after
// a restart.
func (m *SessionManager) Resume(ctx context.Context, id string) (*ReportSession, error) {
	if s, err := m.Get(id); err == nil {
		if _, err := s.Resume(ctx); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return s, nil
	}

	stored, err := m.submitter.LoadDraft(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	incident, err := m.centers.GetIncident(ctx, stored.IncidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load incident %s: %w", stored.IncidentID, err)
	}
	s := m.newSession(id, stored.SavedBy, incident)
	s.restore(stored)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	logger.WithSession(id, incident.ID).Info("Report session resumed from saved draft")
	return s, nil
}

// Discard drops a session and any saved draft.
func (m *SessionManager) Discard(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return m.submitter.DiscardDraft(ctx, id)
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle drops sessions untouched for longer than maxIdle and returns how
// many were dropped. Saved drafts stay in the draft repository and can still
// be resumed.
func (m *SessionManager) EvictIdle(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	evicted := 0
	for id, s := range m.sessions {
		if s.lastActive().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	m.mu.Unlock()
	if evicted == 0 {
		return 0
	}
	logger.Info("Idle report sessions evicted", map[string]interface{}{
		"evicted":  evicted,
		"max_idle": maxIdle.String(),
	})
	return evicted
}

// StartEviction schedules EvictIdle with a cron spec such as "@every 10m".
func (m *SessionManager) StartEviction(spec string, maxIdle time.Duration) error {
	if maxIdle <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", maxIdle)
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.EvictIdle(maxIdle) }); err != nil {
		return fmt.Errorf("invalid session sweep schedule %q: %w", spec, err)
	}
	c.Start()
	m.cron = c
	logger.Info("Idle session sweep scheduled", map[string]interface{}{
		"spec":     spec,
		"max_idle": maxIdle.String(),
	})
	return nil
}

// StopEviction halts the sweep and waits for a running one to finish.
func (m *SessionManager) StopEviction() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.cron = nil
}

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evacreport/backend/internal/models"
)

// CenterDetails are the basic center fields edited on the first step.
type CenterDetails struct {
	Name      string              `json:"name"`
	Barangay  string              `json:"barangay"`
	City      string              `json:"city"`
	Province  string              `json:"province"`
	Capacity  int                 `json:"capacity"`
	Status    models.CenterStatus `json:"status"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
}

// DraftStore owns the draft under edit and the queue of drafts already
// committed for one incident. It is not safe for concurrent use; the
// report session serializes access.
type DraftStore struct {
	incidentID  string
	schema      models.DemographicsSchema
	draft       models.Draft
	queue       []models.Draft
	now         func() time.Time
	idGenerator func() string
}

func NewDraftStore(incidentID string, schema models.DemographicsSchema) *DraftStore {
	s := &DraftStore{
		incidentID:  incidentID,
		schema:      schema,
		queue:       []models.Draft{},
		now:         time.Now,
		idGenerator: uuid.NewString,
	}
	s.draft = s.newDraft()
	return s
}

func (s *DraftStore) newDraft() models.Draft {
	return models.Draft{
		ID:         s.idGenerator(),
		IncidentID: s.incidentID,
		Schema:     s.schema,
		Center:     models.NewEvacuationCenter(s.schema),
		Completed:  models.Completion{},
		CreatedAt:  s.now(),
	}
}

func (s *DraftStore) IncidentID() string {
	return s.incidentID
}

func (s *DraftStore) Schema() models.DemographicsSchema {
	return s.schema
}

// Draft returns a copy of the draft under edit.
func (s *DraftStore) Draft() models.Draft {
	return s.draft.Clone()
}

func (s *DraftStore) Completed() models.Completion {
	return s.draft.Completed.Clone()
}

func (s *DraftStore) IsNewCenter() bool {
	return s.draft.IsNewCenter
}

// HasCenter reports whether the draft has an existing or registered center
// worth submitting.
func (s *DraftStore) HasCenter() bool {
	return s.draft.Completed[models.StepCenter]
}

// SelectCenter loads a copy of an existing center into the draft. A nil
// center starts a fresh draft in new-center mode. A center recorded under
// another demographics schema is refused and the draft is left unchanged.
func (s *DraftStore) SelectCenter(center *models.EvacuationCenter) error {
	if center == nil {
		s.draft = s.newDraft()
		s.draft.IsNewCenter = true
		return nil
	}
	if center.Schema != "" && center.Schema != s.schema {
		return invalidInput(fmt.Sprintf("center %s is recorded under the %s schema, this deployment uses %s",
			center.ID, center.Schema, s.schema))
	}
	c := center.Clone()
	c.Schema = s.schema
	if c.Schema == models.SchemaCoarse && c.Coarse == nil {
		c.Coarse = &models.CoarseHeadcount{}
	}
	c.Facilities = c.Facilities.Normalize()
	if c.SectoralGroups == nil {
		c.SectoralGroups = []models.SectoralGroup{}
	}
	if c.ContactPersons == nil {
		c.ContactPersons = []models.ContactPerson{}
	}
	s.draft.Center = c
	s.draft.IsNewCenter = false
	s.draft.Completed[models.StepCenter] = true
	return nil
}

// UpdateCenterDetails edits a new center's basic fields. Existing centers
// may only change capacity and status from the wizard.
func (s *DraftStore) UpdateCenterDetails(d CenterDetails) error {
	if d.Capacity < 0 {
		return invalidInput("capacity must not be negative")
	}
	if d.Status != "" && !d.Status.Valid() {
		return invalidInput(fmt.Sprintf("unknown center status %q", d.Status))
	}
	c := &s.draft.Center
	if s.draft.IsExisting() {
		c.Capacity = d.Capacity
		if d.Status != "" {
			c.Status = d.Status
		}
		return nil
	}
	if strings.TrimSpace(d.Name) == "" {
		return invalidInput("center name is required")
	}
	c.Name = strings.TrimSpace(d.Name)
	c.Barangay = d.Barangay
	c.City = d.City
	c.Province = d.Province
	c.Capacity = d.Capacity
	c.Latitude = d.Latitude
	c.Longitude = d.Longitude
	if d.Status != "" {
		c.Status = d.Status
	}
	s.draft.IsNewCenter = true
	s.draft.Completed[models.StepCenter] = true
	return nil
}

// UpdateSection replaces one section of the draft and marks its step
// complete. Unknown sections, or values of the wrong type, are ignored and
// reported as not applied.
func (s *DraftStore) UpdateSection(section models.Section, value any) (bool, error) {
	step, ok := section.Step()
	if !ok {
		return false, nil
	}
	var err error
	switch v := value.(type) {
	case models.Demographics:
		if section != models.SectionDemographics || s.schema != models.SchemaAgeBanded {
			return false, nil
		}
		err = s.setDemographics(v)
	case models.CoarseHeadcount:
		if section != models.SectionDemographics || s.schema != models.SchemaCoarse {
			return false, nil
		}
		err = s.setHeadcount(v)
	case models.Facilities:
		if section != models.SectionFacilities {
			return false, nil
		}
		err = s.setFacilities(v)
	case []models.SectoralGroup:
		if section != models.SectionSectoralGroups {
			return false, nil
		}
		err = s.setSectoralGroups(v)
	case []models.Media:
		if section != models.SectionMedia {
			return false, nil
		}
		err = s.setMedia(v)
	case []models.ContactPerson:
		if section != models.SectionContactPersons {
			return false, nil
		}
		err = s.setContactPersons(v)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.draft.Completed[step] = true
	return true, nil
}

func (s *DraftStore) setDemographics(d models.Demographics) error {
	if err := d.Validate(); err != nil {
		return invalidInput(err.Error())
	}
	s.draft.Center.Demographics = d
	return nil
}

func (s *DraftStore) setHeadcount(h models.CoarseHeadcount) error {
	if err := h.Validate(); err != nil {
		return invalidInput(err.Error())
	}
	s.draft.Center.Coarse = &h
	return nil
}

// setFacilities drops unknown kinds; a bad status on a known kind is refused.
func (s *DraftStore) setFacilities(f models.Facilities) error {
	for k, cond := range f {
		if !k.Valid() {
			continue
		}
		if !cond.Status.Valid() {
			return invalidInput(fmt.Sprintf("unknown facility status %q", cond.Status))
		}
	}
	s.draft.Center.Facilities = f.Normalize()
	return nil
}

func (s *DraftStore) setSectoralGroups(groups []models.SectoralGroup) error {
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return invalidInput(err.Error())
		}
	}
	s.draft.Center.SectoralGroups = append([]models.SectoralGroup{}, groups...)
	return nil
}

func (s *DraftStore) setMedia(media []models.Media) error {
	for _, m := range media {
		if err := m.Validate(); err != nil {
			return invalidInput(err.Error())
		}
	}
	s.draft.Center.Media = append([]models.Media{}, media...)
	return nil
}

func (s *DraftStore) setContactPersons(contacts []models.ContactPerson) error {
	for _, c := range contacts {
		if err := c.Validate(); err != nil {
			return invalidInput(err.Error())
		}
	}
	if models.CountPrimary(contacts) > 1 {
		return invalidInput("only one contact can be primary")
	}
	s.draft.Center.ContactPersons = append([]models.ContactPerson{}, contacts...)
	return nil
}

// CommitDraftToQueue appends a snapshot of the draft to the queue and starts
// a fresh draft. The committed snapshot is returned.
func (s *DraftStore) CommitDraftToQueue() models.Draft {
	snapshot := s.draft.Clone()
	snapshot.IncidentID = s.incidentID
	s.queue = append(s.queue, snapshot)
	s.draft = s.newDraft()
	return snapshot.Clone()
}

// Queue returns copies of the committed drafts in commit order.
func (s *DraftStore) Queue() []models.Draft {
	out := make([]models.Draft, len(s.queue))
	for i, d := range s.queue {
		out[i] = d.Clone()
	}
	return out
}

func (s *DraftStore) QueueLen() int {
	return len(s.queue)
}

// DropSubmitted removes the first n queued drafts.
func (s *DraftStore) DropSubmitted(n int) {
	if n <= 0 {
		return
	}
	if n >= len(s.queue) {
		s.queue = []models.Draft{}
		return
	}
	s.queue = append([]models.Draft{}, s.queue[n:]...)
}

func (s *DraftStore) ClearQueue() {
	s.queue = []models.Draft{}
}

// Reset discards the draft under edit. The queue is kept.
func (s *DraftStore) Reset() {
	s.draft = s.newDraft()
}

// Restore replaces the draft and queue with saved copies.
func (s *DraftStore) Restore(draft models.Draft, queue []models.Draft) {
	d := draft.Clone()
	if d.Completed == nil {
		d.Completed = models.Completion{}
	}
	if d.ID == "" {
		d.ID = s.idGenerator()
	}
	d.IncidentID = s.incidentID
	d.Schema = s.schema
	s.draft = d
	s.queue = make([]models.Draft, 0, len(queue))
	for _, q := range queue {
		s.queue = append(s.queue, q.Clone())
	}
}

// replaceCenter swaps the draft's center after an engine edit and marks the
// step complete.
func (s *DraftStore) replaceCenter(c models.EvacuationCenter, step models.Step) {
	s.draft.Center = c
	s.draft.Completed[step] = true
}

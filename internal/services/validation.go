package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/evacreport/backend/internal/models"
)

// Derived holds the values recomputed after every draft change. The capacity
// warning is advisory and never blocks submission.
type Derived struct {
	TotalCurrentEvacuees int                   `json:"totalCurrentEvacuees"`
	TotalServed          int                   `json:"totalServed"`
	Capacity             int                   `json:"capacity"`
	OccupancyRate        int                   `json:"occupancyRate"`
	ExceedsCapacity      bool                  `json:"exceedsCapacity"`
	FacilityCounts       models.FacilityCounts `json:"facilityCounts"`
	SectoralTotal        int                   `json:"sectoralTotal"`
	Completed            models.Completion     `json:"completed"`
	Warnings             []string              `json:"warnings"`
}

// Engine derives summary values and applies list edits that carry
// invariants, such as the single primary contact.
type Engine struct {
	idGenerator func() string
}

func NewEngine() *Engine {
	return &Engine{idGenerator: uuid.NewString}
}

// Recompute derives the summary values for a draft without modifying it.
func (e *Engine) Recompute(draft models.Draft) Derived {
	c := draft.Center
	d := Derived{
		TotalCurrentEvacuees: c.TotalCurrentEvacuees(),
		TotalServed:          c.TotalServed(),
		Capacity:             c.Capacity,
		OccupancyRate:        c.OccupancyRate(),
		ExceedsCapacity:      c.ExceedsCapacity(),
		FacilityCounts:       c.Facilities.StatusCounts(),
		Completed:            draft.Completed.Clone(),
		Warnings:             []string{},
	}
	for _, g := range c.SectoralGroups {
		d.SectoralTotal += g.Count
	}
	if d.ExceedsCapacity {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"The total number of current evacuees (%d) exceeds the center's capacity (%d).",
			d.TotalCurrentEvacuees, d.Capacity))
	}
	return d
}

// AddContact appends a contact. A primary contact clears the flag on all
// existing contacts first.
func (e *Engine) AddContact(contacts []models.ContactPerson, in models.ContactPerson) ([]models.ContactPerson, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := in.Validate(); err != nil {
		return contacts, invalidInput(err.Error())
	}
	in.ID = e.idGenerator()
	out := make([]models.ContactPerson, 0, len(contacts)+1)
	for _, c := range contacts {
		if in.IsPrimary {
			c.IsPrimary = false
		}
		out = append(out, c)
	}
	return append(out, in), nil
}

// TogglePrimary makes the contact with id the only primary contact.
func TogglePrimary(contacts []models.ContactPerson, id string) ([]models.ContactPerson, error) {
	if indexOfContact(contacts, id) < 0 {
		return contacts, fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	out := make([]models.ContactPerson, len(contacts))
	for i, c := range contacts {
		c.IsPrimary = c.ID == id
		out[i] = c
	}
	return out, nil
}

func RemoveContact(contacts []models.ContactPerson, id string) ([]models.ContactPerson, error) {
	i := indexOfContact(contacts, id)
	if i < 0 {
		return contacts, fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	out := append([]models.ContactPerson{}, contacts[:i]...)
	return append(out, contacts[i+1:]...), nil
}

func indexOfContact(contacts []models.ContactPerson, id string) int {
	for i, c := range contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) AddSectoralGroup(groups []models.SectoralGroup, in models.SectoralGroup) ([]models.SectoralGroup, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return groups, invalidInput(err.Error())
	}
	in.ID = e.idGenerator()
	return append(append([]models.SectoralGroup{}, groups...), in), nil
}

// UpdateSectoralGroup replaces the group with the same id.
func UpdateSectoralGroup(groups []models.SectoralGroup, in models.SectoralGroup) ([]models.SectoralGroup, error) {
	if err := in.Validate(); err != nil {
		return groups, invalidInput(err.Error())
	}
	out := append([]models.SectoralGroup{}, groups...)
	for i, g := range out {
		if g.ID == in.ID {
			out[i] = in
			return out, nil
		}
	}
	return groups, fmt.Errorf("sectoral group %s: %w", in.ID, ErrNotFound)
}

func RemoveSectoralGroup(groups []models.SectoralGroup, id string) ([]models.SectoralGroup, error) {
	for i, g := range groups {
		if g.ID == id {
			out := append([]models.SectoralGroup{}, groups[:i]...)
			return append(out, groups[i+1:]...), nil
		}
	}
	return groups, fmt.Errorf("sectoral group %s: %w", id, ErrNotFound)
}

// AddMedia appends a media item. The type defaults to image.
func (e *Engine) AddMedia(media []models.Media, in models.Media) ([]models.Media, error) {
	if in.Type == "" {
		in.Type = models.MediaImage
	}
	if in.Category == "" {
		in.Category = models.CategoryOverall
	}
	if err := in.Validate(); err != nil {
		return media, invalidInput(err.Error())
	}
	in.ID = e.idGenerator()
	return append(append([]models.Media{}, media...), in), nil
}

func RemoveMedia(media []models.Media, id string) ([]models.Media, error) {
	for i, m := range media {
		if m.ID == id {
			out := append([]models.Media{}, media[:i]...)
			return append(out, media[i+1:]...), nil
		}
	}
	return media, fmt.Errorf("media %s: %w", id, ErrNotFound)
}

func SetFacility(f models.Facilities, kind models.FacilityKind, status models.FacilityStatus, notes string) (models.Facilities, error) {
	out, err := f.With(kind, status, notes)
	if err != nil {
		return f, invalidInput(err.Error())
	}
	return out, nil
}

// FilterCenters keeps centers whose name, barangay, or city contains the
// term, ignoring case. An empty term keeps everything.
func FilterCenters(centers []models.EvacuationCenter, term string) []models.EvacuationCenter {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.EvacuationCenter, 0, len(centers))
	for _, c := range centers {
		if term == "" ||
			strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Barangay), term) ||
			strings.Contains(strings.ToLower(c.City), term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterCentersByStatus keeps centers with the given status; "all" or an
// empty status keeps everything.
func FilterCentersByStatus(centers []models.EvacuationCenter, status string) []models.EvacuationCenter {
	if status == "" || strings.EqualFold(status, "all") {
		return centers
	}
	out := make([]models.EvacuationCenter, 0, len(centers))
	for _, c := range centers {
		if strings.EqualFold(string(c.Status), status) {
			out = append(out, c)
		}
	}
	return out
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evacreport/backend/internal/models"
)

// CenterSummary is a center row on incident and directory pages.
type CenterSummary struct {
	ID              string              `json:"id"`
	IncidentID      *string             `json:"incidentId"`
	Name            string              `json:"name"`
	Barangay        string              `json:"barangay"`
	City            string              `json:"city"`
	Province        string              `json:"province"`
	Status          models.CenterStatus `json:"status"`
	Capacity        int                 `json:"capacity"`
	CurrentEvacuees int                 `json:"currentEvacuees"`
	OccupancyRate   int                 `json:"occupancyRate"`
	ExceedsCapacity bool                `json:"exceedsCapacity"`
	LastUpdated     time.Time           `json:"lastUpdated"`
}

func summarize(c models.EvacuationCenter) CenterSummary {
	return CenterSummary{
		ID:              c.ID,
		IncidentID:      c.IncidentID,
		Name:            c.Name,
		Barangay:        c.Barangay,
		City:            c.City,
		Province:        c.Province,
		Status:          c.Status,
		Capacity:        c.Capacity,
		CurrentEvacuees: c.TotalCurrentEvacuees(),
		OccupancyRate:   c.OccupancyRate(),
		ExceedsCapacity: c.ExceedsCapacity(),
		LastUpdated:     c.LastUpdated,
	}
}

type IncidentList struct {
	Incidents []models.Incident `json:"incidents"`
	Showing   int               `json:"showing"`
	Total     int               `json:"total"`
}

type IncidentDetails struct {
	Incident      models.Incident `json:"incident"`
	Centers       []CenterSummary `json:"centers"`
	TotalCenters  int             `json:"totalCenters"`
	ActiveCenters int             `json:"activeCenters"`
	TotalEvacuees int             `json:"totalEvacuees"`
	TotalCapacity int             `json:"totalCapacity"`
	OverCapacity  int             `json:"overCapacity"`
}

type CenterReport struct {
	Center          models.EvacuationCenter      `json:"center"`
	CurrentEvacuees int                          `json:"currentEvacuees"`
	TotalServed     int                          `json:"totalServed"`
	OccupancyRate   int                          `json:"occupancyRate"`
	ExceedsCapacity bool                         `json:"exceedsCapacity"`
	AgeBands        []models.AgeBandCount        `json:"ageBands,omitempty"`
	FacilityCounts  models.FacilityCounts        `json:"facilityCounts"`
	PrimaryContact  *models.ContactPerson        `json:"primaryContact,omitempty"`
	MediaByCategory map[models.MediaCategory]int `json:"mediaByCategory"`
}

type Dashboard struct {
	TotalCenters    int `json:"totalCenters"`
	ActiveCenters   int `json:"activeCenters"`
	TotalEvacuees   int `json:"totalEvacuees"`
	TotalIncidents  int `json:"totalIncidents"`
	ActiveIncidents int `json:"activeIncidents"`
}

// ReportService builds the read-only incident and center pages.
type ReportService struct {
	store CenterStore
}

func NewReportService(store CenterStore) *ReportService {
	return &ReportService{store: store}
}

// ListIncidents filters by "all", "active" (Active or Ongoing), or "closed".
func (r *ReportService) ListIncidents(ctx context.Context, filter string) (IncidentList, error) {
	incidents, err := r.store.ListIncidents(ctx)
	if err != nil {
		return IncidentList{}, fmt.Errorf("failed to list incidents: %w", err)
	}
	out := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		switch strings.ToLower(filter) {
		case "", "all":
		case "active":
			if !inc.IsOpen() {
				continue
			}
		case "closed":
			if inc.Status != models.IncidentClosed {
				continue
			}
		default:
			return IncidentList{}, invalidInput(fmt.Sprintf("unknown incident filter %q", filter))
		}
		out = append(out, inc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return IncidentList{Incidents: out, Showing: len(out), Total: len(incidents)}, nil
}

func (r *ReportService) IncidentDetails(ctx context.Context, id string) (IncidentDetails, error) {
	incident, err := r.store.GetIncident(ctx, id)
	if err != nil {
		return IncidentDetails{}, fmt.Errorf("failed to load incident %s: %w", id, err)
	}
	centers, err := r.store.ListCenters(ctx)
	if err != nil {
		return IncidentDetails{}, fmt.Errorf("failed to list centers: %w", err)
	}
	d := IncidentDetails{Incident: incident, Centers: []CenterSummary{}}
	for _, c := range centers {
		if !c.AssignedTo(id) {
			continue
		}
		d.Centers = append(d.Centers, summarize(c))
		d.TotalCenters++
		if c.Status == models.CenterActive {
			d.ActiveCenters++
		}
		d.TotalEvacuees += c.TotalServed()
		d.TotalCapacity += c.Capacity
		if c.ExceedsCapacity() {
			d.OverCapacity++
		}
	}
	return d, nil
}

func (r *ReportService) CenterReport(ctx context.Context, id string) (CenterReport, error) {
	c, err := r.store.GetCenter(ctx, id)
	if err != nil {
		return CenterReport{}, fmt.Errorf("failed to load center %s: %w", id, err)
	}
	rep := CenterReport{
		Center:          c,
		CurrentEvacuees: c.TotalCurrentEvacuees(),
		TotalServed:     c.TotalServed(),
		OccupancyRate:   c.OccupancyRate(),
		ExceedsCapacity: c.ExceedsCapacity(),
		FacilityCounts:  c.Facilities.StatusCounts(),
		MediaByCategory: make(map[models.MediaCategory]int),
	}
	if c.Schema != models.SchemaCoarse {
		rep.AgeBands = c.Demographics.Bands()
	}
	if p, ok := models.PrimaryContact(c.ContactPersons); ok {
		rep.PrimaryContact = &p
	}
	for _, m := range c.Media {
		rep.MediaByCategory[m.Category]++
	}
	return rep, nil
}

// Directory lists centers matching the search term and status filter.
func (r *ReportService) Directory(ctx context.Context, term, status string) ([]CenterSummary, error) {
	centers, err := r.store.ListCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	centers = FilterCentersByStatus(FilterCenters(centers, term), status)
	out := make([]CenterSummary, 0, len(centers))
	for _, c := range centers {
		out = append(out, summarize(c))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ReportService) Dashboard(ctx context.Context) (Dashboard, error) {
	incidents, err := r.store.ListIncidents(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list incidents: %w", err)
	}
	centers, err := r.store.ListCenters(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list centers: %w", err)
	}
	d := Dashboard{TotalCenters: len(centers), TotalIncidents: len(incidents)}
	for _, c := range centers {
		if c.Status == models.CenterActive {
			d.ActiveCenters++
		}
		d.TotalEvacuees += c.TotalServed()
	}
	for _, inc := range incidents {
		if inc.IsOpen() {
			d.ActiveIncidents++
		}
	}
	return d, nil
}

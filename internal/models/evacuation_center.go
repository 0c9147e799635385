package models

import (
	"errors"
	"math"
	"strings"
	"time"
)

type CenterStatus string

const (
	CenterActive    CenterStatus = "Active"
	CenterInactive  CenterStatus = "Inactive"
	CenterDamaged   CenterStatus = "Damaged"
	CenterConverted CenterStatus = "Converted"
)

func (s CenterStatus) Valid() bool {
	switch s {
	case CenterActive, CenterInactive, CenterDamaged, CenterConverted:
		return true
	}
	return false
}

type EvacuationCenter struct {
	ID          string       `json:"id" gorm:"primaryKey;size:64"`
	IncidentID  *string      `json:"incidentId" gorm:"size:64;index"`
	Name        string       `json:"name" gorm:"not null"`
	Barangay    string       `json:"barangay"`
	City        string       `json:"city"`
	Province    string       `json:"province"`
	Capacity    int          `json:"capacity" gorm:"not null;default:0"`
	Status      CenterStatus `json:"status" gorm:"not null;default:'Active'"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	LastUpdated time.Time    `json:"lastUpdated"`

	Schema         DemographicsSchema `json:"demographicsSchema" gorm:"not null;default:'age_banded'"`
	Demographics   Demographics       `json:"demographics" gorm:"embedded;embeddedPrefix:demo_"`
	Coarse         *CoarseHeadcount   `json:"headcount,omitempty" gorm:"serializer:json"`
	Facilities     Facilities         `json:"facilities" gorm:"serializer:json"`
	SectoralGroups []SectoralGroup    `json:"sectoralGroups" gorm:"serializer:json"`
	ContactPersons []ContactPerson    `json:"contactPersons" gorm:"serializer:json"`
	Media          []Media            `json:"media" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (EvacuationCenter) TableName() string {
	return "evacuation_centers"
}

// NewEvacuationCenter returns an empty center with default status and
// facilities for the given schema.
func NewEvacuationCenter(schema DemographicsSchema) EvacuationCenter {
	c := EvacuationCenter{
		Status:         CenterActive,
		Schema:         schema,
		Facilities:     DefaultFacilities(),
		SectoralGroups: []SectoralGroup{},
		ContactPersons: []ContactPerson{},
		Media:          []Media{},
	}
	if schema == SchemaCoarse {
		c.Coarse = &CoarseHeadcount{}
	}
	return c
}

// Headcount returns the variant selected by the center's schema.
func (c EvacuationCenter) Headcount() Headcount {
	if c.Schema == SchemaCoarse {
		if c.Coarse == nil {
			return CoarseHeadcount{}
		}
		return *c.Coarse
	}
	return c.Demographics
}

func (c EvacuationCenter) TotalCurrentEvacuees() int {
	return TotalCurrentEvacuees(c.Headcount())
}

// TotalServed counts every evacuee the center reports, including those
// staying outside under the legacy headcount.
func (c EvacuationCenter) TotalServed() int {
	if c.Schema == SchemaCoarse && c.Coarse != nil {
		return c.Coarse.TotalServed()
	}
	return c.TotalCurrentEvacuees()
}

// OccupancyRate is current evacuees as a rounded percentage of capacity,
// 0 when no capacity is set.
func (c EvacuationCenter) OccupancyRate() int {
	if c.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(c.TotalCurrentEvacuees()) / float64(c.Capacity) * 100))
}

// ExceedsCapacity is true only when a capacity is set and the current
// evacuee count is above it.
func (c EvacuationCenter) ExceedsCapacity() bool {
	return c.Capacity > 0 && c.TotalCurrentEvacuees() > c.Capacity
}

// AssignedTo reports whether the center belongs to the incident.
func (c EvacuationCenter) AssignedTo(incidentID string) bool {
	return c.IncidentID != nil && *c.IncidentID == incidentID
}

func (c EvacuationCenter) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("center name is required")
	}
	if c.Capacity < 0 {
		return errors.New("center capacity must not be negative")
	}
	if c.Status != "" && !c.Status.Valid() {
		return errors.New("unknown center status " + string(c.Status))
	}
	return c.Headcount().Validate()
}

// Clone returns a deep copy so a draft can own its collections.
func (c EvacuationCenter) Clone() EvacuationCenter {
	out := c
	if c.IncidentID != nil {
		id := *c.IncidentID
		out.IncidentID = &id
	}
	if c.Coarse != nil {
		h := *c.Coarse
		out.Coarse = &h
	}
	if c.Facilities != nil {
		out.Facilities = make(Facilities, len(c.Facilities))
		for k, v := range c.Facilities {
			out.Facilities[k] = v
		}
	}
	out.SectoralGroups = append([]SectoralGroup{}, c.SectoralGroups...)
	out.ContactPersons = append([]ContactPerson{}, c.ContactPersons...)
	out.Media = make([]Media, len(c.Media))
	for i, m := range c.Media {
		if m.Location != nil {
			loc := *m.Location
			m.Location = &loc
		}
		out.Media[i] = m
	}
	return out
}

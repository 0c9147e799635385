package models

import (
	"time"
)

type IncidentStatus string
type IncidentSeverity string

const (
	IncidentActive   IncidentStatus = "Active"
	IncidentClosed   IncidentStatus = "Closed"
	IncidentOngoing  IncidentStatus = "Ongoing"
	IncidentCritical IncidentStatus = "Critical"
)

const (
	SeverityLow    IncidentSeverity = "Low"
	SeverityMedium IncidentSeverity = "Medium"
	SeverityHigh   IncidentSeverity = "High"
)

// Incident is created outside the reporting workflow; the wizard only reads it
// to label the report. EvacuationCenters and TotalEvacuees are denormalized
// counters maintained by the counter service.
type Incident struct {
	ID                string           `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	Name              string           `json:"name" firestore:"name" gorm:"not null"`
	Type              string           `json:"type" firestore:"type"`
	Severity          IncidentSeverity `json:"severity" firestore:"severity" gorm:"not null;default:'Low'"`
	Date              time.Time        `json:"date" firestore:"date"`
	Location          string           `json:"location" firestore:"location"`
	EvacuationCenters int              `json:"evacuationCenters" firestore:"evacuationCenters"`
	TotalEvacuees     int              `json:"totalEvacuees" firestore:"totalEvacuees"`
	Status            IncidentStatus   `json:"status" firestore:"status" gorm:"not null;default:'Active'"`
	CreatedAt         time.Time        `json:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt" firestore:"updatedAt"`
}

func (Incident) TableName() string {
	return "incidents"
}

// IsOpen reports whether the incident still counts as active on dashboards.
func (i Incident) IsOpen() bool {
	return i.Status == IncidentActive || i.Status == IncidentOngoing
}

// ParseIncidentSeverity maps a free-form severity onto the known values.
func ParseIncidentSeverity(s string) (IncidentSeverity, bool) {
	switch s {
	case "Low", "LOW", "low":
		return SeverityLow, true
	case "Medium", "MEDIUM", "medium":
		return SeverityMedium, true
	case "High", "HIGH", "high":
		return SeverityHigh, true
	default:
		return "", false
	}
}

// ParseIncidentStatus maps a free-form status onto the known values.
func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	switch s {
	case "Active", "ACTIVE", "active":
		return IncidentActive, true
	case "Closed", "CLOSED", "closed":
		return IncidentClosed, true
	case "Ongoing", "ONGOING", "ongoing":
		return IncidentOngoing, true
	case "Critical", "CRITICAL", "critical":
		return IncidentCritical, true
	default:
		return "", false
	}
}

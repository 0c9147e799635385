package models

import (
	"fmt"
)

type FacilityKind string
type FacilityStatus string

const (
	FacilityWater       FacilityKind = "water"
	FacilityElectricity FacilityKind = "electricity"
	FacilityToilets     FacilityKind = "toilets"
	FacilityKitchen     FacilityKind = "kitchen"
	FacilityMedicalArea FacilityKind = "medicalArea"
	FacilitySleeping    FacilityKind = "sleeping"
	FacilityStorage     FacilityKind = "storage"
	FacilityWaste       FacilityKind = "waste"
)

const (
	FacilityFunctional  FacilityStatus = "Functional"
	FacilityNeedsRepair FacilityStatus = "Needs Repair"
	FacilityMissing     FacilityStatus = "Missing"
)

// FacilityKinds is the closed set of tracked facilities in display order.
var FacilityKinds = []FacilityKind{
	FacilityWater,
	FacilityElectricity,
	FacilityToilets,
	FacilityKitchen,
	FacilityMedicalArea,
	FacilitySleeping,
	FacilityStorage,
	FacilityWaste,
}

var facilityLabels = map[FacilityKind]string{
	FacilityWater:       "Water Supply",
	FacilityElectricity: "Electricity",
	FacilityToilets:     "Toilets/Sanitation",
	FacilityKitchen:     "Kitchen Area",
	FacilityMedicalArea: "Medical Area",
	FacilitySleeping:    "Sleeping Area",
	FacilityStorage:     "Storage Area",
	FacilityWaste:       "Waste Management",
}

func (k FacilityKind) Valid() bool {
	_, ok := facilityLabels[k]
	return ok
}

func (k FacilityKind) Label() string {
	return facilityLabels[k]
}

func (s FacilityStatus) Valid() bool {
	switch s {
	case FacilityFunctional, FacilityNeedsRepair, FacilityMissing:
		return true
	}
	return false
}

type FacilityCondition struct {
	Status FacilityStatus `json:"status"`
	Notes  string         `json:"notes,omitempty"`
}

// Facilities maps every facility kind to exactly one condition.
type Facilities map[FacilityKind]FacilityCondition

// FacilityCounts tallies facilities per status for the summary view.
type FacilityCounts struct {
	Functional  int `json:"functional"`
	NeedsRepair int `json:"needsRepair"`
	Missing     int `json:"missing"`
}

// DefaultFacilities marks every kind as functional.
func DefaultFacilities() Facilities {
	f := make(Facilities, len(FacilityKinds))
	for _, k := range FacilityKinds {
		f[k] = FacilityCondition{Status: FacilityFunctional}
	}
	return f
}

// Normalize returns a copy holding exactly the defined kinds. Missing kinds
// and invalid statuses fall back to functional; unknown keys are dropped.
func (f Facilities) Normalize() Facilities {
	out := make(Facilities, len(FacilityKinds))
	for _, k := range FacilityKinds {
		cond, ok := f[k]
		if !ok || !cond.Status.Valid() {
			cond.Status = FacilityFunctional
		}
		out[k] = cond
	}
	return out
}

// With returns a copy with one facility replaced.
func (f Facilities) With(kind FacilityKind, status FacilityStatus, notes string) (Facilities, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown facility %q", kind)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown facility status %q", status)
	}
	out := f.Normalize()
	out[kind] = FacilityCondition{Status: status, Notes: notes}
	return out, nil
}

func (f Facilities) StatusCounts() FacilityCounts {
	var c FacilityCounts
	for _, k := range FacilityKinds {
		cond, ok := f[k]
		if !ok {
			continue
		}
		switch cond.Status {
		case FacilityFunctional:
			c.Functional++
		case FacilityNeedsRepair:
			c.NeedsRepair++
		case FacilityMissing:
			c.Missing++
		}
	}
	return c
}

func (f Facilities) Validate() error {
	for _, k := range FacilityKinds {
		cond, ok := f[k]
		if !ok {
			return fmt.Errorf("facilities: %s has no status", k)
		}
		if !cond.Status.Valid() {
			return fmt.Errorf("facilities: %s has unknown status %q", k, cond.Status)
		}
	}
	return nil
}

package models

import (
	"fmt"
)

// DemographicsSchema names the headcount variant a report is recorded under.
type DemographicsSchema string

const (
	// SchemaAgeBanded is the canonical schema: cumulative and current counts
	// per age band and sex.
	SchemaAgeBanded DemographicsSchema = "age_banded"
	// SchemaCoarse is the legacy inside/outside headcount.
	SchemaCoarse DemographicsSchema = "coarse"
)

// ParseDemographicsSchema defaults to the age-banded schema for empty input.
func ParseDemographicsSchema(s string) (DemographicsSchema, error) {
	switch s {
	case "", string(SchemaAgeBanded):
		return SchemaAgeBanded, nil
	case string(SchemaCoarse):
		return SchemaCoarse, nil
	default:
		return "", fmt.Errorf("unknown demographics schema %q", s)
	}
}

// Headcount is implemented by both demographics variants.
type Headcount interface {
	TotalCurrent() int
	Validate() error
}

// Demographics holds the age-banded headcount. Every field must be >= 0.
type Demographics struct {
	InfantMaleCumulative    int `json:"infant_male_cumulative"`
	InfantMaleNow           int `json:"infant_male_now"`
	InfantFemaleCumulative  int `json:"infant_female_cumulative"`
	InfantFemaleNow         int `json:"infant_female_now"`
	ToddlerMaleCumulative   int `json:"toddler_male_cumulative"`
	ToddlerMaleNow          int `json:"toddler_male_now"`
	ToddlerFemaleCumulative int `json:"toddler_female_cumulative"`
	ToddlerFemaleNow        int `json:"toddler_female_now"`

	PreschoolMaleCumulative   int `json:"preschool_male_cumulative"`
	PreschoolMaleNow          int `json:"preschool_male_now"`
	PreschoolFemaleCumulative int `json:"preschool_female_cumulative"`
	PreschoolFemaleNow        int `json:"preschool_female_now"`
	SchoolAgeMaleCumulative   int `json:"school_age_male_cumulative"`
	SchoolAgeMaleNow          int `json:"school_age_male_now"`
	SchoolAgeFemaleCumulative int `json:"school_age_female_cumulative"`
	SchoolAgeFemaleNow        int `json:"school_age_female_now"`

	TeenageMaleCumulative   int `json:"teenage_male_cumulative"`
	TeenageMaleNow          int `json:"teenage_male_now"`
	TeenageFemaleCumulative int `json:"teenage_female_cumulative"`
	TeenageFemaleNow        int `json:"teenage_female_now"`
	AdultMaleCumulative     int `json:"adult_male_cumulative"`
	AdultMaleNow            int `json:"adult_male_now"`
	AdultFemaleCumulative   int `json:"adult_female_cumulative"`
	AdultFemaleNow          int `json:"adult_female_now"`

	ElderlyMaleCumulative   int `json:"elderly_male_cumulative"`
	ElderlyMaleNow          int `json:"elderly_male_now"`
	ElderlyFemaleCumulative int `json:"elderly_female_cumulative"`
	ElderlyFemaleNow        int `json:"elderly_female_now"`
}

// AgeBandCount is one row of the age-band table shown on center reports.
type AgeBandCount struct {
	Band             string `json:"band"`
	Label            string `json:"label"`
	MaleNow          int    `json:"maleNow"`
	MaleCumulative   int    `json:"maleCumulative"`
	FemaleNow        int    `json:"femaleNow"`
	FemaleCumulative int    `json:"femaleCumulative"`
}

// Bands lists the seven age bands in display order.
func (d Demographics) Bands() []AgeBandCount {
	return []AgeBandCount{
		{"infant", "Infants (0-1 yrs)", d.InfantMaleNow, d.InfantMaleCumulative, d.InfantFemaleNow, d.InfantFemaleCumulative},
		{"toddler", "Toddlers (1-3 yrs)", d.ToddlerMaleNow, d.ToddlerMaleCumulative, d.ToddlerFemaleNow, d.ToddlerFemaleCumulative},
		{"preschool", "Preschool (4-5 yrs)", d.PreschoolMaleNow, d.PreschoolMaleCumulative, d.PreschoolFemaleNow, d.PreschoolFemaleCumulative},
		{"school_age", "School Age (6-12 yrs)", d.SchoolAgeMaleNow, d.SchoolAgeMaleCumulative, d.SchoolAgeFemaleNow, d.SchoolAgeFemaleCumulative},
		{"teenage", "Teenage (13-17 yrs)", d.TeenageMaleNow, d.TeenageMaleCumulative, d.TeenageFemaleNow, d.TeenageFemaleCumulative},
		{"adult", "Adults (18-59 yrs)", d.AdultMaleNow, d.AdultMaleCumulative, d.AdultFemaleNow, d.AdultFemaleCumulative},
		{"elderly", "Elderly (60+ yrs)", d.ElderlyMaleNow, d.ElderlyMaleCumulative, d.ElderlyFemaleNow, d.ElderlyFemaleCumulative},
	}
}

// TotalCurrent sums the fourteen current ("now") fields. Cumulative fields
// do not contribute.
func (d Demographics) TotalCurrent() int {
	total := 0
	for _, b := range d.Bands() {
		total += b.MaleNow + b.FemaleNow
	}
	return total
}

// TotalCumulative sums the fourteen cumulative fields.
func (d Demographics) TotalCumulative() int {
	total := 0
	for _, b := range d.Bands() {
		total += b.MaleCumulative + b.FemaleCumulative
	}
	return total
}

func (d Demographics) Validate() error {
	for _, b := range d.Bands() {
		if b.MaleNow < 0 || b.MaleCumulative < 0 || b.FemaleNow < 0 || b.FemaleCumulative < 0 {
			return fmt.Errorf("demographics: %s counts must not be negative", b.Band)
		}
	}
	return nil
}

// CoarseHeadcount is the legacy inside/outside headcount.
type CoarseHeadcount struct {
	InsideMale      int `json:"insideMale"`
	InsideFemale    int `json:"insideFemale"`
	InsideChildren  int `json:"insideChildren"`
	OutsideMale     int `json:"outsideMale"`
	OutsideFemale   int `json:"outsideFemale"`
	OutsideChildren int `json:"outsideChildren"`
}

func (h CoarseHeadcount) TotalInside() int {
	return h.InsideMale + h.InsideFemale + h.InsideChildren
}

func (h CoarseHeadcount) TotalOutside() int {
	return h.OutsideMale + h.OutsideFemale + h.OutsideChildren
}

// TotalCurrent counts evacuees staying inside the center, which is what
// capacity is measured against.
func (h CoarseHeadcount) TotalCurrent() int {
	return h.TotalInside()
}

// TotalServed counts everyone served by the center, inside or outside.
func (h CoarseHeadcount) TotalServed() int {
	return h.TotalInside() + h.TotalOutside()
}

func (h CoarseHeadcount) Validate() error {
	fields := []int{h.InsideMale, h.InsideFemale, h.InsideChildren, h.OutsideMale, h.OutsideFemale, h.OutsideChildren}
	for _, v := range fields {
		if v < 0 {
			return fmt.Errorf("headcount: counts must not be negative")
		}
	}
	return nil
}

// TotalCurrentEvacuees returns the current evacuee count of any headcount
// variant; nil counts as zero.
func TotalCurrentEvacuees(h Headcount) int {
	if h == nil {
		return 0
	}
	return h.TotalCurrent()
}

package models

// Step identifies one tab of the report wizard.
type Step string

const (
	StepCenter       Step = "center"
	StepDemographics Step = "demographics"
	StepSectoral     Step = "sectoral"
	StepFacilities   Step = "facilities"
	StepMedia        Step = "media"
	StepContact      Step = "contact"
	StepSummary      Step = "summary"
)

// Steps is the fixed wizard order.
var Steps = []Step{
	StepCenter,
	StepDemographics,
	StepSectoral,
	StepFacilities,
	StepMedia,
	StepContact,
	StepSummary,
}

// Index returns the position of the step in the wizard order, or -1.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Section names a top-level part of the draft that can be replaced whole.
type Section string

const (
	SectionDemographics   Section = "demographics"
	SectionFacilities     Section = "facilities"
	SectionSectoralGroups Section = "sectoralGroups"
	SectionMedia          Section = "media"
	SectionContactPersons Section = "contactPersons"
)

var sectionSteps = map[Section]Step{
	SectionDemographics:   StepDemographics,
	SectionFacilities:     StepFacilities,
	SectionSectoralGroups: StepSectoral,
	SectionMedia:          StepMedia,
	SectionContactPersons: StepContact,
}

// Step returns the wizard step completed by updating the section.
func (s Section) Step() (Step, bool) {
	step, ok := sectionSteps[s]
	return step, ok
}

// Completion maps a step to whether it has been filled in.
type Completion map[Step]bool

func (c Completion) Clone() Completion {
	out := make(Completion, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

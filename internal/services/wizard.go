package services

import (
	"fmt"

	"github.com/evacreport/backend/internal/models"
)

// Wizard walks the fixed step order. Navigation never validates and never
// touches completion flags.
type Wizard struct {
	current models.Step
}

func NewWizard() *Wizard {
	return &Wizard{current: models.StepCenter}
}

func (w *Wizard) Current() models.Step {
	return w.current
}

// Next moves forward one step and stays put on the summary.
func (w *Wizard) Next() models.Step {
	i := w.current.Index()
	if i < len(models.Steps)-1 {
		w.current = models.Steps[i+1]
	}
	return w.current
}

// Previous moves back one step and stays put on the first step.
func (w *Wizard) Previous() models.Step {
	i := w.current.Index()
	if i > 0 {
		w.current = models.Steps[i-1]
	}
	return w.current
}

// GoTo jumps to any known step regardless of completion.
func (w *Wizard) GoTo(step models.Step) error {
	if !step.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	w.current = step
	return nil
}

func (w *Wizard) CanGoBack() bool {
	return w.current != models.StepCenter
}

func (w *Wizard) AtSummary() bool {
	return w.current == models.StepSummary
}

func (w *Wizard) Reset() {
	w.current = models.StepCenter
}

package models

import (
	"errors"
	"strings"
)

// SectoralGroup is a vulnerable sub-population tracked apart from the
// demographic counts, e.g. pregnant women or persons with disability.
type SectoralGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Notes string `json:"notes,omitempty"`
}

func (g SectoralGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("sectoral group name is required")
	}
	if g.Count < 0 {
		return errors.New("sectoral group count must not be negative")
	}
	return nil
}

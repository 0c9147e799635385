package models

import (
	"errors"
	"strings"
)

type ContactPerson struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

func (c ContactPerson) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
		return errors.New("contact name and phone are required")
	}
	return nil
}

// PrimaryContact returns the primary contact of the list, if any.
func PrimaryContact(contacts []ContactPerson) (ContactPerson, bool) {
	for _, c := range contacts {
		if c.IsPrimary {
			return c, true
		}
	}
	return ContactPerson{}, false
}

// CountPrimary is used to check the single-primary invariant.
func CountPrimary(contacts []ContactPerson) int {
	n := 0
	for _, c := range contacts {
		if c.IsPrimary {
			n++
		}
	}
	return n
}

package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an incident, center, or saved draft does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a locally refused operation; the draft is left unchanged.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownStep is returned when jumping to a step outside the wizard.
	ErrUnknownStep = errors.New("unknown wizard step")
	// ErrConflict is returned when a store already holds a record with the same key.
	ErrConflict = errors.New("already exists")
	// ErrSessionNotFound is returned for unknown or discarded report sessions.
	ErrSessionNotFound = errors.New("report session not found")
)

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

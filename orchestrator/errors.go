package orchestrator

import "errors"

// ErrSourceNotFound is returned when an operation references a source ID
// that does not exist in the Metadata Store.
var ErrSourceNotFound = errors.New("source not found")

// ErrCharacterNotFound is returned when an operation references a
// character ID that does not exist.
var ErrCharacterNotFound = errors.New("character not found")

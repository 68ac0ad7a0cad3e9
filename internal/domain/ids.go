// Package domain holds the entity model and value objects shared by every
// service in the platform. Types here carry no persistence or transport
// concerns; they are the vocabulary the rest of the codebase speaks.
package domain

import "github.com/google/uuid"

// ID is an opaque 128-bit identifier, as required by the data model: every
// aggregate is referenced by id, never by embedding the referenced object.
type ID = uuid.UUID

// NewID mints a fresh random identifier.
func NewID() ID {
	return uuid.New()
}

// ParseID parses a canonical UUID string.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// ZeroID reports whether an ID is the unset zero value.
func ZeroID(id ID) bool {
	return id == uuid.Nil
}

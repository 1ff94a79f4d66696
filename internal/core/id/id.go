// Package id issues document identifiers. IDs are UUIDv7, so they sort by
// creation time and list pages stay stable within one day.
package id

import (
	"github.com/google/uuid"
)

type ID = uuid.UUID

// New returns a UUIDv7, or a random UUID if the clock source fails.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse accepts the canonical textual form.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

func IsNil(v ID) bool {
	return v == uuid.Nil
}

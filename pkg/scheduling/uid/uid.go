// Package uid provides the opaque task identifiers used by the scheduler.
package uid

import "github.com/google/uuid"

// UID identifies a task. UIDs are comparable only for equality.
type UID struct {
	id uuid.UUID
}

// Bad is the reserved identifier returned by failed operations.
var Bad = UID{id: uuid.Nil}

// New returns a fresh random identifier, or Bad if the random source fails.
func New() UID {
	id, err := uuid.NewRandom()
	if err != nil {
		return Bad
	}
	return UID{id: id}
}

// Parse decodes the textual form produced by String.
func Parse(s string) (UID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Bad, err
	}
	return UID{id: id}, nil
}

// IsSame reports whether a and b are the same identifier.
func IsSame(a, b UID) bool {
	return a.id == b.id
}

// IsBad reports whether u is the reserved failure identifier.
func (u UID) IsBad() bool {
	return u.id == uuid.Nil
}

func (u UID) String() string {
	return u.id.String()
}

package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier as string.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new correlation identifier.
func New() string { return NewFunc() }

// Short returns the first eight characters of a new identifier, used for
// human readable snapshot names.
func Short() string {
	id := New()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package table

import "errors"

// Recoverable table errors. Fatal conditions are reported as *Fault instead.
var (
	// ErrTableFull is returned by Create when the process limit is reached.
	ErrTableFull = errors.New("table: process limit reached")

	// ErrInvalidCapacity is returned by New for non-positive limits.
	ErrInvalidCapacity = errors.New("table: invalid capacity")
)

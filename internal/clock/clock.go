// Package clock exposes the time source used when stamping processes,
// snapshots and events.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc; results are always UTC.
func Now() time.Time { return NowFunc().UTC() }

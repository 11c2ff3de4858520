// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Generated values correlate processes, events and snapshots across
// scheduling domains; they are never used as process identifiers.
package idgen

// Package progress keeps aggregated lifecycle counters of a scheduling
// domain: processes created and removed, dispatches, idle fallbacks and
// creations rejected because the table was full.
package progress

package table

import "log/slog"

// Option configures a Table
type Option func(t *Table)

// WithHalt sets the fatal fault handler
func WithHalt(halt HaltFunc) Option {
	return func(t *Table) {
		if halt != nil {
			t.halt = halt
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithName labels log records with the scheduling domain name
func WithName(name string) Option {
	return func(t *Table) {
		t.name = name
	}
}

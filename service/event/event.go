// Package event publishes process lifecycle notifications. Events are
// produced on the dispatch path, so publishing never blocks: when the
// underlying queue is full the event is dropped and the caller is told so.
package event

import (
	"time"

	"github.com/viant/procman/internal/clock"
	"github.com/viant/procman/internal/idgen"
	"github.com/viant/procman/model/process"
)

// Type names a lifecycle transition.
type Type string

const (
	TypeCreated    Type = "created"
	TypeRemoved    Type = "removed"
	TypeDispatched Type = "dispatched"
	TypeIdle       Type = "idle"
)

// Context identifies where an event happened.
type Context struct {
	Domain     string     `json:"domain"`
	Type       Type       `json:"type"`
	ProcessID  process.ID `json:"processID"`
	PreviousID process.ID `json:"previousID,omitempty"`
}

// Event wraps a payload with its context.
type Event[T any] struct {
	ID        string    `json:"id"`
	Context   *Context  `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

// NewEvent creates an event stamped with a fresh id and the current time.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		ID:        idgen.New(),
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}

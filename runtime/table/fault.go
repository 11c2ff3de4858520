package table

import (
	"errors"
	"fmt"

	"github.com/viant/procman/model/process"
)

// FaultKind classifies a fatal consistency violation.
type FaultKind string

const (
	// FaultStaleReference: a dispatch target is not present in the table.
	FaultStaleReference FaultKind = "stale-reference"
	// FaultNoRunnable: nothing is ready and no idle process is configured.
	FaultNoRunnable FaultKind = "no-runnable"
	// FaultDuplicateID: the factory returned an identifier already registered.
	FaultDuplicateID FaultKind = "duplicate-id"
	// FaultContract: a collaborator broke its contract (e.g. built a nil process).
	FaultContract FaultKind = "contract"
)

// Fault is a non-recoverable condition. Unlike ordinary errors it is never
// returned to the caller; it is delivered to the table's HaltFunc.
type Fault struct {
	Kind      FaultKind
	ProcessID process.ID
	Message   string
}

func (f *Fault) Error() string {
	if f.ProcessID != 0 {
		return fmt.Sprintf("fatal %s: pid %d: %s", f.Kind, f.ProcessID, f.Message)
	}
	return fmt.Sprintf("fatal %s: %s", f.Kind, f.Message)
}

// HaltFunc receives fatal faults. The default implementation panics; a
// replacement that returns leaves the faulting operation without effect.
type HaltFunc func(fault *Fault)

// Panic is the default HaltFunc.
func Panic(fault *Fault) {
	panic(fault)
}

// IsFault reports whether err (or a recovered panic value) is a *Fault.
func IsFault(err error) bool {
	var fault *Fault
	return errors.As(err, &fault)
}

// AsFault converts a recovered panic value into a *Fault.
func AsFault(recovered interface{}) (*Fault, bool) {
	switch actual := recovered.(type) {
	case *Fault:
		return actual, true
	case error:
		var fault *Fault
		if errors.As(actual, &fault) {
			return fault, true
		}
	}
	return nil, false
}

package triage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCapacityExceeded = errors.New("triage queue capacity exceeded")
	ErrScoreOutOfRange  = errors.New("interestingness score outside of [0, 1]")
	ErrIndexOutOfRange  = errors.New("slot index out of range")
)

// StateViolation is returned when a slot is asked to move to a state its
// current state cannot lead to. It always points to a scheduling bug in the
// caller; the queue never corrects it.
type StateViolation struct {
	Index   int
	Current SlotState
	Target  SlotState
	Allowed []SlotState
}

func (e *StateViolation) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = s.String()
	}
	return fmt.Sprintf("slot %d: invalid transition from %s to %s (expected one of %s)", e.Index, e.Current, e.Target, strings.Join(allowed, ", "))
}

func IsStateViolation(err error) bool {
	var sv *StateViolation
	return errors.As(err, &sv)
}

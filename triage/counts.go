package triage

import (
	"go.uber.org/zap/zapcore"
)

// StateCounts is the number of slots in each state. Used for monitoring,
// never for scheduling.
type StateCounts struct {
	None            int
	NotPreProcessed int
	PreProcessing   int
	PreProcessed    int
	Popping         int
	Popped          int
}

func (c StateCounts) Of(state SlotState) int {
	switch state {
	case StateNone:
		return c.None
	case StateInQueueNotPreProcessed:
		return c.NotPreProcessed
	case StatePreProcessing:
		return c.PreProcessing
	case StateInQueuePreProcessed:
		return c.PreProcessed
	case StatePopping:
		return c.Popping
	case StatePopped:
		return c.Popped
	}
	return 0
}

// InQueue counts slots waiting for a selector.
func (c StateCounts) InQueue() int { return c.NotPreProcessed + c.PreProcessed }

// InFlight counts slots claimed by a worker that has not reported back yet.
func (c StateCounts) InFlight() int { return c.PreProcessing + c.Popping }

// Active is true while any submitted slot has not reached StatePopped.
func (c StateCounts) Active() bool { return c.InQueue()+c.InFlight() > 0 }

func (c StateCounts) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("none", c.None)
	enc.AddInt("not_preprocessed", c.NotPreProcessed)
	enc.AddInt("preprocessing", c.PreProcessing)
	enc.AddInt("preprocessed", c.PreProcessed)
	enc.AddInt("popping", c.Popping)
	enc.AddInt("popped", c.Popped)
	return nil
}

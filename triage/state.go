package triage

type SlotState int

const (
	StateNone                   SlotState = iota // Slot index not yet handed out by Submit().
	StateInQueueNotPreProcessed                  // Submitted, waiting for triage.
	StatePreProcessing                           // Claimed by NextToPreprocess(), work in flight.
	StateInQueuePreProcessed                     // Score confirmed, waiting to be sent.
	StatePopping                                 // Claimed by NextToSend(), transmission in flight.
	StatePopped                                  // End state.
)

func (s SlotState) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateInQueueNotPreProcessed:
		return "NotPreProcessed"
	case StatePreProcessing:
		return "PreProcessing"
	case StateInQueuePreProcessed:
		return "PreProcessed"
	case StatePopping:
		return "Popping"
	case StatePopped:
		return "Popped"
	default:
		return "Unknown"
	}
}

// Short is the one letter code used in queue diagrams, see Queue.Diagram().
func (s SlotState) Short() string {
	switch s {
	case StateNone:
		return "."
	case StateInQueueNotPreProcessed:
		return "N"
	case StatePreProcessing:
		return "p"
	case StateInQueuePreProcessed:
		return "P"
	case StatePopping:
		return "s"
	case StatePopped:
		return "S"
	default:
		return "?"
	}
}

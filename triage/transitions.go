package triage

/*
Transitions:

Put that in https://mermaid.live/ :

stateDiagram-v2
    [*] --> None
    None --> NotPreProcessed: Submit()
    NotPreProcessed --> PreProcessing: NextToPreprocess()
    NotPreProcessed --> Popping: NextToSend()
    %%  shedding: nothing confirmed is waiting, so the least promising
    %%  unconfirmed slot goes out as-is.
    PreProcessing --> PreProcessed: ReportPreprocessed()
    %%NO: PreProcessing --> Popping
    %%  a slot being preprocessed cannot be sent before its score is confirmed.
    PreProcessed --> Popping: NextToSend()
    Popping --> Popped: ReportPopped()
    %%NO: any backward edge. A Popped slot is never handed out again.
    Popped --> [*]
*/

func (q *Queue) markSubmitted(idx int) error {
	return q.transition(idx, StateInQueueNotPreProcessed,
		StateNone, // fresh slot from the arena
	)
}

func (q *Queue) markPreProcessing(idx int) error {
	return q.transition(idx, StatePreProcessing,
		StateInQueueNotPreProcessed, // claimed by NextToPreprocess()
	)
}

func (q *Queue) markPreProcessed(idx int) error {
	return q.transition(idx, StateInQueuePreProcessed,
		StatePreProcessing, // reported by a preprocessing worker
	)
}

func (q *Queue) markPopping(idx int) error {
	return q.transition(idx, StatePopping,
		StateInQueuePreProcessed,    // confirmed slots go first
		StateInQueueNotPreProcessed, // shedding unconfirmed backlog
	)
}

func (q *Queue) markPopped(idx int) error {
	return q.transition(idx, StatePopped,
		StatePopping, // reported by a sending worker
	)
}

func (q *Queue) transition(idx int, to SlotState, allowedPreviousStates ...SlotState) error {
	prev := q.states[idx]
	for _, from := range allowedPreviousStates {
		if prev == from {
			q.states[idx] = to
			return nil
		}
	}
	return &StateViolation{Index: idx, Current: prev, Target: to, Allowed: allowedPreviousStates}
}

// mustTransition is used by the selectors, which only ever pick slots in a
// valid state. A failure there is a bug in the queue itself.
func mustTransition(err error) {
	if err != nil {
		panic(err.Error())
	}
}

func (q *Queue) forceState(idx int, to SlotState) {
	// For testing purposes:
	q.states[idx] = to
}

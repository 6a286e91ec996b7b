package triage

import (
	"fmt"
	"strings"
)

// Mode selects the ranking strategy used by both selectors. The numbering
// matches the HASTE mode codes (SPLINES=0, NATURAL=1, GOLDEN=2).
type Mode int

const (
	ModeSplines Mode = iota
	ModeNatural
	ModeGolden
)

func (m Mode) String() string {
	switch m {
	case ModeSplines:
		return "SPLINES"
	case ModeNatural:
		return "NATURAL"
	case ModeGolden:
		return "GOLDEN"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(in string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(in)) {
	case "SPLINES":
		return ModeSplines, nil
	case "NATURAL":
		return ModeNatural, nil
	case "GOLDEN":
		return ModeGolden, nil
	}
	return 0, fmt.Errorf("unknown triage mode %q, expected one of splines, natural, golden", in)
}

// Phase tells how a preprocess candidate was found.
type Phase int

const (
	PhaseFIFO    Phase = iota // lowest waiting index
	PhaseExplore              // first slot of an unexamined block
	PhaseExploit              // highest estimated score
)

func (p Phase) String() string {
	switch p {
	case PhaseFIFO:
		return "fifo"
	case PhaseExplore:
		return "explore"
	case PhaseExploit:
		return "exploit"
	default:
		return "unknown"
	}
}

// strategy holds the mode-specific half of both selectors. Callers hold the
// queue lock and guarantee at least one slot is StateInQueueNotPreProcessed.
type strategy interface {
	preprocessCandidate(q *Queue) (int, Phase)
	shedCandidate(q *Queue) int
}

func strategyFor(mode Mode) (strategy, error) {
	switch mode {
	case ModeNatural:
		return naturalStrategy{}, nil
	case ModeGolden:
		return goldenStrategy{}, nil
	case ModeSplines:
		return splinesStrategy{}, nil
	}
	return nil, fmt.Errorf("no strategy for mode %s", mode)
}

type naturalStrategy struct{}

func (naturalStrategy) preprocessCandidate(q *Queue) (int, Phase) {
	return q.firstInState(StateInQueueNotPreProcessed), PhaseFIFO
}

func (naturalStrategy) shedCandidate(q *Queue) int {
	return q.firstInState(StateInQueueNotPreProcessed)
}

// goldenStrategy climbs a fixed baseline. It is the oracle the other modes
// are measured against.
type goldenStrategy struct{}

func (goldenStrategy) preprocessCandidate(q *Queue) (int, Phase) {
	return q.argmaxEstimated(), PhaseExploit
}

func (goldenStrategy) shedCandidate(q *Queue) int {
	return q.argminEstimated()
}

type splinesStrategy struct{}

func (splinesStrategy) preprocessCandidate(q *Queue) (int, Phase) {
	if idx, _ := q.exploreCandidate(); idx >= 0 {
		return idx, PhaseExplore
	}
	return q.argmaxEstimated(), PhaseExploit
}

func (splinesStrategy) shedCandidate(q *Queue) int {
	return q.argminEstimated()
}

package triage

import (
	"go.uber.org/zap"

	"github.com/benblamey/HasteStorageClient/block"
)

// exploreCandidate scans the submitted slots block by block and returns the
// first waiting slot of the first block nobody has looked at yet. A block has
// been looked at as soon as one of its slots is being preprocessed or carries
// a known score. Returns -1 once every block has been sampled.
func (q *Queue) exploreCandidate() (int, *block.Range) {
	segmenter := block.NewSegmenter(q.blockSize, q.submitted)
	for i := 0; i < segmenter.Count(); i++ {
		rng := segmenter.Range(i)
		if !q.blockUnexamined(rng) {
			continue
		}
		idx := q.firstInRange(rng, StateInQueueNotPreProcessed)
		if tracer.Enabled() {
			q.logger.Debug("explore block selected", zap.Object("block", rng), zap.Int("index", idx))
		}
		return idx, rng
	}
	return -1, nil
}

func (q *Queue) blockUnexamined(rng *block.Range) bool {
	waiting := false
	for i := rng.Start; i < rng.ExclusiveEnd; i++ {
		if q.known[i] != UnknownScore || q.states[i] == StatePreProcessing {
			return false
		}
		if q.states[i] == StateInQueueNotPreProcessed {
			waiting = true
		}
	}
	return waiting
}

func (q *Queue) firstInRange(rng *block.Range, state SlotState) int {
	for i := rng.Start; i < rng.ExclusiveEnd; i++ {
		if q.states[i] == state {
			return i
		}
	}
	return -1
}

func (q *Queue) firstInState(state SlotState) int {
	for i := 0; i < q.submitted; i++ {
		if q.states[i] == state {
			return i
		}
	}
	return -1
}

func (q *Queue) countInState(state SlotState) (count int) {
	for _, s := range q.states {
		if s == state {
			count++
		}
	}
	return
}

// argmaxEstimated returns the waiting slot with the highest estimate, the
// lowest index winning ties.
func (q *Queue) argmaxEstimated() int {
	best := -1
	for i := 0; i < q.submitted; i++ {
		if q.states[i] != StateInQueueNotPreProcessed {
			continue
		}
		if best == -1 || q.estimated[i] > q.estimated[best] {
			best = i
		}
	}
	return best
}

// argminEstimated returns the waiting slot with the lowest estimate, the
// lowest index winning ties.
func (q *Queue) argminEstimated() int {
	best := -1
	for i := 0; i < q.submitted; i++ {
		if q.states[i] != StateInQueueNotPreProcessed {
			continue
		}
		if best == -1 || q.estimated[i] < q.estimated[best] {
			best = i
		}
	}
	return best
}

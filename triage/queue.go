package triage

import (
	"context"
	"fmt"
	"maps"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benblamey/HasteStorageClient/metrics"
)

const (
	// UnknownScore is the known score of a slot that was never preprocessed.
	UnknownScore = -1.0

	// DefaultEstimate seeds the estimated score of NATURAL and SPLINES slots.
	DefaultEstimate = 1.0

	DefaultBlockSize = 15
)

// Metadata is the opaque payload of a document. The queue only stores and
// forwards it.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

type Config struct {
	Capacity int
	Mode     Mode

	// Baseline is the precomputed score of every slot, required by ModeGolden.
	Baseline []float64

	// BlockSize is the width of the blocks sampled by the ModeSplines search
	// phase. Defaults to DefaultBlockSize.
	BlockSize int

	Estimator Estimator
	Logger    *zap.Logger
}

// Queue is the fixed capacity triage queue. All methods are safe for
// concurrent use; each one is a single short critical section.
type Queue struct {
	mu sync.Mutex

	mode      Mode
	strategy  strategy
	blockSize int
	estimator Estimator
	logger    *zap.Logger

	states    []SlotState
	metadata  []Metadata
	estimated []float64
	known     []float64

	// submitted is the next index Submit() hands out. Slots are never reused.
	submitted int
}

func New(config Config) (*Queue, error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("invalid capacity %d, must be positive", config.Capacity)
	}
	strat, err := strategyFor(config.Mode)
	if err != nil {
		return nil, err
	}
	if config.Mode == ModeGolden && len(config.Baseline) != config.Capacity {
		return nil, fmt.Errorf("mode %s requires %d baseline scores, got %d", config.Mode, config.Capacity, len(config.Baseline))
	}
	if config.BlockSize <= 0 {
		config.BlockSize = DefaultBlockSize
	}
	if config.Logger == nil {
		config.Logger = zlog
	}

	q := &Queue{
		mode:      config.Mode,
		strategy:  strat,
		blockSize: config.BlockSize,
		estimator: config.Estimator,
		logger:    config.Logger.With(zap.Stringer("mode", config.Mode)),
		states:    make([]SlotState, config.Capacity),
		metadata:  make([]Metadata, config.Capacity),
		estimated: make([]float64, config.Capacity),
		known:     make([]float64, config.Capacity),
	}

	for i := range q.known {
		q.known[i] = UnknownScore
	}
	if config.Mode == ModeGolden {
		copy(q.estimated, config.Baseline)
	} else {
		for i := range q.estimated {
			q.estimated[i] = DefaultEstimate
		}
	}

	q.logger.Info("triage queue created", zap.Int("capacity", config.Capacity), zap.Int("block_size", q.blockSize))
	return q, nil
}

func (q *Queue) Mode() Mode     { return q.mode }
func (q *Queue) Capacity() int  { return len(q.states) }
func (q *Queue) BlockSize() int { return q.blockSize }

// Submitted returns how many slots have been handed out by Submit().
func (q *Queue) Submitted() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitted
}

// Submit places a new document in the next unused slot.
func (q *Queue) Submit(metadata Metadata) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.submitted >= len(q.states) {
		metrics.SubmitRejected.Inc()
		return -1, fmt.Errorf("submitting document %d: %w", q.submitted, ErrCapacityExceeded)
	}

	idx := q.submitted
	if err := q.markSubmitted(idx); err != nil {
		return -1, err
	}
	q.submitted++
	q.metadata[idx] = metadata.Clone()
	q.known[idx] = UnknownScore

	metrics.Submitted.Inc()
	if tracer.Enabled() {
		q.logger.Debug("queue event", zap.String("event", "new_file"), zap.Int("index", idx))
	}
	return idx, nil
}

// Selection is a slot handed out to a worker.
type Selection struct {
	Index          int
	Metadata       Metadata
	EstimatedScore float64
	Phase          Phase
}

func (s Selection) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("index", s.Index)
	enc.AddFloat64("estimated_score", s.EstimatedScore)
	enc.AddString("phase", s.Phase.String())
	return nil
}

// NextToPreprocess claims the next slot to preprocess according to the queue
// mode. Returns false when no slot is waiting for preprocessing.
func (q *Queue) NextToPreprocess() (Selection, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.firstInState(StateInQueueNotPreProcessed) == -1 {
		return Selection{}, false
	}

	idx, phase := q.strategy.preprocessCandidate(q)
	mustTransition(q.markPreProcessing(idx))

	metrics.PreprocessSelected.Inc()
	event := "pop_preprocess"
	if phase == PhaseExplore {
		metrics.ExploreSelected.Inc()
		event = "pop_preprocess_search"
	}
	if tracer.Enabled() {
		q.logger.Debug("queue event", zap.String("event", event), zap.Int("index", idx), zap.Stringer("phase", phase))
	}

	return q.selection(idx, phase), true
}

// NextToSend claims the next slot to transmit. Preprocessed slots always go
// first, lowest index first. Without any, the mode decides which unconfirmed
// slot to shed. Returns false when nothing is left to send.
func (q *Queue) NextToSend() (Selection, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.firstInState(StateInQueuePreProcessed)
	if idx == -1 {
		if q.firstInState(StateInQueueNotPreProcessed) == -1 {
			return Selection{}, false
		}
		idx = q.strategy.shedCandidate(q)
		metrics.SendShed.Inc()
	}
	mustTransition(q.markPopping(idx))

	metrics.SendSelected.Inc()
	if tracer.Enabled() {
		q.logger.Debug("queue event", zap.String("event", "pop_send"), zap.Int("index", idx))
	}

	return q.selection(idx, PhaseFIFO), true
}

func (q *Queue) selection(idx int, phase Phase) Selection {
	return Selection{
		Index:          idx,
		Metadata:       q.metadata[idx].Clone(),
		EstimatedScore: q.estimated[idx],
		Phase:          phase,
	}
}

// ReportPreprocessed records the confirmed score and refined metadata of a
// slot returned by NextToPreprocess(), then lets the estimator revise the
// estimates of the slots still waiting. Estimator failures are absorbed.
func (q *Queue) ReportPreprocessed(ctx context.Context, idx int, score float64, metadata Metadata) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkIndex(idx); err != nil {
		return err
	}
	if q.states[idx] != StatePreProcessing {
		metrics.StateViolations.Inc()
		return q.markPreProcessed(idx)
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return fmt.Errorf("slot %d score %v: %w", idx, score, ErrScoreOutOfRange)
	}
	mustTransition(q.markPreProcessed(idx))

	q.known[idx] = score
	q.metadata[idx] = metadata.Clone()
	metrics.Preprocessed.Inc()

	q.runEstimator(ctx, idx)
	return nil
}

// ReportPopped marks a slot returned by NextToSend() as sent.
func (q *Queue) ReportPopped(idx int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkIndex(idx); err != nil {
		return err
	}
	if err := q.markPopped(idx); err != nil {
		metrics.StateViolations.Inc()
		return err
	}
	metrics.Popped.Inc()
	return nil
}

func (q *Queue) checkIndex(idx int) error {
	if idx < 0 || idx >= len(q.states) {
		return fmt.Errorf("slot %d, capacity %d: %w", idx, len(q.states), ErrIndexOutOfRange)
	}
	return nil
}

// Slot is a point-in-time copy of one slot.
type Slot struct {
	Index          int
	State          SlotState
	Metadata       Metadata
	EstimatedScore float64
	KnownScore     float64
}

func (s Slot) HasKnownScore() bool { return s.KnownScore != UnknownScore }

func (q *Queue) Slot(idx int) (Slot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkIndex(idx); err != nil {
		return Slot{}, err
	}
	return Slot{
		Index:          idx,
		State:          q.states[idx],
		Metadata:       q.metadata[idx].Clone(),
		EstimatedScore: q.estimated[idx],
		KnownScore:     q.known[idx],
	}, nil
}

func (q *Queue) States() []SlotState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]SlotState(nil), q.states...)
}

func (q *Queue) Counts() StateCounts {
	q.mu.Lock()
	defer q.mu.Unlock()

	return StateCounts{
		None:            q.countInState(StateNone),
		NotPreProcessed: q.countInState(StateInQueueNotPreProcessed),
		PreProcessing:   q.countInState(StatePreProcessing),
		PreProcessed:    q.countInState(StateInQueuePreProcessed),
		Popping:         q.countInState(StatePopping),
		Popped:          q.countInState(StatePopped),
	}
}

// Diagram renders slot states as one letter per slot, see SlotState.Short().
func (q *Queue) Diagram() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := strings.Builder{}
	for _, s := range q.states {
		out.WriteString(s.Short())
	}
	return out.String()
}

func (q *Queue) LogQueueInfo() {
	counts := q.Counts()
	q.logger.Info("queue info", zap.Int("preprocessed", counts.PreProcessed), zap.Int("not_preprocessed", counts.NotPreProcessed), zap.Object("counts", counts))
}

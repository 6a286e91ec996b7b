package triage

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/benblamey/HasteStorageClient/metrics"
)

// Estimator revises the estimated scores of waiting slots once a slot gets a
// confirmed score. It receives a snapshot of the whole queue and answers with
// the updates it wants applied; it never touches the queue directly.
type Estimator interface {
	Estimate(ctx context.Context, view *View) ([]ScoreUpdate, error)
}

type EstimatorFunc func(ctx context.Context, view *View) ([]ScoreUpdate, error)

func (f EstimatorFunc) Estimate(ctx context.Context, view *View) ([]ScoreUpdate, error) {
	return f(ctx, view)
}

type ScoreUpdate struct {
	Index int
	Score float64
}

// View is a copy of the queue state taken right after Confirmed moved to
// StateInQueuePreProcessed.
type View struct {
	Mode            Mode
	Confirmed       int
	Metadata        Metadata
	States          []SlotState
	KnownScores     []float64
	EstimatedScores []float64
}

func (v *View) Waiting(idx int) bool {
	return v.States[idx] == StateInQueueNotPreProcessed
}

func (q *Queue) view(confirmed int) *View {
	return &View{
		Mode:            q.mode,
		Confirmed:       confirmed,
		Metadata:        q.metadata[confirmed].Clone(),
		States:          append([]SlotState(nil), q.states...),
		KnownScores:     append([]float64(nil), q.known...),
		EstimatedScores: append([]float64(nil), q.estimated...),
	}
}

// runEstimator calls the estimator and merges its answer. Any failure is a
// model failure: it is logged and counted, and the estimates stay as they were.
func (q *Queue) runEstimator(ctx context.Context, confirmed int) {
	if q.estimator == nil || q.mode == ModeGolden {
		return
	}

	updates, err := q.callEstimator(ctx, confirmed)
	if err != nil {
		metrics.ModelFailures.Inc()
		q.logger.Warn("interestingness estimator failed, keeping previous estimates", zap.Int("confirmed_index", confirmed), zap.Error(err))
		return
	}

	applied := 0
	for _, u := range updates {
		if u.Index < 0 || u.Index >= len(q.states) {
			continue
		}
		if q.states[u.Index] != StateInQueueNotPreProcessed {
			continue
		}
		// estimates live in the same [0, 1] range as confirmed scores
		if math.IsNaN(u.Score) || u.Score < 0 || u.Score > 1 {
			continue
		}
		q.estimated[u.Index] = u.Score
		applied++
	}
	metrics.EstimateUpdates.AddInt(applied)

	if tracer.Enabled() {
		q.logger.Debug("estimates revised", zap.Int("confirmed_index", confirmed), zap.Int("proposed", len(updates)), zap.Int("applied", applied))
	}
}

func (q *Queue) callEstimator(ctx context.Context, confirmed int) (updates []ScoreUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("estimator panicked: %v", r)
		}
	}()
	return q.estimator.Estimate(ctx, q.view(confirmed))
}

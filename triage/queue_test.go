package triage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, config Config) *Queue {
	t.Helper()
	q, err := New(config)
	require.NoError(t, err)
	return q
}

func fillQueue(t *testing.T, q *Queue, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		idx, err := q.Submit(Metadata{"n": i})
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
}

func slotStatesEqual(t *testing.T, q *Queue, expected string) {
	t.Helper()
	assert.Equal(t, expected, q.Diagram())
}

func mustPreprocess(t *testing.T, q *Queue) Selection {
	t.Helper()
	sel, ok := q.NextToPreprocess()
	require.True(t, ok, "expected a slot to preprocess")
	return sel
}

func mustSend(t *testing.T, q *Queue) Selection {
	t.Helper()
	sel, ok := q.NextToSend()
	require.True(t, ok, "expected a slot to send")
	return sel
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		expectErr bool
	}{
		{"natural", Config{Capacity: 3, Mode: ModeNatural}, false},
		{"splines", Config{Capacity: 3, Mode: ModeSplines}, false},
		{"golden", Config{Capacity: 3, Mode: ModeGolden, Baseline: []float64{0.1, 0.2, 0.3}}, false},
		{"zero capacity", Config{Capacity: 0, Mode: ModeNatural}, true},
		{"golden without baseline", Config{Capacity: 3, Mode: ModeGolden}, true},
		{"golden short baseline", Config{Capacity: 3, Mode: ModeGolden, Baseline: []float64{0.1}}, true},
		{"unknown mode", Config{Capacity: 3, Mode: Mode(9)}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			q, err := New(test.config)
			if test.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.config.Capacity, q.Capacity())
			assert.Equal(t, DefaultBlockSize, q.BlockSize())
			slotStatesEqual(t, q, "...")
		})
	}
}

func TestNew_InitialEstimates(t *testing.T) {
	golden := newTestQueue(t, Config{Capacity: 3, Mode: ModeGolden, Baseline: []float64{0.3, 0.1, 0.2}})
	splines := newTestQueue(t, Config{Capacity: 3, Mode: ModeSplines})

	for i, expected := range []float64{0.3, 0.1, 0.2} {
		slot, err := golden.Slot(i)
		require.NoError(t, err)
		assert.Equal(t, expected, slot.EstimatedScore)
		assert.False(t, slot.HasKnownScore())

		slot, err = splines.Slot(i)
		require.NoError(t, err)
		assert.Equal(t, DefaultEstimate, slot.EstimatedScore)
		assert.Equal(t, UnknownScore, slot.KnownScore)
	}
}

func TestQueue_Golden(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 5, Mode: ModeGolden, Baseline: []float64{1, 2, 3, 4, 5}})
	slotStatesEqual(t, q, ".....")

	fillQueue(t, q, 5)
	slotStatesEqual(t, q, "NNNNN")

	sel := mustPreprocess(t, q)
	assert.Equal(t, 4, sel.Index)
	assert.Equal(t, 5.0, sel.EstimatedScore)
	slotStatesEqual(t, q, "NNNNp")

	sel = mustSend(t, q)
	assert.Equal(t, 0, sel.Index)
	slotStatesEqual(t, q, "sNNNp")

	require.NoError(t, q.ReportPreprocessed(context.Background(), 4, 1, Metadata{}))
	require.NoError(t, q.ReportPopped(0))
	slotStatesEqual(t, q, "SNNNP")

	sel = mustPreprocess(t, q)
	assert.Equal(t, 3, sel.Index)
	slotStatesEqual(t, q, "SNNpP")

	sel = mustSend(t, q)
	assert.Equal(t, 4, sel.Index)
	slotStatesEqual(t, q, "SNNps")

	require.NoError(t, q.ReportPreprocessed(context.Background(), 3, 1, Metadata{}))
	require.NoError(t, q.ReportPopped(4))
	slotStatesEqual(t, q, "SNNPS")
}

func TestQueue_GoldenAlwaysPicksHighestBaseline(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	baseline := make([]float64, 40)
	for i := range baseline {
		baseline[i] = r.Float64()
	}
	q := newTestQueue(t, Config{Capacity: len(baseline), Mode: ModeGolden, Baseline: baseline})
	fillQueue(t, q, len(baseline))

	sorted := append([]float64(nil), baseline...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	for _, expected := range sorted {
		sel := mustPreprocess(t, q)
		assert.Equal(t, expected, baseline[sel.Index])
		assert.Equal(t, PhaseExploit, sel.Phase)
	}
	_, ok := q.NextToPreprocess()
	assert.False(t, ok)
}

func TestQueue_GoldenIgnoresEstimator(t *testing.T) {
	called := false
	q := newTestQueue(t, Config{
		Capacity: 2,
		Mode:     ModeGolden,
		Baseline: []float64{0.2, 0.8},
		Estimator: EstimatorFunc(func(ctx context.Context, view *View) ([]ScoreUpdate, error) {
			called = true
			return []ScoreUpdate{{Index: 0, Score: 1}}, nil
		}),
	})
	fillQueue(t, q, 2)

	sel := mustPreprocess(t, q)
	require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 0.5, nil))
	assert.False(t, called)

	slot, err := q.Slot(0)
	require.NoError(t, err)
	assert.Equal(t, 0.2, slot.EstimatedScore)
}

func TestQueue_Natural(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 5, Mode: ModeNatural})
	fillQueue(t, q, 5)

	for _, expected := range []int{0, 1, 2} {
		sel := mustPreprocess(t, q)
		assert.Equal(t, expected, sel.Index)
		assert.Equal(t, PhaseFIFO, sel.Phase)
	}
	slotStatesEqual(t, q, "pppNN")

	// nothing confirmed yet: plain FIFO drain of the unconfirmed slots
	assert.Equal(t, 3, mustSend(t, q).Index)
	slotStatesEqual(t, q, "pppsN")

	require.NoError(t, q.ReportPreprocessed(context.Background(), 2, 0.1, Metadata{"refined": true}))
	require.NoError(t, q.ReportPreprocessed(context.Background(), 1, 0.9, nil))

	// confirmed slots win regardless of their score, lowest index first
	assert.Equal(t, 1, mustSend(t, q).Index)
	assert.Equal(t, 2, mustSend(t, q).Index)
	assert.Equal(t, 4, mustSend(t, q).Index)
	slotStatesEqual(t, q, "pssss")

	_, ok := q.NextToSend()
	assert.False(t, ok)
	_, ok = q.NextToPreprocess()
	assert.False(t, ok)

	slot, err := q.Slot(2)
	require.NoError(t, err)
	assert.Equal(t, Metadata{"refined": true}, slot.Metadata)
	assert.Equal(t, 0.1, slot.KnownScore)
}

func TestQueue_SplinesExploreThenExploit(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 10, Mode: ModeSplines, BlockSize: 3})
	fillQueue(t, q, 10)

	for _, expected := range []int{0, 3, 6, 9} {
		sel := mustPreprocess(t, q)
		assert.Equal(t, expected, sel.Index)
		assert.Equal(t, PhaseExplore, sel.Phase)
	}
	slotStatesEqual(t, q, "pNNpNNpNNp")

	// all blocks sampled, all estimates equal: climb from the lowest index
	sel := mustPreprocess(t, q)
	assert.Equal(t, 1, sel.Index)
	assert.Equal(t, PhaseExploit, sel.Phase)
}

func TestQueue_SplinesKnownScoreClosesBlock(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 6, Mode: ModeSplines, BlockSize: 3})
	fillQueue(t, q, 6)

	assert.Equal(t, 0, mustPreprocess(t, q).Index)
	require.NoError(t, q.ReportPreprocessed(context.Background(), 0, 0.4, nil))
	require.NoError(t, q.ReportPopped(mustSend(t, q).Index))
	slotStatesEqual(t, q, "SNNNNN")

	// block 0 holds a known score even though its sampled slot is gone
	sel := mustPreprocess(t, q)
	assert.Equal(t, 3, sel.Index)
	assert.Equal(t, PhaseExplore, sel.Phase)
}

func TestQueue_SplinesShedSlotDoesNotCloseBlock(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 4, Mode: ModeSplines, BlockSize: 2})
	fillQueue(t, q, 4)

	assert.Equal(t, 0, mustSend(t, q).Index)
	slotStatesEqual(t, q, "sNNN")

	sel := mustPreprocess(t, q)
	assert.Equal(t, 1, sel.Index)
	assert.Equal(t, PhaseExplore, sel.Phase)
}

func TestQueue_SplinesBlocksFollowSubmissions(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 10, Mode: ModeSplines, BlockSize: 3})
	fillQueue(t, q, 2)

	assert.Equal(t, 0, mustPreprocess(t, q).Index)

	for i := 0; i < 3; i++ {
		_, err := q.Submit(nil)
		require.NoError(t, err)
	}
	slotStatesEqual(t, q, "pNNNN.....")

	sel := mustPreprocess(t, q)
	assert.Equal(t, 3, sel.Index)
	assert.Equal(t, PhaseExplore, sel.Phase)
}

func TestQueue_SplinesEveryBlockSampledOnce(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 47, Mode: ModeSplines, BlockSize: 5})
	fillQueue(t, q, 47)

	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		sel := mustPreprocess(t, q)
		require.Equal(t, PhaseExplore, sel.Phase)
		blockIdx := sel.Index / 5
		assert.False(t, seen[blockIdx], "block %d sampled twice", blockIdx)
		seen[blockIdx] = true

		// confirming the sample must not reopen the block
		require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 0.5, nil))
	}
	assert.Len(t, seen, 10)

	sel := mustPreprocess(t, q)
	assert.Equal(t, PhaseExploit, sel.Phase)
}

func TestQueue_SplinesEstimatorDrivesClimbAndShed(t *testing.T) {
	var seen *View
	q := newTestQueue(t, Config{
		Capacity:  6,
		Mode:      ModeSplines,
		BlockSize: 3,
		Estimator: EstimatorFunc(func(ctx context.Context, view *View) ([]ScoreUpdate, error) {
			seen = view
			return []ScoreUpdate{
				{Index: 0, Score: 0.0},  // the confirmed slot itself, ignored
				{Index: 1, Score: 0.2},
				{Index: 2, Score: 0.3},
				{Index: 3, Score: 0.99}, // being preprocessed, ignored
				{Index: 4, Score: 0.9},
				{Index: 5, Score: math.NaN()}, // ignored
				{Index: 42, Score: 1},         // out of range, ignored
			}, nil
		}),
	})
	fillQueue(t, q, 6)

	assert.Equal(t, 0, mustPreprocess(t, q).Index)
	assert.Equal(t, 3, mustPreprocess(t, q).Index)
	require.NoError(t, q.ReportPreprocessed(context.Background(), 0, 0.5, Metadata{"area": 12}))

	require.NotNil(t, seen)
	assert.Equal(t, 0, seen.Confirmed)
	assert.Equal(t, Metadata{"area": 12}, seen.Metadata)
	assert.Equal(t, 0.5, seen.KnownScores[0])
	assert.Equal(t, StateInQueuePreProcessed, seen.States[0])
	assert.True(t, seen.Waiting(1))
	assert.False(t, seen.Waiting(3))

	expected := []float64{1.0, 0.2, 0.3, 1.0, 0.9, 1.0}
	for i, score := range expected {
		slot, err := q.Slot(i)
		require.NoError(t, err)
		assert.Equal(t, score, slot.EstimatedScore, "slot %d", i)
	}

	// both blocks sampled: climb towards slot 5 (1.0) ahead of slot 4 (0.9)
	sel := mustPreprocess(t, q)
	assert.Equal(t, 5, sel.Index)
	assert.Equal(t, PhaseExploit, sel.Phase)

	assert.Equal(t, 0, mustSend(t, q).Index)
	// nothing confirmed is waiting: shed the least promising slot
	assert.Equal(t, 1, mustSend(t, q).Index)
	slotStatesEqual(t, q, "ssNpNp")
}

func TestQueue_EstimatorFailureIsAbsorbed(t *testing.T) {
	tests := []struct {
		name      string
		estimator EstimatorFunc
	}{
		{"error", func(ctx context.Context, view *View) ([]ScoreUpdate, error) {
			return []ScoreUpdate{{Index: 1, Score: 0.1}}, errors.New("model unavailable")
		}},
		{"panic", func(ctx context.Context, view *View) ([]ScoreUpdate, error) {
			panic("boom")
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			q := newTestQueue(t, Config{Capacity: 2, Mode: ModeSplines, Estimator: test.estimator})
			fillQueue(t, q, 2)

			sel := mustPreprocess(t, q)
			require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 0.7, nil))
			slotStatesEqual(t, q, "PN")

			slot, err := q.Slot(1)
			require.NoError(t, err)
			assert.Equal(t, DefaultEstimate, slot.EstimatedScore)
		})
	}
}

func TestQueue_EstimatesOutsideUnitRangeAreDropped(t *testing.T) {
	q := newTestQueue(t, Config{
		Capacity: 4,
		Mode:     ModeSplines,
		Estimator: EstimatorFunc(func(ctx context.Context, view *View) ([]ScoreUpdate, error) {
			return []ScoreUpdate{
				{Index: 1, Score: 5.0},
				{Index: 2, Score: -1},
				{Index: 3, Score: math.Inf(1)},
			}, nil
		}),
	})
	fillQueue(t, q, 4)

	sel := mustPreprocess(t, q)
	require.Equal(t, 0, sel.Index)
	require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 0.2, nil))

	for idx := 1; idx < 4; idx++ {
		slot, err := q.Slot(idx)
		require.NoError(t, err)
		assert.Equal(t, DefaultEstimate, slot.EstimatedScore, "slot %d", idx)
	}
}

func TestQueue_CapacityExceeded(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 1, Mode: ModeNatural})

	assert.Equal(t, 0, q.Submitted())
	idx, err := q.Submit(Metadata{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = q.Submit(Metadata{})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 1, q.Submitted())

	// popped slots are not recycled
	require.NoError(t, q.ReportPopped(mustSend(t, q).Index))
	_, err = q.Submit(Metadata{})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestQueue_StateViolations(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 3, Mode: ModeNatural})
	fillQueue(t, q, 2)

	err := q.ReportPopped(0)
	require.Error(t, err)
	var sv *StateViolation
	require.True(t, errors.As(err, &sv))
	assert.Equal(t, 0, sv.Index)
	assert.Equal(t, StateInQueueNotPreProcessed, sv.Current)
	assert.Equal(t, StatePopped, sv.Target)
	assert.Equal(t, "slot 0: invalid transition from NotPreProcessed to Popped (expected one of Popping)", err.Error())

	err = q.ReportPreprocessed(context.Background(), 0, 0.5, nil)
	assert.True(t, IsStateViolation(err))

	// slot 2 was never submitted
	assert.True(t, IsStateViolation(q.ReportPopped(2)))
	assert.True(t, IsStateViolation(q.ReportPreprocessed(context.Background(), 2, 0.5, nil)))

	sel := mustPreprocess(t, q)
	require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 0.5, nil))
	assert.True(t, IsStateViolation(q.ReportPreprocessed(context.Background(), sel.Index, 0.6, nil)), "double report")
	assert.True(t, IsStateViolation(q.ReportPopped(sel.Index)), "popped before being selected for sending")

	require.NoError(t, q.ReportPopped(mustSend(t, q).Index))
	assert.True(t, IsStateViolation(q.ReportPopped(sel.Index)), "double pop report")

	slotStatesEqual(t, q, "SN.")
}

func TestQueue_IndexOutOfRange(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 2, Mode: ModeNatural})

	assert.ErrorIs(t, q.ReportPopped(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, q.ReportPopped(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, q.ReportPreprocessed(context.Background(), 5, 0.5, nil), ErrIndexOutOfRange)
	_, err := q.Slot(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestQueue_ScoreOutOfRange(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 1, Mode: ModeSplines})
	fillQueue(t, q, 1)
	sel := mustPreprocess(t, q)

	for _, score := range []float64{-0.1, 1.5, math.NaN()} {
		assert.ErrorIs(t, q.ReportPreprocessed(context.Background(), sel.Index, score, nil), ErrScoreOutOfRange)
	}
	slotStatesEqual(t, q, "p")

	require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 1, nil))
	slotStatesEqual(t, q, "P")
}

func TestQueue_WrongStateWinsOverBadScore(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 3, Mode: ModeSplines})
	fillQueue(t, q, 1)

	// slot 0 is waiting, slot 1 was never submitted
	for _, idx := range []int{0, 1} {
		for _, score := range []float64{-0.1, 1.5, math.NaN()} {
			err := q.ReportPreprocessed(context.Background(), idx, score, nil)
			assert.True(t, IsStateViolation(err), "slot %d score %v: %v", idx, score, err)
			assert.NotErrorIs(t, err, ErrScoreOutOfRange)
		}
	}
	slotStatesEqual(t, q, "N..")
}

func TestQueue_KnownScoreIsFixed(t *testing.T) {
	q := newTestQueue(t, Config{
		Capacity: 3,
		Mode:     ModeSplines,
		Estimator: EstimatorFunc(func(ctx context.Context, view *View) ([]ScoreUpdate, error) {
			var out []ScoreUpdate
			for i := range view.States {
				out = append(out, ScoreUpdate{Index: i, Score: 0.01})
			}
			return out, nil
		}),
	})
	fillQueue(t, q, 3)

	first := mustPreprocess(t, q)
	require.NoError(t, q.ReportPreprocessed(context.Background(), first.Index, 0.75, nil))

	second := mustPreprocess(t, q)
	require.NoError(t, q.ReportPreprocessed(context.Background(), second.Index, 0.25, nil))
	_ = q.ReportPreprocessed(context.Background(), first.Index, 0.5, nil)

	slot, err := q.Slot(first.Index)
	require.NoError(t, err)
	assert.Equal(t, 0.75, slot.KnownScore)
	assert.Equal(t, DefaultEstimate, slot.EstimatedScore, "estimates freeze once a slot leaves the waiting state")
}

func TestQueue_CountsAreIdempotent(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 6, Mode: ModeNatural})
	fillQueue(t, q, 5)
	mustPreprocess(t, q)
	mustSend(t, q)
	sel := mustPreprocess(t, q)
	require.NoError(t, q.ReportPreprocessed(context.Background(), sel.Index, 0.3, nil))

	first := q.Counts()
	assert.Equal(t, first, q.Counts())
	assert.Equal(t, first, q.Counts())

	assert.Equal(t, StateCounts{None: 1, NotPreProcessed: 2, PreProcessing: 1, PreProcessed: 1, Popping: 1}, first)
	assert.Equal(t, 3, first.InQueue())
	assert.Equal(t, 2, first.InFlight())
	assert.True(t, first.Active())
	assert.Equal(t, 1, first.Of(StatePopping))
}

func TestQueue_StatesNeverRegress(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, mode := range []Mode{ModeNatural, ModeSplines} {
		t.Run(mode.String(), func(t *testing.T) {
			q := newTestQueue(t, Config{Capacity: 30, Mode: mode, BlockSize: 4})

			var inPreprocess, inSend []int
			known := map[int]float64{}
			prev := q.States()

			for step := 0; step < 400; step++ {
				switch r.Intn(5) {
				case 0:
					_, _ = q.Submit(Metadata{"step": step})
				case 1:
					if sel, ok := q.NextToPreprocess(); ok {
						inPreprocess = append(inPreprocess, sel.Index)
					}
				case 2:
					if sel, ok := q.NextToSend(); ok {
						inSend = append(inSend, sel.Index)
					}
				case 3:
					if len(inPreprocess) > 0 {
						idx := inPreprocess[0]
						inPreprocess = inPreprocess[1:]
						score := r.Float64()
						require.NoError(t, q.ReportPreprocessed(context.Background(), idx, score, nil))
						known[idx] = score
					}
				case 4:
					if len(inSend) > 0 {
						idx := inSend[0]
						inSend = inSend[1:]
						require.NoError(t, q.ReportPopped(idx))
					}
				}

				current := q.States()
				for i := range current {
					require.GreaterOrEqual(t, int(current[i]), int(prev[i]), "slot %d regressed at step %d", i, step)
				}
				prev = current

				for idx, score := range known {
					slot, err := q.Slot(idx)
					require.NoError(t, err)
					require.Equal(t, score, slot.KnownScore)
				}
			}
		})
	}
}

func TestQueue_ConcurrentSelectorsNeverShareSlots(t *testing.T) {
	const capacity = 200
	q := newTestQueue(t, Config{Capacity: capacity, Mode: ModeSplines, BlockSize: 7})
	fillQueue(t, q, capacity)

	var mu sync.Mutex
	claimed := map[int]string{}
	claim := func(idx int, by string) {
		mu.Lock()
		defer mu.Unlock()
		if other, found := claimed[idx]; found {
			t.Errorf("slot %d claimed by %s and %s", idx, other, by)
		}
		claimed[idx] = by
	}

	wg := sync.WaitGroup{}
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				var sel Selection
				var ok bool
				if w%2 == 0 {
					sel, ok = q.NextToPreprocess()
				} else {
					sel, ok = q.NextToSend()
				}
				if !ok {
					return
				}
				claim(sel.Index, fmt.Sprintf("worker-%d", w))
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, claimed, capacity)
	counts := q.Counts()
	assert.Equal(t, capacity, counts.PreProcessing+counts.Popping)
}

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{ModeSplines, ModeNatural, ModeGolden} {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	parsed, err := ParseMode(" golden ")
	require.NoError(t, err)
	assert.Equal(t, ModeGolden, parsed)

	_, err = ParseMode("random")
	assert.Error(t, err)
}

func TestTransition_ForcedStates(t *testing.T) {
	q := newTestQueue(t, Config{Capacity: 3, Mode: ModeNatural})
	q.forceState(1, StatePopped)
	slotStatesEqual(t, q, ".S.")

	err := q.markPopping(1)
	assert.True(t, IsStateViolation(err))
	assert.NoError(t, q.markSubmitted(0))
	assert.NoError(t, q.markPopping(0))
	slotStatesEqual(t, q, "sS.")
}

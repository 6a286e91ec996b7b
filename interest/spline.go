package interest

import (
	"context"
	"sort"

	"github.com/benblamey/HasteStorageClient/triage"
)

// SplineEstimator revises the estimates of waiting slots by interpolating
// linearly between the confirmed scores, slot index being the x axis. Slots
// outside the first and last confirmed points take the nearest confirmed
// score.
type SplineEstimator struct{}

type knot struct {
	x int
	y float64
}

func (SplineEstimator) Estimate(_ context.Context, view *triage.View) ([]triage.ScoreUpdate, error) {
	var knots []knot
	for i, score := range view.KnownScores {
		if score == triage.UnknownScore {
			continue
		}
		knots = append(knots, knot{i, score})
	}
	if len(knots) == 0 {
		return nil, nil
	}
	sort.Slice(knots, func(i, j int) bool { return knots[i].x < knots[j].x })

	var updates []triage.ScoreUpdate
	for i := range view.States {
		if !view.Waiting(i) {
			continue
		}
		updates = append(updates, triage.ScoreUpdate{Index: i, Score: clamp(interpolate(knots, i))})
	}
	return updates, nil
}

func interpolate(knots []knot, x int) float64 {
	if x <= knots[0].x {
		return knots[0].y
	}
	last := knots[len(knots)-1]
	if x >= last.x {
		return last.y
	}

	// first knot strictly to the right of x
	right := sort.Search(len(knots), func(i int) bool { return knots[i].x > x })
	l, r := knots[right-1], knots[right]
	t := float64(x-l.x) / float64(r.x-l.x)
	return l.y + t*(r.y-l.y)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

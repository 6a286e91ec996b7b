package orchestrator

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/benblamey/HasteStorageClient/metrics"
	"github.com/benblamey/HasteStorageClient/triage"
)

// Summary is the outcome of a session.
type Summary struct {
	metrics.Totals
	Duration time.Duration
}

func newSummary(stats *metrics.Stats) *Summary {
	return &Summary{
		Totals:   stats.Totals(),
		Duration: stats.Elapsed(),
	}
}

func (s *Summary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("submitted", s.Submitted)
	enc.AddUint64("rejected", s.Rejected)
	enc.AddUint64("preprocessed", s.Preprocessed)
	enc.AddUint64("sent", s.Sent)
	enc.AddUint64("shed", s.Shed)
	enc.AddUint64("sent_bytes", s.SentBytes)
	enc.AddDuration("duration", s.Duration)
	return nil
}

func publishCounts(capacity int, counts triage.StateCounts) {
	metrics.SlotsNotPreProcessed.SetFloat64(float64(counts.NotPreProcessed))
	metrics.SlotsPreProcessing.SetFloat64(float64(counts.PreProcessing))
	metrics.SlotsPreProcessed.SetFloat64(float64(counts.PreProcessed))
	metrics.SlotsPopping.SetFloat64(float64(counts.Popping))
	metrics.SlotsPopped.SetFloat64(float64(counts.Popped))
	metrics.SlotsFree.SetFloat64(float64(capacity - counts.InQueue() - counts.InFlight() - counts.Popped))
}

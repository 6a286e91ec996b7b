package metrics

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/streamingfast/dmetrics"
	"go.uber.org/zap"
)

// Stats accumulates the throughput of one session, logged periodically and
// once more when the session ends.
type Stats struct {
	sync.Mutex

	mode string

	submitRate     *dmetrics.AvgRateCounter
	preprocessRate *dmetrics.AvgRateCounter
	sendRate       *dmetrics.AvgRateCounter

	startTime      time.Time
	submitted      uint64
	preprocessed   uint64
	sent           uint64
	rejected       uint64
	shed           uint64
	sentBytes      uint64
	preprocessTime time.Duration
	sendTime       time.Duration

	logger *zap.Logger
}

func NewSessionStats(mode string, logger *zap.Logger) *Stats {
	return &Stats{
		mode:           mode,
		submitRate:     dmetrics.MustNewAvgRateCounter(1*time.Second, 30*time.Second, "docs"),
		preprocessRate: dmetrics.MustNewAvgRateCounter(1*time.Second, 30*time.Second, "docs"),
		sendRate:       dmetrics.MustNewAvgRateCounter(1*time.Second, 30*time.Second, "docs"),
		startTime:      time.Now(),
		logger:         logger,
	}
}

func (s *Stats) RecordSubmitted() {
	s.submitRate.Add(1)

	s.Lock()
	defer s.Unlock()
	s.submitted++
}

func (s *Stats) RecordRejected() {
	s.Lock()
	defer s.Unlock()
	s.rejected++
}

func (s *Stats) RecordPreprocessed(elapsed time.Duration) {
	s.preprocessRate.Add(1)

	s.Lock()
	defer s.Unlock()
	s.preprocessed++
	s.preprocessTime += elapsed
}

func (s *Stats) RecordSent(sizeBytes int, shed bool, elapsed time.Duration) {
	s.sendRate.Add(1)

	s.Lock()
	defer s.Unlock()
	s.sent++
	s.sentBytes += uint64(sizeBytes)
	s.sendTime += elapsed
	if shed {
		s.shed++
	}
}

// Totals is a consistent snapshot of the session counters.
type Totals struct {
	Submitted    uint64
	Rejected     uint64
	Preprocessed uint64
	Sent         uint64
	Shed         uint64
	SentBytes    uint64
}

func (s *Stats) Totals() Totals {
	s.Lock()
	defer s.Unlock()
	return Totals{
		Submitted:    s.submitted,
		Rejected:     s.rejected,
		Preprocessed: s.preprocessed,
		Sent:         s.sent,
		Shed:         s.shed,
		SentBytes:    s.sentBytes,
	}
}

func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

func (s *Stats) Log() {
	s.Lock()
	defer s.Unlock()
	s.logger.Info("session stats", s.getZapFields()...)
}

func (s *Stats) LogAndClose() {
	for _, rate := range []*dmetrics.AvgRateCounter{s.submitRate, s.preprocessRate, s.sendRate} {
		rate.SyncNow()
		rate.Stop()
	}

	s.Lock()
	defer s.Unlock()
	s.logger.Info("session stats", s.getZapFields()...)
}

// getZapFields should be called while Stats is locked
func (s *Stats) getZapFields() []zap.Field {
	return []zap.Field{
		zap.String("mode", s.mode),
		zap.String("submit_rate_per_sec", s.submitRate.RateString()),
		zap.Uint64("submit_count", s.submitted),
		zap.Uint64("rejected_count", s.rejected),
		zap.String("preprocess_rate_per_sec", s.preprocessRate.RateString()),
		zap.Uint64("preprocess_count", s.preprocessed),
		zap.String("send_rate_per_sec", s.sendRate.RateString()),
		zap.Uint64("send_count", s.sent),
		zap.Uint64("shed_count", s.shed),
		zap.String("sent_bytes", humanize.Bytes(s.sentBytes)),
		zap.Duration("preprocess_duration", s.preprocessTime),
		zap.Duration("send_duration", s.sendTime),
		zap.Duration("elapsed", time.Since(s.startTime)),
	}
}

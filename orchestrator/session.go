package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abourget/llerrgroup"
	"github.com/streamingfast/shutter"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	haste "github.com/benblamey/HasteStorageClient"
	"github.com/benblamey/HasteStorageClient/interest"
	"github.com/benblamey/HasteStorageClient/metrics"
	"github.com/benblamey/HasteStorageClient/triage"
)

// Session drives one streaming session: a producer feeding the queue,
// preprocessing workers confirming interestingness and sending workers
// draining the queue, all concurrently.
//
// A session ends once the feed is closed and every accepted document has
// been sent, or as soon as one of the callbacks fails.
type Session struct {
	*shutter.Shutter

	queue      *triage.Queue
	preprocess haste.PreprocessFunc
	scorer     *interest.FallbackScorer
	send       haste.SendFunc
	config     Config
	logger     *zap.Logger

	docsLock sync.Mutex
	docs     map[int]*haste.Document

	producerDone *atomic.Bool
	stats        *metrics.Stats
	summary      *Summary
	done         chan struct{}
}

func NewSession(queue *triage.Queue, preprocess haste.PreprocessFunc, scorer interest.Scorer, send haste.SendFunc, config Config) (*Session, error) {
	if queue == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if send == nil {
		return nil, fmt.Errorf("send func is required")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if preprocess == nil {
		preprocess = func(_ context.Context, doc *haste.Document) (*haste.Document, error) { return doc, nil }
	}

	return &Session{
		Shutter:    shutter.New(),
		queue:      queue,
		preprocess: preprocess,
		scorer:     interest.NewFallbackScorer(scorer, config.Logger),
		send:       send,
		config:     config,
		logger:     config.Logger.With(zap.Stringer("mode", queue.Mode())),
		docs:       make(map[int]*haste.Document, queue.Capacity()),
		done:       make(chan struct{}),

		producerDone: atomic.NewBool(false),
	}, nil
}

// Launch starts the session in the background, use Done() and Err() to
// follow it.
func (s *Session) Launch(ctx context.Context, feed <-chan *haste.Document) {
	ctx, cancel := context.WithCancel(ctx)
	s.OnTerminating(func(_ error) {
		cancel()
	})

	go func() {
		s.Shutdown(s.run(ctx, feed))
		close(s.done)
	}()
}

// Run launches the session and blocks until every worker returned.
func (s *Session) Run(ctx context.Context, feed <-chan *haste.Document) error {
	s.Launch(ctx, feed)
	<-s.done
	return s.Err()
}

// Done is closed once every worker of a launched session returned, which
// can be after Terminated() when the session is shut down from outside.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Summary is nil until Done() is closed.
func (s *Session) Summary() *Summary {
	select {
	case <-s.done:
		return s.summary
	default:
		return nil
	}
}

func (s *Session) run(ctx context.Context, feed <-chan *haste.Document) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.stats = metrics.NewSessionStats(s.queue.Mode().String(), s.logger)
	s.logger.Info("starting session",
		zap.Int("capacity", s.queue.Capacity()),
		zap.Int("preprocess_workers", s.config.PreprocessWorkers),
		zap.Int("send_workers", s.config.SendWorkers),
	)

	infoDone := make(chan struct{})
	if s.config.InfoInterval > 0 {
		go s.reportInfo(infoDone)
	}

	var failOnce sync.Once
	var failure error

	eg := llerrgroup.New(1 + s.config.PreprocessWorkers + s.config.SendWorkers)
	launch := func(name string, id int, f func(ctx context.Context) error) {
		eg.Go(func() error {
			err := f(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				failOnce.Do(func() {
					failure = fmt.Errorf("%s worker %d: %w", name, id, err)
				})
				cancel()
			}
			return err
		})
	}

	launch("producer", 0, func(ctx context.Context) error { return s.produce(ctx, feed) })
	for i := 0; i < s.config.PreprocessWorkers; i++ {
		w := &preprocessWorker{id: i, session: s}
		launch("preprocess", i, w.run)
	}
	for i := 0; i < s.config.SendWorkers; i++ {
		w := &sendWorker{id: i, session: s}
		launch("send", i, w.run)
	}

	err := eg.Wait()
	close(infoDone)
	if failure != nil {
		err = failure
	}

	counts := s.queue.Counts()
	publishCounts(s.queue.Capacity(), counts)
	s.stats.LogAndClose()
	s.summary = newSummary(s.stats)

	if err != nil {
		s.logger.Warn("session failed", zap.Object("summary", s.summary), zap.Object("counts", counts), zap.Error(err))
		return err
	}
	s.logger.Info("session completed", zap.Object("summary", s.summary), zap.Object("counts", counts))
	return nil
}

func (s *Session) produce(ctx context.Context, feed <-chan *haste.Document) error {
	defer s.producerDone.Store(true)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-feed:
			if !ok {
				s.logger.Info("producer feed closed", zap.Uint64("submitted", s.stats.Totals().Submitted), zap.Int("slots_used", s.queue.Submitted()))
				return nil
			}
			s.submit(doc)
		}
	}
}

func (s *Session) submit(doc *haste.Document) {
	if doc == nil {
		s.stats.RecordRejected()
		s.logger.Warn("skipping nil document on feed")
		return
	}

	s.docsLock.Lock()
	defer s.docsLock.Unlock()

	idx, err := s.queue.Submit(triage.Metadata(doc.Metadata))
	if err != nil {
		s.stats.RecordRejected()
		s.logger.Warn("document rejected by queue", zap.Object("document", doc), zap.Error(err))
		return
	}
	s.docs[idx] = doc
	s.stats.RecordSubmitted()
}

func (s *Session) document(idx int) *haste.Document {
	s.docsLock.Lock()
	defer s.docsLock.Unlock()
	return s.docs[idx]
}

func (s *Session) replaceDocument(idx int, doc *haste.Document) {
	s.docsLock.Lock()
	defer s.docsLock.Unlock()
	s.docs[idx] = doc
}

func (s *Session) releaseDocument(idx int) {
	s.docsLock.Lock()
	defer s.docsLock.Unlock()
	delete(s.docs, idx)
}

func (s *Session) reportInfo(done <-chan struct{}) {
	ticker := time.NewTicker(s.config.InfoInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			publishCounts(s.queue.Capacity(), s.queue.Counts())
			s.queue.LogQueueInfo()
			s.stats.Log()
		}
	}
}

// idle waits for the poll interval, false when the context is done.
func (s *Session) idle(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.config.IdlePoll):
		return true
	}
}

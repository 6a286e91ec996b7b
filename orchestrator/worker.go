package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/benblamey/HasteStorageClient/triage"
)

type preprocessWorker struct {
	id      int
	session *Session
}

func (w *preprocessWorker) run(ctx context.Context) error {
	s := w.session
	logger := s.logger.With(zap.Int("preprocess_worker", w.id))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sel, ok := s.queue.NextToPreprocess()
		if !ok {
			if s.producerDone.Load() && s.queue.Counts().NotPreProcessed == 0 {
				logger.Debug("nothing left to preprocess")
				return nil
			}
			if !s.idle(ctx) {
				return ctx.Err()
			}
			continue
		}

		if err := w.process(ctx, sel, logger); err != nil {
			return err
		}
	}
}

func (w *preprocessWorker) process(ctx context.Context, sel triage.Selection, logger *zap.Logger) error {
	s := w.session

	start := time.Now()
	doc := s.document(sel.Index)
	processed, err := s.preprocess(ctx, doc)
	if err != nil {
		return fmt.Errorf("preprocessing slot %d: %w", sel.Index, err)
	}
	if processed == nil {
		processed = doc
	}

	score := s.scorer.Score(ctx, processed)
	s.replaceDocument(sel.Index, processed)

	if err := s.queue.ReportPreprocessed(ctx, sel.Index, score, triage.Metadata(processed.Metadata)); err != nil {
		return fmt.Errorf("reporting slot %d preprocessed: %w", sel.Index, err)
	}
	s.stats.RecordPreprocessed(time.Since(start))

	if tracer.Enabled() {
		logger.Debug("document preprocessed", zap.Object("selection", sel), zap.Float64("score", score))
	}
	return nil
}

type sendWorker struct {
	id      int
	session *Session
}

func (w *sendWorker) run(ctx context.Context) error {
	s := w.session
	logger := s.logger.With(zap.Int("send_worker", w.id))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sel, ok := s.queue.NextToSend()
		if !ok {
			if s.producerDone.Load() && !s.queue.Counts().Active() {
				logger.Debug("nothing left to send")
				return nil
			}
			if !s.idle(ctx) {
				return ctx.Err()
			}
			continue
		}

		if err := w.transmit(ctx, sel, logger); err != nil {
			return err
		}
	}
}

func (w *sendWorker) transmit(ctx context.Context, sel triage.Selection, logger *zap.Logger) error {
	s := w.session

	slot, err := s.queue.Slot(sel.Index)
	if err != nil {
		return err
	}

	// Shed documents go out with their latest estimate.
	score := sel.EstimatedScore
	if slot.HasKnownScore() {
		score = slot.KnownScore
	}

	start := time.Now()
	doc := s.document(sel.Index)
	if err := s.send(ctx, doc, score); err != nil {
		return fmt.Errorf("sending slot %d: %w", sel.Index, err)
	}
	if err := s.queue.ReportPopped(sel.Index); err != nil {
		return fmt.Errorf("reporting slot %d popped: %w", sel.Index, err)
	}
	s.releaseDocument(sel.Index)
	s.stats.RecordSent(len(doc.Blob), !slot.HasKnownScore(), time.Since(start))

	if tracer.Enabled() {
		logger.Debug("document sent", zap.Object("selection", sel), zap.Float64("score", score), zap.Bool("preprocessed", slot.HasKnownScore()))
	}
	return nil
}

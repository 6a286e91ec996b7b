package interest

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	haste "github.com/benblamey/HasteStorageClient"
	"github.com/benblamey/HasteStorageClient/metrics"
)

// DefaultScore is used whenever a model fails to produce a score. Keeping
// the document is the safe side of the policy.
const DefaultScore = 1.0

// Scorer computes the interestingness of a single document, a value in the
// closed interval [0, 1].
type Scorer interface {
	Interestingness(ctx context.Context, doc *haste.Document) (float64, error)
}

type ScorerFunc func(ctx context.Context, doc *haste.Document) (float64, error)

func (f ScorerFunc) Interestingness(ctx context.Context, doc *haste.Document) (float64, error) {
	return f(ctx, doc)
}

// Constant always answers the same score.
type Constant float64

func (c Constant) Interestingness(_ context.Context, _ *haste.Document) (float64, error) {
	return float64(c), nil
}

func validScore(score float64) error {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return fmt.Errorf("interestingness %v outside of [0, 1]", score)
	}
	return nil
}

// FallbackScorer never fails: errors and out of range answers of the wrapped
// model are logged and replaced by Default.
type FallbackScorer struct {
	Model   Scorer
	Default float64
	logger  *zap.Logger
}

func NewFallbackScorer(model Scorer, logger *zap.Logger) *FallbackScorer {
	if logger == nil {
		logger = zlog
	}
	return &FallbackScorer{
		Model:   model,
		Default: DefaultScore,
		logger:  logger,
	}
}

func (f *FallbackScorer) Interestingness(ctx context.Context, doc *haste.Document) (float64, error) {
	return f.Score(ctx, doc), nil
}

func (f *FallbackScorer) Score(ctx context.Context, doc *haste.Document) float64 {
	if f.Model == nil {
		return f.Default
	}

	score, err := f.Model.Interestingness(ctx, doc)
	if err == nil {
		err = validScore(score)
	}
	if err != nil {
		metrics.ModelFailures.Inc()
		f.logger.Warn("interestingness model failed, using default score", zap.Object("document", doc), zap.Float64("default_score", f.Default), zap.Error(err))
		return f.Default
	}
	return score
}

// MetadataField reads the score from a numeric metadata entry, as set by an
// upstream feature extractor.
type MetadataField string

func (k MetadataField) Interestingness(_ context.Context, doc *haste.Document) (float64, error) {
	value, found := doc.Metadata[string(k)]
	if !found {
		return 0, fmt.Errorf("metadata field %q not found", string(k))
	}

	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("metadata field %q: unsupported type %T", string(k), value)
	}
}

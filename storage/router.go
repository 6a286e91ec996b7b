package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	haste "github.com/benblamey/HasteStorageClient"
	"github.com/benblamey/HasteStorageClient/metrics"
)

// Router stores a sent document: its blob goes to every target the policy
// selects, its metadata record is always written.
type Router struct {
	targets  TargetMap
	policy   Policy
	metadata *MetadataSink
	logger   *zap.Logger
}

func NewRouter(targets TargetMap, policy Policy, metadata *MetadataSink, logger *zap.Logger) (*Router, error) {
	if err := policy.Validate(targets); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zlog
	}
	return &Router{
		targets:  targets,
		policy:   policy,
		metadata: metadata,
		logger:   logger,
	}, nil
}

// Send has the haste.SendFunc signature.
func (r *Router) Send(ctx context.Context, doc *haste.Document, interestingness float64) error {
	blobID := doc.BlobID()

	var locations []string
	for _, id := range r.policy.Targets(interestingness) {
		if err := r.targets[id].SaveBlob(ctx, blobID, doc.Blob); err != nil {
			return fmt.Errorf("saving blob to target %q: %w", id, err)
		}
		locations = append(locations, id)
		metrics.BlobsStored.Inc()
	}

	if len(locations) == 0 {
		metrics.BlobsDropped.Inc()
		r.logger.Debug("no policy interval matched, blob not stored", zap.String("blob_id", blobID), zap.Float64("interestingness", interestingness))
	}

	if r.metadata != nil {
		if err := r.metadata.Write(ctx, doc.StreamID, NewRecord(doc, interestingness, locations)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Close() error {
	return r.targets.Close()
}

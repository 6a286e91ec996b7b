package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/streamingfast/derr"
	"github.com/streamingfast/dstore"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Target is a blob storage backend.
type Target interface {
	ID() string
	SaveBlob(ctx context.Context, blobID string, blob []byte) error
	Close() error
}

type TargetMap map[string]Target

func (m TargetMap) IDs() []string {
	ids := maps.Keys(m)
	slices.Sort(ids)
	return ids
}

func (m TargetMap) Close() error {
	var firstErr error
	for _, id := range m.IDs() {
		if err := m[id].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing target %q: %w", id, err)
		}
	}
	return firstErr
}

// ObjectTarget writes blobs to any object store dstore supports (file://,
// gs://, s3://, az://).
type ObjectTarget struct {
	id      string
	store   dstore.Store
	retries uint64
	logger  *zap.Logger
}

func NewObjectTarget(id string, store dstore.Store, logger *zap.Logger) *ObjectTarget {
	if logger == nil {
		logger = zlog
	}
	return &ObjectTarget{
		id:      id,
		store:   store,
		retries: 5,
		logger:  logger.With(zap.String("target", id)),
	}
}

func OpenObjectTarget(id string, storeURL string, logger *zap.Logger) (*ObjectTarget, error) {
	store, err := dstore.NewStore(storeURL, "", "", true)
	if err != nil {
		return nil, fmt.Errorf("opening object store %q for target %q: %w", storeURL, id, err)
	}
	return NewObjectTarget(id, store, logger), nil
}

func (t *ObjectTarget) ID() string { return t.id }

func (t *ObjectTarget) SaveBlob(ctx context.Context, blobID string, blob []byte) error {
	t.logger.Debug("saving blob", zap.String("blob_id", blobID), zap.String("size", humanize.Bytes(uint64(len(blob)))))

	err := derr.RetryContext(ctx, t.retries, func(ctx context.Context) error {
		return t.store.WriteObject(ctx, blobID, bytes.NewReader(blob))
	})
	if err != nil {
		return fmt.Errorf("writing blob %q to %s: %w", blobID, t.store.ObjectURL(blobID), err)
	}
	return nil
}

func (t *ObjectTarget) String() string {
	return t.store.ObjectURL("")
}

func (t *ObjectTarget) Close() error { return nil }

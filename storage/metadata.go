package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/streamingfast/derr"
	"github.com/streamingfast/dstore"

	haste "github.com/benblamey/HasteStorageClient"
)

// Record is the metadata document written for every blob, stored or not.
type Record struct {
	Timestamp       float64        `json:"timestamp"`
	Location        []float64      `json:"location,omitempty"`
	SubstreamID     string         `json:"substream_id,omitempty"`
	BlobID          string         `json:"blob_id"`
	BlobLocations   []string       `json:"blob_locations"`
	Interestingness float64        `json:"interestingness"`
	Metadata        map[string]any `json:"metadata"`
}

func NewRecord(doc *haste.Document, interestingness float64, blobLocations []string) *Record {
	if blobLocations == nil {
		blobLocations = []string{}
	}
	return &Record{
		Timestamp:       doc.Timestamp,
		Location:        doc.Location,
		SubstreamID:     doc.SubstreamID,
		BlobID:          doc.BlobID(),
		BlobLocations:   blobLocations,
		Interestingness: interestingness,
		Metadata:        doc.Metadata,
	}
}

// MetadataSink keeps one JSON document per blob, grouped under a
// `strm_<stream id>` collection prefix.
type MetadataSink struct {
	store   dstore.Store
	retries uint64
}

func NewMetadataSink(store dstore.Store) *MetadataSink {
	return &MetadataSink{store: store, retries: 5}
}

func OpenMetadataSink(storeURL string) (*MetadataSink, error) {
	store, err := dstore.NewStore(storeURL, "", "", true)
	if err != nil {
		return nil, fmt.Errorf("opening metadata store %q: %w", storeURL, err)
	}
	return NewMetadataSink(store), nil
}

func CollectionName(streamID string) string {
	return "strm_" + streamID
}

func recordFilename(streamID string, blobID string) string {
	return CollectionName(streamID) + "/" + blobID + ".json"
}

func (s *MetadataSink) Write(ctx context.Context, streamID string, record *Record) error {
	cnt, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling metadata of %q: %w", record.BlobID, err)
	}

	filename := recordFilename(streamID, record.BlobID)
	err = derr.RetryContext(ctx, s.retries, func(ctx context.Context) error {
		return s.store.WriteObject(ctx, filename, bytes.NewReader(cnt))
	})
	if err != nil {
		return fmt.Errorf("writing metadata %q: %w", filename, err)
	}
	return nil
}

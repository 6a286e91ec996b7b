package haste

import (
	"strconv"

	"go.uber.org/zap/zapcore"
)

// Document is one item of a stream: a binary blob (eg. a microscope image)
// plus the metadata extracted from it at the cloud edge.
type Document struct {
	// StreamID groups all the documents of one streaming session.
	StreamID string
	// Timestamp comes from the cloud edge and uniquely identifies the
	// document within its stream.
	Timestamp float64
	// Location is spatial information, eg. (x, y).
	Location []float64
	// SubstreamID groups documents inside a stream (eg. a microscopy well), may be empty.
	SubstreamID string
	Blob        []byte
	Metadata    map[string]any
}

func (d *Document) BlobID() string {
	return "strm_" + d.StreamID + "_ts_" + strconv.FormatFloat(d.Timestamp, 'f', -1, 64)
}

func (d *Document) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if d == nil {
		return nil
	}
	enc.AddString("stream_id", d.StreamID)
	enc.AddFloat64("timestamp", d.Timestamp)
	if d.SubstreamID != "" {
		enc.AddString("substream_id", d.SubstreamID)
	}
	enc.AddInt("blob_size", len(d.Blob))
	enc.AddInt("metadata_keys", len(d.Metadata))
	return nil
}

package main

import (
	"bytes"
	"context"
	"math"
	"time"

	haste "github.com/benblamey/HasteStorageClient"
)

const goldenMetadataKey = "golden"

// goldenBaseline is the true interestingness of a synthetic stream: a cosine
// wave, so that interesting documents come in runs.
func goldenBaseline(count int, period float64) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = (1 + math.Cos(2*math.Pi*float64(i)/period)) / 2
	}
	return out
}

func syntheticDocuments(streamID string, baseline []float64, blobSize int) []*haste.Document {
	start := float64(time.Now().Unix())

	out := make([]*haste.Document, len(baseline))
	for i, golden := range baseline {
		out[i] = &haste.Document{
			StreamID:    streamID,
			Timestamp:   start + float64(i)/10,
			Location:    []float64{float64(i % 10), float64(i / 10)},
			SubstreamID: "synthetic",
			Blob:        bytes.Repeat([]byte{byte(i)}, blobSize),
			Metadata: map[string]any{
				"index":           i,
				goldenMetadataKey: golden,
			},
		}
	}
	return out
}

// feedDocuments emits docs every interval, then closes the feed.
func feedDocuments(ctx context.Context, docs []*haste.Document, interval time.Duration) <-chan *haste.Document {
	out := make(chan *haste.Document)
	go func() {
		defer close(out)
		for _, doc := range docs {
			select {
			case <-ctx.Done():
				return
			case out <- doc:
			}
			if interval > 0 && !sleep(ctx, interval) {
				return
			}
		}
	}()
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

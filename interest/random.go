package interest

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	haste "github.com/benblamey/HasteStorageClient"
)

// RandomModel derives a pseudo-random but stable interestingness from a hash
// of the document. Useful for exercising storage policies without a real
// model.
type RandomModel struct{}

func (RandomModel) Interestingness(_ context.Context, doc *haste.Document) (float64, error) {
	// encoding/json sorts map keys, so equal documents hash equally.
	cnt, err := json.Marshal(map[string]any{
		"timestamp":    doc.Timestamp,
		"location":     doc.Location,
		"substream_id": doc.SubstreamID,
		"metadata":     doc.Metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("hashing document: %w", err)
	}

	h := fnv.New64a()
	_, _ = h.Write(cnt)
	return float64(h.Sum64()%1000) / 1000, nil
}

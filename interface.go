package haste

import (
	"context"
)

// PreprocessFunc refines a document before its interestingness gets
// confirmed, eg. by running a heavier feature extraction. The returned
// document replaces the original one.
type PreprocessFunc func(ctx context.Context, doc *Document) (*Document, error)

// SendFunc transmits a document off the device.
type SendFunc func(ctx context.Context, doc *Document, interestingness float64) error

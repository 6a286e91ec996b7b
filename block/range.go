package block

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Range is a half-open interval of slot indexes, [Start, ExclusiveEnd).
type Range struct {
	Start        int
	ExclusiveEnd int
}

func NewRange(start, exclusiveEnd int) *Range {
	if exclusiveEnd <= start {
		panic(fmt.Sprintf("invalid slot range start %d, end %d", start, exclusiveEnd))
	}
	return &Range{start, exclusiveEnd}
}

func (r *Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.ExclusiveEnd)
}

func (r *Range) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("start", r.Start)
	enc.AddInt("end", r.ExclusiveEnd)

	return nil
}

func (r *Range) Contains(idx int) bool {
	return idx >= r.Start && idx < r.ExclusiveEnd
}

func (r *Range) Size() int {
	return r.ExclusiveEnd - r.Start
}

type Ranges []*Range

func (r Ranges) String() string {
	var rs []string
	for _, i := range r {
		rs = append(rs, i.String())
	}
	return strings.Join(rs, ",")
}

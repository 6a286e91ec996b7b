package block

// Segmenter cuts the slot indexes [0, limit) into contiguous segments of
// `interval` slots. The last segment is shorter when limit is not a
// multiple of interval.
type Segmenter struct {
	interval int
	limit    int
}

func NewSegmenter(interval int, limit int) *Segmenter {
	if interval <= 0 {
		panic("segmenter interval must be positive")
	}
	if limit < 0 {
		limit = 0
	}
	return &Segmenter{
		interval: interval,
		limit:    limit,
	}
}

func (s *Segmenter) Count() int {
	return (s.limit + s.interval - 1) / s.interval
}

// Range returns the slots covered by segment idx, or nil past the last segment.
func (s *Segmenter) Range(idx int) *Range {
	if idx < 0 || idx >= s.Count() {
		return nil
	}
	start := idx * s.interval
	end := start + s.interval
	if end > s.limit {
		end = s.limit
	}
	return NewRange(start, end)
}

func (s *Segmenter) IndexForSlot(slot int) int {
	if slot < 0 || slot >= s.limit {
		panic("slot out of segmenter bounds")
	}
	return slot / s.interval
}

func (s *Segmenter) IsPartial(idx int) bool {
	r := s.Range(idx)
	return r != nil && r.Size() != s.interval
}

func (s *Segmenter) Ranges() (out Ranges) {
	for i := 0; i < s.Count(); i++ {
		out = append(out, s.Range(i))
	}
	return
}

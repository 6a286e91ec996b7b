package storage

import (
	"fmt"
)

// Interval maps documents whose interestingness falls in [Min, Max] to a
// storage target.
type Interval struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Target string  `yaml:"target"`
}

func (i Interval) Contains(score float64) bool {
	return score >= i.Min && score <= i.Max
}

func (i Interval) String() string {
	return fmt.Sprintf("%v<=interestingness<=%v -> %s", i.Min, i.Max, i.Target)
}

type Policy []Interval

// Targets returns the targets of every interval containing score, without
// duplicates, in policy order.
func (p Policy) Targets(score float64) (out []string) {
	seen := map[string]bool{}
	for _, interval := range p {
		if !interval.Contains(score) || seen[interval.Target] {
			continue
		}
		seen[interval.Target] = true
		out = append(out, interval.Target)
	}
	return
}

func (p Policy) Validate(targets TargetMap) error {
	for idx, interval := range p {
		if interval.Min > interval.Max {
			return fmt.Errorf("policy interval #%d: min %v greater than max %v", idx, interval.Min, interval.Max)
		}
		if interval.Min < 0 || interval.Max > 1 {
			return fmt.Errorf("policy interval #%d: bounds must lie in [0, 1]", idx)
		}
		if _, found := targets[interval.Target]; !found {
			return fmt.Errorf("policy interval #%d: unknown target %q", idx, interval.Target)
		}
	}
	return nil
}

package orchestrator

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPreprocessWorkers = 1
	DefaultSendWorkers       = 1
	DefaultIdlePoll          = 10 * time.Millisecond
	DefaultInfoInterval      = 5 * time.Second
)

type Config struct {
	// PreprocessWorkers may be 0, every document is then shed unscored.
	PreprocessWorkers int
	SendWorkers       int

	// IdlePoll is how long a worker sleeps when the queue has nothing for it.
	IdlePoll time.Duration
	// InfoInterval is the period of the queue info log line and of the slot
	// gauges refresh. Zero uses the default, negative disables it.
	InfoInterval time.Duration

	Logger *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		PreprocessWorkers: DefaultPreprocessWorkers,
		SendWorkers:       DefaultSendWorkers,
		IdlePoll:          DefaultIdlePoll,
		InfoInterval:      DefaultInfoInterval,
	}
}

func (c *Config) validate() error {
	if c.PreprocessWorkers < 0 {
		return fmt.Errorf("preprocess workers must be positive, got %d", c.PreprocessWorkers)
	}
	if c.SendWorkers <= 0 {
		return fmt.Errorf("at least one send worker is required, got %d", c.SendWorkers)
	}
	if c.IdlePoll <= 0 {
		c.IdlePoll = DefaultIdlePoll
	}
	if c.InfoInterval == 0 {
		c.InfoInterval = DefaultInfoInterval
	}
	if c.Logger == nil {
		c.Logger = zlog
	}
	return nil
}

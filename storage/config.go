package storage

import (
	"fmt"

	"go.uber.org/zap"
)

type TargetConfig struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// Config describes the storage side of a session, usually read from the
// `storage` section of a session file.
type Config struct {
	MetadataURL string         `yaml:"metadata_url"`
	Targets     []TargetConfig `yaml:"targets"`
	Policy      Policy         `yaml:"policy"`
}

func NewRouterFromConfig(config *Config, logger *zap.Logger) (*Router, error) {
	targets := TargetMap{}
	for _, tc := range config.Targets {
		if _, found := targets[tc.ID]; found {
			return nil, fmt.Errorf("duplicate storage target id %q", tc.ID)
		}
		target, err := OpenObjectTarget(tc.ID, tc.URL, logger)
		if err != nil {
			return nil, err
		}
		targets[tc.ID] = target
	}

	var sink *MetadataSink
	if config.MetadataURL != "" {
		var err error
		if sink, err = OpenMetadataSink(config.MetadataURL); err != nil {
			return nil, err
		}
	}

	return NewRouter(targets, config.Policy, sink, logger)
}

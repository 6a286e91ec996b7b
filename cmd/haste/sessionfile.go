package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/benblamey/HasteStorageClient/storage"
)

// sessionFile holds what is too structured for flags.
//
//	stream_id: 2f1c...
//	storage:
//	  metadata_url: file:///data/haste/metadata
//	  targets:
//	    - id: hot
//	      url: s3://bucket/hot?region=eu-north-1
//	  policy:
//	    - {min: 0.5, max: 1.0, target: hot}
type sessionFile struct {
	StreamID string          `yaml:"stream_id"`
	Storage  *storage.Config `yaml:"storage"`
}

func loadSessionFile(path string) (*sessionFile, error) {
	cnt, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	out := &sessionFile{}
	if err := yaml.Unmarshal(cnt, out); err != nil {
		return nil, fmt.Errorf("parsing session file %q: %w", path, err)
	}
	return out, nil
}

// defaultStorageConfig stores every document in a single target.
func defaultStorageConfig(storeURL string, metadataURL string) *storage.Config {
	return &storage.Config{
		MetadataURL: metadataURL,
		Targets:     []storage.TargetConfig{{ID: "default", URL: storeURL}},
		Policy:      storage.Policy{{Min: 0, Max: 1, Target: "default"}},
	}
}

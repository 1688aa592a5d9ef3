package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// hostConfig is the optional --config file's shape: host-hook policy an
// embedder can pin without recompiling the CLI, grounded on the teacher's
// own use of go-yaml for config loading (carried into this module as a
// go-snaps transitive dependency, then adopted directly here for its own
// sake rather than left unused).
type hostConfig struct {
	Strict         bool `yaml:"strict"`
	MaxOutputBytes int  `yaml:"maxOutputBytes"`
}

func loadHostConfig(path string) (*hostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := &hostConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

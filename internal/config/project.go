package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectOverrides represents a project-level .roscope.yaml file placed in
// the analyzed project root.
type ProjectOverrides struct {
	// IgnoredPaths are path substrings excluded from classification, in
	// addition to the built-in build artefact directories.
	IgnoredPaths []string `yaml:"ignored_paths"`
}

// LoadProjectOverrides reads and parses .roscope.yaml from the given
// directory. Returns nil if the file does not exist.
func LoadProjectOverrides(dir string) (*ProjectOverrides, error) {
	data, err := os.ReadFile(filepath.Join(dir, ".roscope.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading .roscope.yaml: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var overrides ProjectOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing .roscope.yaml: %w", err)
	}

	return &overrides, nil
}

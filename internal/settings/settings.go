// Package settings loads the optional .devc.yaml workspace file: tool
// preferences that sit outside devcontainer.json, like which container
// engine to use and how the CLI logs.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EngineConfig selects and locates the container engine.
type EngineConfig struct {
	// Kind names the engine: "auto" (default), "docker", or "podman"
	Kind string `yaml:"kind"`

	// Command overrides the engine binary path or name
	Command string `yaml:"command,omitempty"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	// Format is "auto" (default), "text", or "json"
	Format string `yaml:"format"`

	// Verbosity raises the log level: 0 warn, 1 info, 2+ debug
	Verbosity int `yaml:"verbosity"`
}

// DownConfig controls default teardown behavior.
type DownConfig struct {
	// RemoveVolumes removes the project data volume on `devc down`
	RemoveVolumes bool `yaml:"remove_volumes"`
}

// Settings holds all .devc.yaml values. Immutable after Load.
type Settings struct {
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
	Down   DownConfig   `yaml:"down"`
}

// Load reads settings from <workspace>/.devc.yaml. A missing file is not
// an error; defaults apply. File values are overridden by DEVC_ENGINE,
// DEVC_ENGINE_COMMAND, and DEVC_LOG_FORMAT.
func Load(workspaceFolder string) (*Settings, error) {
	s := Default()

	path := filepath.Join(workspaceFolder, ".devc.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(s)

	if err := validate(s); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}
	return s, nil
}

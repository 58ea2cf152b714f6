package config

import "fmt"

// ConfigError describes a fatal problem with the devcontainer
// configuration: a missing or unparsable document, a schema violation, or
// a value that cannot be normalized. Configuration errors are never
// retried.
type ConfigError struct {
	// Path is the offending file, when one is known
	Path string

	// Detail describes what was wrong
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Path, e.Detail)
	}
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

func configErrorf(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Detail: fmt.Sprintf(format, args...)}
}

package settings

import (
	"errors"
	"fmt"
)

// ValidationError contains details about one invalid settings value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validate checks all settings values. Returns nil if valid, or joined
// errors for every failure found.
func validate(s *Settings) error {
	var errs []error

	switch s.Engine.Kind {
	case "auto", "docker", "podman":
	default:
		errs = append(errs, &ValidationError{
			Field:   "engine.kind",
			Value:   s.Engine.Kind,
			Message: "must be one of: auto, docker, podman",
		})
	}

	switch s.Log.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, &ValidationError{
			Field:   "log.format",
			Value:   s.Log.Format,
			Message: "must be one of: auto, text, json",
		})
	}

	if s.Log.Verbosity < 0 {
		errs = append(errs, &ValidationError{
			Field:   "log.verbosity",
			Value:   s.Log.Verbosity,
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

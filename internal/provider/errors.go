package provider

import (
	"errors"
	"fmt"
)

// Error is a failure reported by a container-engine backend. It carries
// the failing engine command line, exit code, and captured stderr when a
// subprocess was involved.
type Error struct {
	// Message summarizes the failure
	Message string

	// Command is the engine command line that failed, if any
	Command string

	// ExitCode is the engine exit code, when a process ran
	ExitCode int

	// Stderr is the trimmed stderr of the failing command
	Stderr string

	// Timeout marks a command terminated by a context deadline, as
	// opposed to a normal non-zero exit
	Timeout bool
}

func (e *Error) Error() string {
	msg := "provider error: " + e.Message
	if e.Command != "" {
		if e.Timeout {
			msg = fmt.Sprintf("%s (command %q timed out)", msg, e.Command)
		} else {
			msg = fmt.Sprintf("%s (command %q exited with code %d)", msg, e.Command, e.ExitCode)
		}
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	return msg
}

// IsTimeout reports whether err is a provider error caused by a context
// deadline rather than a normal non-zero exit.
func IsTimeout(err error) bool {
	var provErr *Error
	return errors.As(err, &provErr) && provErr.Timeout
}

// UnsupportedError marks a feature accepted by the interface but not
// implemented by the selected backend. Callers surface it as a warning
// when degradation is safe and as a failure otherwise.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported feature: %s", e.Feature)
}

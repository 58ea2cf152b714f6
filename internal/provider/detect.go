package provider

import (
	"errors"
	"os/exec"
)

// ErrNoEngine is returned when no container engine is found.
var ErrNoEngine = errors.New("no container engine found (need docker or podman)")

// DetectEngine finds an available container engine. Checks docker first,
// then podman. Verifies the binary actually works by running
// `<engine> version`.
func DetectEngine() (Kind, error) {
	for _, kind := range []Kind{KindDocker, KindPodman} {
		if _, err := exec.LookPath(string(kind)); err != nil {
			continue
		}
		cmd := exec.Command(string(kind), "version")
		if err := cmd.Run(); err != nil {
			continue
		}
		return kind, nil
	}
	return "", ErrNoEngine
}

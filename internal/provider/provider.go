// Package provider defines the capability contract a container-engine
// backend must implement to materialize a resolved devcontainer
// configuration, plus the value types flowing across that boundary.
package provider

import (
	"context"

	"github.com/devcgo/devc/internal/config"
)

// Kind identifies which backend implementation is in use.
type Kind string

const (
	KindDocker Kind = "docker"
	KindPodman Kind = "podman"
	KindMock   Kind = "mock"
)

// Provider is the abstraction over a container-engine backend. Every
// operation may block on external process I/O and honors the context's
// deadline. Implementations must be deterministic: Prepare on the same
// config always yields the same names.
type Provider interface {
	// Kind returns the backend identifier.
	Kind() Kind

	// Prepare validates preconditions (workspace existence, image or
	// dockerfile availability) and computes all naming and mounting
	// decisions for one lifecycle run. No side effects.
	Prepare(ctx context.Context, cfg *config.ResolvedConfig) (*Preparation, error)

	// EnsureNetworks reconciles the prepared networks: existing ones are
	// left alone, missing ones are created.
	EnsureNetworks(ctx context.Context, cfg *config.ResolvedConfig, prep *Preparation) error

	// EnsureVolumes reconciles the prepared volumes the same way.
	EnsureVolumes(ctx context.Context, cfg *config.ResolvedConfig, prep *Preparation) error

	// BuildImage makes the prepared image available locally, pulling a
	// reference only when absent or building from the prepared context,
	// and returns the usable image reference.
	BuildImage(ctx context.Context, cfg *config.ResolvedConfig, prep *Preparation) (string, error)

	// CreateContainer removes any stale container of the prepared name,
	// then creates a fresh one kept alive for subsequent exec calls.
	CreateContainer(ctx context.Context, cfg *config.ResolvedConfig, prep *Preparation, imageReference string) (*RunningContainer, error)

	// StartContainer starts the container by name or id, preferring name.
	StartContainer(ctx context.Context, container *RunningContainer) error

	// Exec runs argv inside the running container and captures its
	// output. An empty argv is a zero-effort success.
	Exec(ctx context.Context, container *RunningContainer, argv []string) (*ExecResult, error)

	// StopContainer stops the container; already-stopped and not-found
	// are success.
	StopContainer(ctx context.Context, cfg *config.ResolvedConfig, prep *Preparation, container *RunningContainer) error

	// Cleanup force-removes the container and the prepared networks and,
	// when requested, volumes. Absent resources are success.
	Cleanup(ctx context.Context, cfg *config.ResolvedConfig, prep *Preparation, opts CleanupOptions) error
}

// Image is the chosen image source: a direct reference or a build context.
// Exactly one of the two is set.
type Image struct {
	Reference string
	Build     *BuildContext
}

// BuildContext describes an image build from a workspace Dockerfile.
type BuildContext struct {
	Dockerfile string
	Context    string
	Tag        string
}

// VolumeSpec names a volume and where it mounts inside the container.
type VolumeSpec struct {
	Name      string
	MountPath string
}

// Preparation is the engine-specific provisioning metadata computed once
// per run, before any side effects. The executor treats it as opaque.
type Preparation struct {
	Image              Image
	ContainerName      string
	ProjectSlug        string
	Networks           []string
	Volumes            []VolumeSpec
	WorkspaceMountPath string
}

// RunningContainer is the provider-assigned identity of a provisioned
// container. At least one of ID and Name must be set for subsequent
// operations to succeed.
type RunningContainer struct {
	ID   string
	Name string
}

// Identifier returns the handle used for engine commands, preferring the
// human-assigned name over the engine-assigned id.
func (c *RunningContainer) Identifier() (string, error) {
	if c == nil {
		return "", &Error{Message: "container has no identifier"}
	}
	if c.Name != "" {
		return c.Name, nil
	}
	if c.ID != "" {
		return c.ID, nil
	}
	return "", &Error{Message: "container has no identifier"}
}

// ExecResult is the captured outcome of one exec invocation.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CleanupOptions control what Cleanup removes beyond the container.
type CleanupOptions struct {
	// RemoveVolumes also removes the container's anonymous volumes and
	// the prepared named volumes
	RemoveVolumes bool

	// RemoveUnknown requests a sweep of orphaned resources. Backends may
	// decline with a warning.
	RemoveUnknown bool
}
